package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenAIGenerator generates flashcards by calling an OpenAI-compatible
// chat completions endpoint (Ollama, LM Studio, vLLM, etc.).
type OpenAIGenerator struct {
	url    string       // e.g. "http://localhost:1234"
	model  string       // e.g. "qwen3-8b"
	apiKey string       // optional bearer token
	client *http.Client // reused across calls
}

// Compile-time check: *OpenAIGenerator satisfies the Generator interface.
var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator that calls the given endpoint.
func NewOpenAIGenerator(url, model, apiKey string, timeout time.Duration) *OpenAIGenerator {
	return &OpenAIGenerator{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *OpenAIGenerator) Model() string { return g.model }

const maxRetries = 2

// GenerateFlashcards asks the LLM for req.Count cards about req.Topic.
//
// It retries once on parse failure (small models sometimes need a second try).
func (g *OpenAIGenerator) GenerateFlashcards(ctx context.Context, req Request) ([]Draft, error) {
	prompt := buildPrompt(req)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		content, err := g.callLLM(ctx, prompt)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		drafts, err := parseDrafts(content, req.Count)
		if err != nil {
			lastErr = err
			continue
		}
		return drafts, nil
	}

	return nil, &GenerateError{
		Reason:  fmt.Sprintf("failed after %d attempts", maxRetries),
		Wrapped: lastErr,
	}
}

// parseDrafts pulls the flashcards object out of a model response.
func parseDrafts(content string, limit int) ([]Draft, error) {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return nil, &GenerateError{Reason: "no JSON object found in LLM response"}
	}

	var payload struct {
		Flashcards []Draft `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, &GenerateError{Reason: "invalid JSON from LLM", Wrapped: err}
	}

	drafts := cleanDrafts(payload.Flashcards, limit)
	if len(drafts) == 0 {
		return nil, &GenerateError{Reason: "LLM returned no usable flashcards"}
	}
	return drafts, nil
}

// ============================================================================
// LLM communication
// ============================================================================

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callLLM sends a single request to the LLM and returns the raw text response.
func (g *OpenAIGenerator) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := llmRequest{
		Model: g.model,
		Messages: []llmMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM returned status %d", resp.StatusCode)
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	content := llmResp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("LLM returned empty content")
	}

	return content, nil
}
