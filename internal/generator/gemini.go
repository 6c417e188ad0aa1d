package generator

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator generates flashcards with Google's Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini-backed generator. timeout bounds each
// GenerateContent call; zero means no limit beyond the caller's context.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	return newGeminiGenerator(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, timeout)
}

func newGeminiGenerator(ctx context.Context, cfg *genai.ClientConfig, model string, timeout time.Duration) (*GeminiGenerator, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, timeout: timeout}, nil
}

func (g *GeminiGenerator) Model() string { return g.model }

func (g *GeminiGenerator) GenerateFlashcards(ctx context.Context, req Request) ([]Draft, error) {
	prompt := buildPrompt(req)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := g.generate(ctx, prompt)
		if err != nil {
			lastErr = fmt.Errorf("GenAI generate failed: %w", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		drafts, err := parseDrafts(resp.Text(), req.Count)
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

func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.client.Models.GenerateContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.2),
			ResponseMIMEType: "application/json",
		},
	)
}
