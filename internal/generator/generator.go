package generator

import (
	"context"
	"fmt"
	"strings"
)

// Generator turns study material into flashcard drafts.
// Implementations may call an LLM or return canned results (for tests).
type Generator interface {
	GenerateFlashcards(ctx context.Context, req Request) ([]Draft, error)
	// Model names the model used, for job bookkeeping.
	Model() string
}

// Request describes one generation call.
type Request struct {
	Topic      string
	SourceText string
	Count      int
}

// Draft is a generated card before it is saved.
type Draft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GenerateError is returned when generation fails so the caller can
// distinguish "LLM returned garbage" from "LLM was unreachable."
type GenerateError struct {
	Reason  string
	Wrapped error
}

func (e *GenerateError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerateError) Unwrap() error {
	return e.Wrapped
}

// cleanDrafts trims drafts, drops empty or repeated fronts and caps the
// result at limit.
func cleanDrafts(drafts []Draft, limit int) []Draft {
	seen := make(map[string]bool, len(drafts))
	out := make([]Draft, 0, min(len(drafts), limit))
	for _, d := range drafts {
		if len(out) == limit {
			break
		}
		d.Front = strings.TrimSpace(d.Front)
		d.Back = strings.TrimSpace(d.Back)
		if d.Front == "" || d.Back == "" {
			continue
		}
		key := strings.ToLower(d.Front)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// buildPrompt is kept short and directive for small (4-8B) models, ending
// with the JSON schema so it is the last thing the model sees.
func buildPrompt(req Request) string {
	return fmt.Sprintf(`/no_think
You are writing study flashcards about %q.

RULES:
- Write exactly %d flashcards from the MATERIAL below.
- "front" is a short question or term; "back" is a concise answer (one or two sentences).
- Each card tests a single fact or idea. No duplicates.
- Only use information present in the MATERIAL.

MATERIAL:
%s

Respond with ONLY this JSON, no explanation and no markdown:
{"flashcards": [{"front": "...", "back": "..."}, ...]}`,
		req.Topic, req.Count, strings.TrimSpace(req.SourceText))
}

// ============================================================================
// JSON extraction
// ============================================================================

// extractJSON finds the outermost JSON object in a string.
// It handles nested braces correctly and skips braces inside quoted strings.
func extractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
