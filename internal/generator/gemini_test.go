package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGemini(t *testing.T, url string, timeout time.Duration) *GeminiGenerator {
	t.Helper()
	g, err := newGeminiGenerator(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: url},
	}, "test-model", timeout)
	require.NoError(t, err)
	return g
}

func TestGeminiGenerator_GenerateFlashcards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "test-model:generateContent"), r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{{
						"text": `{"flashcards": [{"front": "What is a goroutine?", "back": "A lightweight thread"}]}`,
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	g := newTestGemini(t, srv.URL, 5*time.Second)
	drafts, err := g.GenerateFlashcards(context.Background(), Request{Topic: "Go", SourceText: "Goroutines.", Count: 1})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "A lightweight thread", drafts[0].Back)
}

func TestGeminiGenerator_TimeoutBoundsStalledCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	g := newTestGemini(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := g.GenerateFlashcards(context.Background(), Request{Topic: "Go", SourceText: "Goroutines.", Count: 1})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var genErr *GenerateError
	assert.True(t, errors.As(err, &genErr))
}

func TestNewGeminiGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "m", time.Second)
	assert.Error(t, err)
}
