package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"Sure! Here you go:\n```json\n{\"a\": {\"b\": 2}}\n```", `{"a": {"b": 2}}`},
		{`{"text": "brace } inside"} trailing`, `{"text": "brace } inside"}`},
		{`{"text": "escaped \" quote {"}`, `{"text": "escaped \" quote {"}`},
		{"no json here", ""},
		{`{"unterminated": true`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSON(tt.in), "input %q", tt.in)
	}
}

func TestCleanDrafts(t *testing.T) {
	drafts := []Draft{
		{Front: " What is Go? ", Back: " A language "},
		{Front: "", Back: "orphan answer"},
		{Front: "what is go?", Back: "duplicate"},
		{Front: "What is a channel?", Back: ""},
		{Front: "What is a goroutine?", Back: "A lightweight thread"},
		{Front: "What is select?", Back: "Multiplexes channels"},
	}

	got := cleanDrafts(drafts, 2)
	assert.Equal(t, []Draft{
		{Front: "What is Go?", Back: "A language"},
		{Front: "What is a goroutine?", Back: "A lightweight thread"},
	}, got)
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(Request{Topic: "Go", SourceText: "  Goroutines are cheap.  ", Count: 3})

	assert.Contains(t, p, `"Go"`)
	assert.Contains(t, p, "exactly 3 flashcards")
	assert.Contains(t, p, "Goroutines are cheap.")
	assert.True(t, strings.HasSuffix(p, `{"flashcards": [{"front": "...", "back": "..."}, ...]}`))
}

func TestParseDrafts(t *testing.T) {
	drafts, err := parseDrafts(`Here: {"flashcards": [{"front": "Q1", "back": "A1"}, {"front": "Q2", "back": "A2"}]}`, 5)
	assert.NoError(t, err)
	assert.Len(t, drafts, 2)

	_, err = parseDrafts(`{"flashcards": []}`, 5)
	assert.Error(t, err)

	_, err = parseDrafts(`nothing`, 5)
	var genErr *GenerateError
	assert.ErrorAs(t, err, &genErr)
}
