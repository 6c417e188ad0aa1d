package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examcraft/backend/internal/id"
)

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := id.GenerateID()
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}

func TestValid(t *testing.T) {
	assert.True(t, id.Valid(id.GenerateID()))
	assert.False(t, id.Valid(""))
	assert.False(t, id.Valid("not-an-id"))
}
