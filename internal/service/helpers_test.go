package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTopic(t *testing.T, s *store.SQLiteStore, userID, name string) *topic.Topic {
	t.Helper()
	tp, err := topic.New(userID, name)
	require.NoError(t, err)
	require.NoError(t, s.SaveTopic(context.Background(), tp))
	return tp
}

// seedCards saves n cards with the given status and streak.
func seedCards(t *testing.T, s *store.SQLiteStore, tp *topic.Topic, status flashcard.MasteryStatus, streak, n int) []*flashcard.Flashcard {
	t.Helper()
	cards := make([]*flashcard.Flashcard, n)
	for i := range cards {
		c, err := flashcard.New(tp.UserID, tp.ID, fmt.Sprintf("%s question %d", status, i), "answer")
		require.NoError(t, err)
		c.MasteryStatus = status
		c.ConsecutiveCorrect = streak
		cards[i] = c
	}
	require.NoError(t, s.SaveFlashcards(context.Background(), cards))
	return cards
}
