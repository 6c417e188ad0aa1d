package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/id"
	"github.com/examcraft/backend/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTopic(t *testing.T, s *store.SQLiteStore, userID string) *topic.Topic {
	t.Helper()
	tp, err := topic.New(userID, "Go")
	require.NoError(t, err)
	require.NoError(t, s.SaveTopic(context.Background(), tp))
	return tp
}

func seedCard(t *testing.T, s *store.SQLiteStore, tp *topic.Topic, status flashcard.MasteryStatus) *flashcard.Flashcard {
	t.Helper()
	c, err := flashcard.New(tp.UserID, tp.ID, "front "+id.GenerateID(), "back")
	require.NoError(t, err)
	c.MasteryStatus = status
	require.NoError(t, s.SaveFlashcard(context.Background(), c))
	return c
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Schema and migrations must be idempotent.
	s, err = store.NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestTopics(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")

	got, err := s.GetTopic(ctx, "alice", tp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Name)

	_, err = s.GetTopic(ctx, "bob", tp.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, tp.Rename("Go basics"))
	require.NoError(t, s.UpdateTopic(ctx, tp))

	topics, err := s.ListTopics(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "Go basics", topics[0].Name)

	topics, err = s.ListTopics(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestDeleteTopic_RemovesCards(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")
	card := seedCard(t, s, tp, flashcard.StatusLearning)

	assert.ErrorIs(t, s.DeleteTopic(ctx, "bob", tp.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteTopic(ctx, "alice", tp.ID))

	_, err := s.GetFlashcard(ctx, "alice", card.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTopic(ctx, "alice", tp.ID), store.ErrNotFound)
}

func TestFlashcardsByStatus(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")

	seedCard(t, s, tp, flashcard.StatusLearning)
	seedCard(t, s, tp, flashcard.StatusLearning)
	seedCard(t, s, tp, flashcard.StatusMastered)

	all, err := s.ListFlashcards(ctx, "alice", tp.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	learning, err := s.ListFlashcardsByStatus(ctx, "alice", tp.ID, flashcard.StatusLearning)
	require.NoError(t, err)
	assert.Len(t, learning, 2)
	for _, c := range learning {
		assert.Equal(t, flashcard.StatusLearning, c.MasteryStatus)
		assert.Equal(t, flashcard.SourceManual, c.Source)
	}

	underReview, err := s.ListFlashcardsByStatus(ctx, "alice", tp.ID, flashcard.StatusUnderReview)
	require.NoError(t, err)
	assert.Empty(t, underReview)

	stats, err := s.GetTopicStats(ctx, "alice", tp.ID)
	require.NoError(t, err)
	assert.Equal(t, topic.Stats{TopicID: tp.ID, Total: 3, Learning: 2, Mastered: 1}, stats)
}

func TestSaveFlashcards_Batch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")

	var cards []*flashcard.Flashcard
	for i := 0; i < 5; i++ {
		c, err := flashcard.New("alice", tp.ID, "q", "a")
		require.NoError(t, err)
		c.Source = flashcard.SourceGenerated
		cards = append(cards, c)
	}
	require.NoError(t, s.SaveFlashcards(ctx, cards))

	all, err := s.ListFlashcards(ctx, "alice", tp.ID)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSaveImport(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var batches []store.ImportBatch
	for _, name := range []string{"Go", "SQL"} {
		tp, err := topic.New("alice", name)
		require.NoError(t, err)
		c, err := flashcard.New("alice", tp.ID, name+" q", "a")
		require.NoError(t, err)
		batches = append(batches, store.ImportBatch{Topic: tp, Cards: []*flashcard.Flashcard{c}})
	}
	require.NoError(t, s.SaveImport(ctx, batches))

	topics, err := s.ListTopics(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, topics, 2)
	for _, b := range batches {
		cards, err := s.ListFlashcards(ctx, "alice", b.Topic.ID)
		require.NoError(t, err)
		assert.Len(t, cards, 1)
	}
}

func TestSaveImport_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first, err := topic.New("alice", "Go")
	require.NoError(t, err)
	good, err := flashcard.New("alice", first.ID, "q", "a")
	require.NoError(t, err)

	second, err := topic.New("alice", "SQL")
	require.NoError(t, err)
	// References a topic that does not exist, so the foreign key rejects it.
	orphan, err := flashcard.New("alice", "missing-topic", "q", "a")
	require.NoError(t, err)

	err = s.SaveImport(ctx, []store.ImportBatch{
		{Topic: first, Cards: []*flashcard.Flashcard{good}},
		{Topic: second, Cards: []*flashcard.Flashcard{orphan}},
	})
	require.Error(t, err)

	topics, err := s.ListTopics(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, topics)

	_, err = s.GetFlashcard(ctx, "alice", good.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveCardMasteryUpdate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")
	card := seedCard(t, s, tp, flashcard.StatusUnderReview)

	_, tr := card.Apply(flashcard.OutcomeKnow, time.Now())
	require.NoError(t, s.SaveCardMasteryUpdate(ctx, "alice", card.ID, tr))

	got, err := s.GetFlashcard(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.Equal(t, flashcard.StatusUnderReview, got.MasteryStatus)
	assert.Equal(t, 1, got.ConsecutiveCorrect)

	err = s.SaveCardMasteryUpdate(ctx, "bob", card.ID, tr)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveCardMasteryUpdate_StaleTransition(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")
	card := seedCard(t, s, tp, flashcard.StatusUnderReview)

	// Two reviews computed from the same read.
	_, first := card.Apply(flashcard.OutcomeKnow, time.Now())
	_, second := card.Apply(flashcard.OutcomeDontKnow, time.Now())

	require.NoError(t, s.SaveCardMasteryUpdate(ctx, "alice", card.ID, first))
	err := s.SaveCardMasteryUpdate(ctx, "alice", card.ID, second)
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.GetFlashcard(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.Equal(t, first.To, got.MasteryStatus)
	assert.Equal(t, first.ConsecutiveCorrect, got.ConsecutiveCorrect)
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tp := seedTopic(t, s, "alice")
	card := seedCard(t, s, tp, flashcard.StatusLearning)

	at := time.Now().UTC()
	updated, tr := card.Apply(flashcard.OutcomeKnow, at)
	require.NoError(t, s.SaveReview(ctx, flashcard.NewReview(updated, tr, at)))

	reviews, err := s.ListReviews(ctx, "alice", card.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, flashcard.OutcomeKnow, reviews[0].Outcome)
	assert.Equal(t, flashcard.StatusUnderReview, reviews[0].To)

	require.NoError(t, s.DeleteFlashcard(ctx, "alice", card.ID))
	reviews, err = s.ListReviews(ctx, "alice", card.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestGenerationJobs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	now := time.Now().UTC()
	job := &store.GenerationJob{
		ID:        id.GenerateID(),
		UserID:    "alice",
		TopicID:   "topic",
		Status:    store.JobPending,
		Requested: 5,
		Model:     "qwen3-8b",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.SaveGenerationJob(ctx, job))

	job.Status = store.JobCompleted
	job.CreatedCount = 4
	require.NoError(t, s.UpdateGenerationJob(ctx, job))

	got, err := s.GetGenerationJob(ctx, "alice", job.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobCompleted, got.Status)
	assert.Equal(t, 4, got.CreatedCount)
	assert.Equal(t, "qwen3-8b", got.Model)

	_, err = s.GetGenerationJob(ctx, "bob", job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
