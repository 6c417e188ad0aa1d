package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcraft/backend/internal/domain/flashcard"
)

func TestNew(t *testing.T) {
	card, err := flashcard.New("user-1", "topic-1", "  What is a goroutine? ", "A lightweight thread")
	require.NoError(t, err)

	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "What is a goroutine?", card.Front)
	assert.Equal(t, flashcard.StatusLearning, card.MasteryStatus)
	assert.Zero(t, card.ConsecutiveCorrect)
	assert.NoError(t, card.Validate())
}

func TestNew_EmptyText(t *testing.T) {
	_, err := flashcard.New("user-1", "topic-1", " ", "back")
	assert.ErrorIs(t, err, flashcard.ErrInvalidArgument)

	_, err = flashcard.New("user-1", "topic-1", "front", "")
	assert.ErrorIs(t, err, flashcard.ErrInvalidArgument)
}

func TestValidate(t *testing.T) {
	card := flashcard.Flashcard{ID: "c1", MasteryStatus: "forgotten"}
	assert.ErrorIs(t, card.Validate(), flashcard.ErrInvalidArgument)

	card = flashcard.Flashcard{ID: "c1", MasteryStatus: flashcard.StatusMastered, ConsecutiveCorrect: -1}
	assert.ErrorIs(t, card.Validate(), flashcard.ErrInvalidArgument)
}

func TestApply_DoesNotMutate(t *testing.T) {
	card, err := flashcard.New("user-1", "topic-1", "front", "back")
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, tr := card.Apply(flashcard.OutcomeKnow, at)

	assert.Equal(t, flashcard.StatusLearning, card.MasteryStatus)
	assert.Zero(t, card.ConsecutiveCorrect)

	assert.Equal(t, flashcard.StatusUnderReview, updated.MasteryStatus)
	assert.Equal(t, 1, updated.ConsecutiveCorrect)
	assert.Equal(t, at, updated.UpdatedAt)

	assert.Equal(t, flashcard.StatusLearning, tr.From)
	assert.Equal(t, flashcard.StatusUnderReview, tr.To)

	review := flashcard.NewReview(updated, tr, at)
	assert.Equal(t, card.ID, review.CardID)
	assert.Equal(t, flashcard.OutcomeKnow, review.Outcome)
}

func TestParse(t *testing.T) {
	status, err := flashcard.ParseMasteryStatus("under_review")
	require.NoError(t, err)
	assert.Equal(t, flashcard.StatusUnderReview, status)

	_, err = flashcard.ParseMasteryStatus("Mastered")
	assert.ErrorIs(t, err, flashcard.ErrInvalidArgument)

	outcome, err := flashcard.ParseReviewOutcome("dont_know")
	require.NoError(t, err)
	assert.Equal(t, flashcard.OutcomeDontKnow, outcome)

	_, err = flashcard.ParseReviewOutcome("maybe")
	assert.ErrorIs(t, err, flashcard.ErrInvalidArgument)
}
