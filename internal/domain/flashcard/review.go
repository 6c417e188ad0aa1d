package flashcard

import (
	"time"

	"github.com/examcraft/backend/internal/id"
)

// Review is one entry of a card's review history.
type Review struct {
	ID                 string
	UserID             string
	CardID             string
	Outcome            ReviewOutcome
	From               MasteryStatus
	To                 MasteryStatus
	ConsecutiveCorrect int
	ReviewedAt         time.Time
}

// NewReview records a transition produced by Flashcard.Apply.
func NewReview(card Flashcard, t Transition, at time.Time) Review {
	return Review{
		ID:                 id.GenerateID(),
		UserID:             card.UserID,
		CardID:             card.ID,
		Outcome:            t.Outcome,
		From:               t.From,
		To:                 t.To,
		ConsecutiveCorrect: t.ConsecutiveCorrect,
		ReviewedAt:         at,
	}
}
