package flashcard

import (
	"fmt"
	"strings"
	"time"

	"github.com/examcraft/backend/internal/id"
)

// Source records how a card was created.
type Source string

const (
	SourceManual    Source = "manual"
	SourceGenerated Source = "generated"
	SourceImported  Source = "imported"
)

// Flashcard is a single front/back study card owned by one user.
type Flashcard struct {
	ID                 string
	UserID             string
	TopicID            string
	Front              string
	Back               string
	MasteryStatus      MasteryStatus
	ConsecutiveCorrect int
	Source             Source
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New creates a card in the initial learning state.
func New(userID, topicID, front, back string) (*Flashcard, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" {
		return nil, fmt.Errorf("%w: flashcard front cannot be empty", ErrInvalidArgument)
	}
	if back == "" {
		return nil, fmt.Errorf("%w: flashcard back cannot be empty", ErrInvalidArgument)
	}

	now := time.Now().UTC()
	return &Flashcard{
		ID:                 id.GenerateID(),
		UserID:             userID,
		TopicID:            topicID,
		Front:              front,
		Back:               back,
		MasteryStatus:      StatusLearning,
		ConsecutiveCorrect: 0,
		Source:             SourceManual,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Validate checks the mastery fields loaded from storage or an import.
func (f *Flashcard) Validate() error {
	if !f.MasteryStatus.IsValid() {
		return fmt.Errorf("%w: card %s has mastery status %q", ErrInvalidArgument, f.ID, f.MasteryStatus)
	}
	if f.ConsecutiveCorrect < 0 {
		return fmt.Errorf("%w: card %s has negative streak %d", ErrInvalidArgument, f.ID, f.ConsecutiveCorrect)
	}
	return nil
}

// Transition describes one review's effect on a card. From and
// FromConsecutiveCorrect are the state the review was applied to.
type Transition struct {
	Outcome                ReviewOutcome
	From                   MasteryStatus
	FromConsecutiveCorrect int
	To                     MasteryStatus
	ConsecutiveCorrect     int
}

// Apply returns a copy of f updated for the given outcome. f is not modified.
func (f Flashcard) Apply(outcome ReviewOutcome, at time.Time) (Flashcard, Transition) {
	status, streak := CalculateMasteryStatus(outcome, f.MasteryStatus, f.ConsecutiveCorrect)

	t := Transition{
		Outcome:                outcome,
		From:                   f.MasteryStatus,
		FromConsecutiveCorrect: f.ConsecutiveCorrect,
		To:                     status,
		ConsecutiveCorrect:     streak,
	}

	f.MasteryStatus = status
	f.ConsecutiveCorrect = streak
	f.UpdatedAt = at
	return f, t
}
