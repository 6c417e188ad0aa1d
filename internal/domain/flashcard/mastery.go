package flashcard

import "fmt"

// MasteryStatus is a flashcard's spaced-repetition learning stage.
type MasteryStatus string

const (
	StatusLearning    MasteryStatus = "learning"
	StatusUnderReview MasteryStatus = "under_review"
	StatusMastered    MasteryStatus = "mastered"
)

// Statuses lists every mastery status in progression order.
var Statuses = []MasteryStatus{StatusLearning, StatusUnderReview, StatusMastered}

// IsValid reports whether s is one of the three mastery statuses.
func (s MasteryStatus) IsValid() bool {
	switch s {
	case StatusLearning, StatusUnderReview, StatusMastered:
		return true
	}
	return false
}

// ParseMasteryStatus converts a wire value into a MasteryStatus.
func ParseMasteryStatus(s string) (MasteryStatus, error) {
	status := MasteryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown mastery status %q", ErrInvalidArgument, s)
	}
	return status, nil
}

// ReviewOutcome is the user's self-reported recall result for one card.
type ReviewOutcome string

const (
	OutcomeKnow     ReviewOutcome = "know"
	OutcomeDontKnow ReviewOutcome = "dont_know"
)

// IsValid reports whether o is know or dont_know.
func (o ReviewOutcome) IsValid() bool {
	return o == OutcomeKnow || o == OutcomeDontKnow
}

// ParseReviewOutcome converts a wire value into a ReviewOutcome.
func ParseReviewOutcome(s string) (ReviewOutcome, error) {
	outcome := ReviewOutcome(s)
	if !outcome.IsValid() {
		return "", fmt.Errorf("%w: unknown review outcome %q", ErrInvalidArgument, s)
	}
	return outcome, nil
}
