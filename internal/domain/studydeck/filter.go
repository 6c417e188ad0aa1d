package studydeck

import (
	"fmt"

	"github.com/examcraft/backend/internal/domain/flashcard"
)

// Filter selects which cards go into a study deck.
type Filter string

const (
	FilterLearning    = Filter(flashcard.StatusLearning)
	FilterUnderReview = Filter(flashcard.StatusUnderReview)
	FilterMastered    = Filter(flashcard.StatusMastered)
	FilterAll         Filter = "all"
	FilterMixed       Filter = "mixed"
)

// ParseFilter converts a wire value into a Filter.
// An empty string selects the mixed deck.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterMixed, nil
	}
	f := Filter(s)
	if f == FilterAll || f == FilterMixed || f.IsStatus() {
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown mastery filter %q", flashcard.ErrInvalidArgument, s)
}

// IsStatus reports whether f selects one exact mastery status.
func (f Filter) IsStatus() bool {
	return flashcard.MasteryStatus(f).IsValid()
}

// Status returns the mastery status an exact filter selects.
func (f Filter) Status() flashcard.MasteryStatus {
	return flashcard.MasteryStatus(f)
}
