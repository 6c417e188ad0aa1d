package studydeck

import "github.com/examcraft/backend/internal/domain/flashcard"

// MaxDeckSize bounds the length of a mixed study session.
const MaxDeckSize = 20

// Quota is one bucket's share of a mixed deck, in percent.
type Quota struct {
	Status  flashcard.MasteryStatus
	Percent int
}

// DefaultQuotas is the mixed-deck composition in sampling priority order.
var DefaultQuotas = []Quota{
	{Status: flashcard.StatusUnderReview, Percent: 50},
	{Status: flashcard.StatusLearning, Percent: 40},
	{Status: flashcard.StatusMastered, Percent: 10},
}

// fillOrder is the order buckets are drawn from once quotas are exhausted.
var fillOrder = []flashcard.MasteryStatus{
	flashcard.StatusLearning,
	flashcard.StatusUnderReview,
	flashcard.StatusMastered,
}

// TargetSize is the mixed deck length for the given number of available cards.
func TargetSize(available int) int {
	return min(available, MaxDeckSize)
}

// QuotaCounts computes how many cards to sample from each bucket.
//
// Each count is round-half-up(target * percent / 100), capped by the bucket's
// size and by what is left of the target, so the counts never exceed either.
// The result is indexed like quotas.
func QuotaCounts(target int, quotas []Quota, available map[flashcard.MasteryStatus]int) []int {
	counts := make([]int, len(quotas))
	remaining := target
	for i, q := range quotas {
		n := (target*q.Percent + 50) / 100
		n = min(n, available[q.Status], remaining)
		n = max(n, 0)
		counts[i] = n
		remaining -= n
	}
	return counts
}
