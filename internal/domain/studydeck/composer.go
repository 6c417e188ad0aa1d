package studydeck

import (
	"fmt"
	"math/rand/v2"

	"github.com/examcraft/backend/internal/domain/flashcard"
)

// Shuffler permutes n elements in place. *rand.Rand satisfies it, so tests
// can pass a seeded source.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// globalShuffler uses the math/rand/v2 top-level source, which is safe for
// concurrent use.
type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Pools are the caller-supplied cards for one user and topic. All is the
// whole topic; the buckets hold cards with exactly that status. A pool the
// filter does not need may be left nil.
type Pools struct {
	All         []flashcard.Flashcard
	Learning    []flashcard.Flashcard
	UnderReview []flashcard.Flashcard
	Mastered    []flashcard.Flashcard
}

// Bucket returns the pool for one mastery status.
func (p Pools) Bucket(status flashcard.MasteryStatus) []flashcard.Flashcard {
	switch status {
	case flashcard.StatusLearning:
		return p.Learning
	case flashcard.StatusUnderReview:
		return p.UnderReview
	case flashcard.StatusMastered:
		return p.Mastered
	}
	return nil
}

// Deck is one study session's cards. An empty deck is a normal outcome for
// new users and topics; Message then explains why.
type Deck struct {
	Filter       Filter
	Cards        []flashcard.Flashcard
	UsedFallback bool
	Message      string
}

func (d Deck) Empty() bool { return len(d.Cards) == 0 }

// Composer builds study decks. It holds no mutable state and is safe for
// concurrent use as long as its Shuffler is.
type Composer struct {
	rng    Shuffler
	quotas []Quota
}

// NewComposer returns a composer using the global random source and the
// default mixed-deck quotas.
func NewComposer() *Composer {
	return NewComposerWithShuffler(globalShuffler{})
}

func NewComposerWithShuffler(rng Shuffler) *Composer {
	return &Composer{rng: rng, quotas: DefaultQuotas}
}

// Compose builds a fresh, shuffled deck for filter from pools.
// It only fails for an unknown filter.
func (c *Composer) Compose(filter Filter, pools Pools) (Deck, error) {
	switch {
	case filter == FilterAll:
		return c.composeAll(pools), nil
	case filter == FilterMixed:
		return c.composeMixed(pools), nil
	case filter.IsStatus():
		return c.composeStatus(filter, pools), nil
	}
	return Deck{}, fmt.Errorf("%w: unknown mastery filter %q", flashcard.ErrInvalidArgument, filter)
}

func (c *Composer) composeAll(pools Pools) Deck {
	if len(pools.All) == 0 {
		return Deck{Filter: FilterAll, Message: "No flashcards found for this topic"}
	}
	return Deck{Filter: FilterAll, Cards: c.shuffled(pools.All)}
}

func (c *Composer) composeStatus(filter Filter, pools Pools) Deck {
	status := filter.Status()

	if bucket := pools.Bucket(status); len(bucket) > 0 {
		return Deck{Filter: filter, Cards: c.shuffled(bucket)}
	}

	if len(pools.All) == 0 {
		return Deck{
			Filter:  filter,
			Message: fmt.Sprintf("No %s flashcards found for this topic", status),
		}
	}

	return Deck{
		Filter:       filter,
		Cards:        c.shuffled(pools.All),
		UsedFallback: true,
		Message:      fmt.Sprintf("No %s cards found. Showing all cards for this topic.", status),
	}
}

func (c *Composer) composeMixed(pools Pools) Deck {
	available := make(map[flashcard.MasteryStatus]int, len(fillOrder))
	total := 0
	for _, status := range fillOrder {
		n := len(pools.Bucket(status))
		available[status] = n
		total += n
	}

	if total == 0 {
		return Deck{Filter: FilterMixed, Message: "No flashcards found for this topic"}
	}

	target := TargetSize(total)
	counts := QuotaCounts(target, c.quotas, available)

	deck := make([]flashcard.Flashcard, 0, target)
	chosen := make(map[string]bool, target)
	for i, q := range c.quotas {
		for _, card := range c.sample(pools.Bucket(q.Status), counts[i]) {
			if !chosen[card.ID] {
				chosen[card.ID] = true
				deck = append(deck, card)
			}
		}
	}

	if len(deck) < target {
		var rest []flashcard.Flashcard
		for _, status := range fillOrder {
			for _, card := range pools.Bucket(status) {
				if !chosen[card.ID] {
					chosen[card.ID] = true
					rest = append(rest, card)
				}
			}
		}
		deck = append(deck, c.sample(rest, target-len(deck))...)
	}

	c.shuffle(deck)
	return Deck{Filter: FilterMixed, Cards: deck}
}

// sample draws n cards without replacement.
func (c *Composer) sample(cards []flashcard.Flashcard, n int) []flashcard.Flashcard {
	if n <= 0 {
		return nil
	}
	s := c.shuffled(cards)
	return s[:min(n, len(s))]
}

// shuffled returns a shuffled copy; the caller's slice is left untouched.
func (c *Composer) shuffled(cards []flashcard.Flashcard) []flashcard.Flashcard {
	out := make([]flashcard.Flashcard, len(cards))
	copy(out, cards)
	c.shuffle(out)
	return out
}

func (c *Composer) shuffle(cards []flashcard.Flashcard) {
	c.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
