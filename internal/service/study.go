// internal/service/study.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/studydeck"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/store"
)

// StudyStore is the persistence the study service needs.
type StudyStore interface {
	store.CardStore
	store.ReviewStore
	GetTopic(ctx context.Context, userID, topicID string) (*topic.Topic, error)
}

// StudySession is a composed deck plus what the UI shows around it.
type StudySession struct {
	TopicID    string
	TopicName  string
	TotalCards int
	Deck       studydeck.Deck
}

// ReviewResult is the outcome of recording one review.
type ReviewResult struct {
	Card       flashcard.Flashcard
	Transition flashcard.Transition
	Message    string
}

// StudyService wires the deck composer and the mastery tracker to storage.
type StudyService struct {
	store    StudyStore
	composer *studydeck.Composer
	logger   *zap.Logger
	now      func() time.Time
}

func NewStudyService(s StudyStore, composer *studydeck.Composer, logger *zap.Logger) *StudyService {
	return &StudyService{
		store:    s,
		composer: composer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BuildDeck composes a fresh study deck for one topic.
//
// The topic and the card pools the filter needs are loaded concurrently.
// An empty deck is returned as a normal result; only storage failures,
// a missing topic (store.ErrNotFound) and an unknown filter are errors.
func (s *StudyService) BuildDeck(ctx context.Context, userID, topicID string, filter studydeck.Filter) (*StudySession, error) {
	if filter != studydeck.FilterAll && filter != studydeck.FilterMixed && !filter.IsStatus() {
		return nil, fmt.Errorf("%w: unknown mastery filter %q", flashcard.ErrInvalidArgument, filter)
	}

	var (
		t                               *topic.Topic
		all, learning, review, mastered []flashcard.Flashcard
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.store.GetTopic(gctx, userID, topicID)
		if err != nil {
			return fmt.Errorf("load topic %s: %w", topicID, err)
		}
		return nil
	})

	load := func(status flashcard.MasteryStatus, dst *[]flashcard.Flashcard) {
		g.Go(func() error {
			cards, err := s.store.ListFlashcardsByStatus(gctx, userID, topicID, status)
			if err != nil {
				return fmt.Errorf("load %s cards: %w", status, err)
			}
			*dst = cards
			return nil
		})
	}

	switch {
	case filter == studydeck.FilterAll:
		g.Go(func() error {
			cards, err := s.store.ListFlashcards(gctx, userID, topicID)
			if err != nil {
				return fmt.Errorf("load cards: %w", err)
			}
			all = cards
			return nil
		})
	case filter == studydeck.FilterMixed:
		load(flashcard.StatusLearning, &learning)
		load(flashcard.StatusUnderReview, &review)
		load(flashcard.StatusMastered, &mastered)
	default:
		switch filter.Status() {
		case flashcard.StatusLearning:
			load(flashcard.StatusLearning, &learning)
		case flashcard.StatusUnderReview:
			load(flashcard.StatusUnderReview, &review)
		case flashcard.StatusMastered:
			load(flashcard.StatusMastered, &mastered)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pools := studydeck.Pools{
		All:         all,
		Learning:    learning,
		UnderReview: review,
		Mastered:    mastered,
	}

	// The whole topic is only needed when an exact bucket came back empty.
	if filter.IsStatus() && len(pools.Bucket(filter.Status())) == 0 {
		cards, err := s.store.ListFlashcards(ctx, userID, topicID)
		if err != nil {
			return nil, fmt.Errorf("load fallback cards: %w", err)
		}
		pools.All = cards
	}

	deck, err := s.composer.Compose(filter, pools)
	if err != nil {
		return nil, err
	}

	if deck.UsedFallback {
		s.logger.Debug("study deck fell back to all cards",
			zap.String("topic_id", topicID),
			zap.String("filter", string(filter)),
		)
	}

	return &StudySession{
		TopicID:    t.ID,
		TopicName:  t.Name,
		TotalCards: len(deck.Cards),
		Deck:       deck,
	}, nil
}

// maxReviewAttempts bounds how often RecordReview re-reads a card that a
// concurrent review changed underneath it.
const maxReviewAttempts = 3

// RecordReview applies a review outcome to a card and persists the new
// mastery state. The status and streak change together, and only from the
// state the outcome was applied to. The review log entry is best effort.
func (s *StudyService) RecordReview(ctx context.Context, userID, cardID string, outcome flashcard.ReviewOutcome) (*ReviewResult, error) {
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: unknown review outcome %q", flashcard.ErrInvalidArgument, outcome)
	}

	var (
		updated flashcard.Flashcard
		tr      flashcard.Transition
		now     time.Time
	)
	for attempt := 1; ; attempt++ {
		card, err := s.store.GetFlashcard(ctx, userID, cardID)
		if err != nil {
			return nil, fmt.Errorf("load card %s: %w", cardID, err)
		}

		now = s.now()
		updated, tr = card.Apply(outcome, now)

		err = s.store.SaveCardMasteryUpdate(ctx, userID, cardID, tr)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) || attempt == maxReviewAttempts {
			return nil, fmt.Errorf("save mastery update for card %s: %w", cardID, err)
		}
		s.logger.Debug("concurrent review, retrying",
			zap.String("card_id", cardID),
			zap.Int("attempt", attempt),
		)
	}

	if err := s.store.SaveReview(ctx, flashcard.NewReview(updated, tr, now)); err != nil {
		s.logger.Error("failed to save review log",
			zap.String("card_id", cardID),
			zap.Error(err),
		)
	}

	return &ReviewResult{
		Card:       updated,
		Transition: tr,
		Message:    flashcard.MasteryMessage(outcome, tr.To),
	}, nil
}
