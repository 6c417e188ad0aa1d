package store

import (
	"context"
	"errors"
	"time"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row changed since it was read.
	ErrConflict = errors.New("conflicting update")
)

// JobStatus is the lifecycle state of a flashcard generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// GenerationJob tracks one asynchronous LLM flashcard generation request.
type GenerationJob struct {
	ID           string
	UserID       string
	TopicID      string
	Status       JobStatus
	Requested    int
	CreatedCount int
	Model        string
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImportBatch is one topic and its cards, written together by SaveImport.
type ImportBatch struct {
	Topic *topic.Topic
	Cards []*flashcard.Flashcard
}

type TopicStore interface {
	SaveTopic(ctx context.Context, t *topic.Topic) error
	SaveImport(ctx context.Context, batches []ImportBatch) error
	GetTopic(ctx context.Context, userID, topicID string) (*topic.Topic, error)
	ListTopics(ctx context.Context, userID string) ([]*topic.Topic, error)
	UpdateTopic(ctx context.Context, t *topic.Topic) error
	DeleteTopic(ctx context.Context, userID, topicID string) error
	GetTopicStats(ctx context.Context, userID, topicID string) (topic.Stats, error)
}

// CardStore is the storage side of the study core: it supplies card pools
// and persists mastery updates.
type CardStore interface {
	SaveFlashcard(ctx context.Context, card *flashcard.Flashcard) error
	SaveFlashcards(ctx context.Context, cards []*flashcard.Flashcard) error
	GetFlashcard(ctx context.Context, userID, cardID string) (*flashcard.Flashcard, error)
	ListFlashcards(ctx context.Context, userID, topicID string) ([]flashcard.Flashcard, error)
	ListFlashcardsByStatus(ctx context.Context, userID, topicID string, status flashcard.MasteryStatus) ([]flashcard.Flashcard, error)
	SaveCardMasteryUpdate(ctx context.Context, userID, cardID string, t flashcard.Transition) error
	DeleteFlashcard(ctx context.Context, userID, cardID string) error
}

type ReviewStore interface {
	SaveReview(ctx context.Context, r flashcard.Review) error
	ListReviews(ctx context.Context, userID, cardID string) ([]flashcard.Review, error)
}

type JobStore interface {
	SaveGenerationJob(ctx context.Context, job *GenerationJob) error
	UpdateGenerationJob(ctx context.Context, job *GenerationJob) error
	GetGenerationJob(ctx context.Context, userID, jobID string) (*GenerationJob, error)
}

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	TopicStore
	CardStore
	ReviewStore
	JobStore
}
