// internal/service/generation.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/generator"
	"github.com/examcraft/backend/internal/id"
	"github.com/examcraft/backend/internal/store"
	"github.com/examcraft/backend/internal/worker"
)

// MaxGenerateCount bounds how many cards one generation job may ask for.
const MaxGenerateCount = 50

var ErrServiceClosed = errors.New("generation service is closed")

// ErrQueueFull is returned by Submit when every worker is busy and the
// job queue has no room left.
var ErrQueueFull = errors.New("generation queue is full")

// GenerationStore is the persistence the generation service needs.
type GenerationStore interface {
	store.JobStore
	SaveFlashcards(ctx context.Context, cards []*flashcard.Flashcard) error
	GetTopic(ctx context.Context, userID, topicID string) (*topic.Topic, error)
}

// GenerateRequest asks for cards to be generated from source text.
type GenerateRequest struct {
	UserID     string
	TopicID    string
	SourceText string
	Count      int
}

type generationOutput struct {
	drafts []generator.Draft
	err    error
}

type pendingJob struct {
	job *store.GenerationJob
	wg  sync.WaitGroup
}

// GenerationService runs LLM flashcard generation in the background.
// Jobs are executed on a worker pool; a collector goroutine persists each
// result so the store stays a pure persistence layer.
type GenerationService struct {
	store  GenerationStore
	gen    generator.Generator
	pool   *worker.Pool[generationOutput]
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*pendingJob // jobID → job

	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
}

// NewGenerationService starts workers generation goroutines and the
// result collector. Call Close to stop them.
func NewGenerationService(s GenerationStore, g generator.Generator, workers, queueSize int, logger *zap.Logger) *GenerationService {
	gs := &GenerationService{
		store:   s,
		gen:     g,
		pool:    worker.NewPool[generationOutput](workers, queueSize),
		logger:  logger,
		pending: make(map[string]*pendingJob),
		done:    make(chan struct{}),
	}
	go gs.collect()
	return gs
}

// Submit validates the request, records a pending job and queues it.
func (gs *GenerationService) Submit(ctx context.Context, req GenerateRequest) (*store.GenerationJob, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, fmt.Errorf("%w: source text is required", flashcard.ErrInvalidArgument)
	}
	if req.Count < 1 || req.Count > MaxGenerateCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", flashcard.ErrInvalidArgument, MaxGenerateCount)
	}

	t, err := gs.store.GetTopic(ctx, req.UserID, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("load topic %s: %w", req.TopicID, err)
	}

	gs.closeMu.RLock()
	defer gs.closeMu.RUnlock()
	if gs.closed {
		return nil, ErrServiceClosed
	}

	now := time.Now().UTC()
	job := &store.GenerationJob{
		ID:        id.GenerateID(),
		UserID:    req.UserID,
		TopicID:   t.ID,
		Status:    store.JobPending,
		Requested: req.Count,
		Model:     gs.gen.Model(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gs.store.SaveGenerationJob(ctx, job); err != nil {
		return nil, fmt.Errorf("save generation job: %w", err)
	}

	snapshot := *job

	p := &pendingJob{job: job}
	p.wg.Add(1)
	gs.mu.Lock()
	gs.pending[job.ID] = p
	gs.mu.Unlock()

	genReq := generator.Request{
		Topic:      t.Name,
		SourceText: req.SourceText,
		Count:      req.Count,
	}

	// Generation runs detached from the HTTP request that started it.
	accepted := gs.pool.TrySubmit(job.ID, func() generationOutput {
		drafts, err := gs.gen.GenerateFlashcards(context.Background(), genReq)
		return generationOutput{drafts: drafts, err: err}
	})
	if !accepted {
		gs.reject(ctx, p)
		return nil, ErrQueueFull
	}

	return &snapshot, nil
}

// Get returns the persisted state of a job.
func (gs *GenerationService) Get(ctx context.Context, userID, jobID string) (*store.GenerationJob, error) {
	return gs.store.GetGenerationJob(ctx, userID, jobID)
}

// Wait blocks until the given job's result has been persisted.
// It returns immediately for unknown or already finished jobs.
func (gs *GenerationService) Wait(jobID string) {
	gs.mu.Lock()
	p, ok := gs.pending[jobID]
	gs.mu.Unlock()

	if ok {
		p.wg.Wait()
	}
}

// Close stops accepting jobs, finishes queued ones and waits for the
// collector to persist their results.
func (gs *GenerationService) Close() {
	gs.closeMu.Lock()
	if gs.closed {
		gs.closeMu.Unlock()
		<-gs.done
		return
	}
	gs.closed = true
	gs.pool.Close()
	gs.closeMu.Unlock()

	<-gs.done
}

// reject records a job the pool had no room for as failed.
func (gs *GenerationService) reject(ctx context.Context, p *pendingJob) {
	gs.mu.Lock()
	delete(gs.pending, p.job.ID)
	gs.mu.Unlock()
	defer p.wg.Done()

	p.job.Status = store.JobFailed
	p.job.Error = ErrQueueFull.Error()
	if err := gs.store.UpdateGenerationJob(ctx, p.job); err != nil {
		gs.logger.Error("failed to update generation job",
			zap.String("job_id", p.job.ID),
			zap.Error(err),
		)
	}
}

func (gs *GenerationService) collect() {
	defer close(gs.done)
	for r := range gs.pool.Results() {
		gs.finish(r.JobID, r.Output)
	}
}

// finish persists the generated cards and the job's final state.
func (gs *GenerationService) finish(jobID string, out generationOutput) {
	gs.mu.Lock()
	p, ok := gs.pending[jobID]
	gs.mu.Unlock()
	if !ok {
		gs.logger.Error("generation result for unknown job", zap.String("job_id", jobID))
		return
	}

	defer func() {
		gs.mu.Lock()
		delete(gs.pending, jobID)
		gs.mu.Unlock()
		p.wg.Done()
	}()

	ctx := context.Background()
	job := p.job

	if out.err != nil {
		gs.logger.Error("generation error",
			zap.String("job_id", jobID),
			zap.Error(out.err),
		)
		job.Status = store.JobFailed
		job.Error = out.err.Error()
	} else if created, err := gs.saveDrafts(ctx, job, out.drafts); err != nil {
		gs.logger.Error("failed to save generated flashcards",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		job.Status = store.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = store.JobCompleted
		job.CreatedCount = created
	}

	if err := gs.store.UpdateGenerationJob(ctx, job); err != nil {
		gs.logger.Error("failed to update generation job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}

func (gs *GenerationService) saveDrafts(ctx context.Context, job *store.GenerationJob, drafts []generator.Draft) (int, error) {
	cards := make([]*flashcard.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		card, err := flashcard.New(job.UserID, job.TopicID, d.Front, d.Back)
		if err != nil {
			continue
		}
		card.Source = flashcard.SourceGenerated
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return 0, errors.New("no valid flashcards generated")
	}
	if err := gs.store.SaveFlashcards(ctx, cards); err != nil {
		return 0, err
	}
	return len(cards), nil
}
