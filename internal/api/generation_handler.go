package api

import (
	"net/http"
	"time"

	"github.com/examcraft/backend/internal/service"
	"github.com/examcraft/backend/internal/store"
)

// defaultGenerateCount is used when the request leaves count unset.
const defaultGenerateCount = 10

// ── Request / Response types ────────────────────────────────────────────────

type GenerateFlashcardsRequest struct {
	SourceText string `json:"source_text" validate:"required" example:"Goroutines are multiplexed onto OS threads..."`
	Count      int    `json:"count,omitempty" validate:"omitempty,min=1,max=50" example:"10"`
}

type GenerationJobResponse struct {
	ID           string    `json:"id"`
	TopicID      string    `json:"topic_id"`
	Status       string    `json:"status" example:"pending"`
	Requested    int       `json:"requested" example:"10"`
	CreatedCount int       `json:"created_count" example:"0"`
	Model        string    `json:"model" example:"qwen3-8b"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toGenerationJobResponse(j *store.GenerationJob) GenerationJobResponse {
	return GenerationJobResponse{
		ID:           j.ID,
		TopicID:      j.TopicID,
		Status:       string(j.Status),
		Requested:    j.Requested,
		CreatedCount: j.CreatedCount,
		Model:        j.Model,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// generateFlashcards queues an LLM job that turns source text into cards.
// @Summary      Generate flashcards
// @Description  Returns immediately with a pending job; poll /generation-jobs/{jobID}.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                     true  "Caller id"
// @Param        topicID    path      string                     true  "Topic ID"
// @Param        body       body      GenerateFlashcardsRequest  true  "Source material"
// @Success      202        {object}  GenerationJobResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      503        {object}  ErrorResponse  "queue full or shutting down"
// @Router       /topics/{topicID}/flashcards/generate [post]
func (h *Handler) generateFlashcards(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}
	var req GenerateFlashcardsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = defaultGenerateCount
	}

	ctx := r.Context()
	job, err := h.generation.Submit(ctx, service.GenerateRequest{
		UserID:     UserID(ctx),
		TopicID:    topicID,
		SourceText: req.SourceText,
		Count:      req.Count,
	})
	if h.handleError(w, err, "topic") {
		return
	}
	respondJSON(w, http.StatusAccepted, toGenerationJobResponse(job))
}

// getGenerationJob reports a generation job's progress.
// @Summary      Get a generation job
// @Tags         Generation
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Param        jobID      path      string  true  "Job ID"
// @Success      200        {object}  GenerationJobResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /generation-jobs/{jobID} [get]
func (h *Handler) getGenerationJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(w, r, "jobID", "job")
	if !ok {
		return
	}

	job, err := h.generation.Get(r.Context(), UserID(r.Context()), jobID)
	if h.handleError(w, err, "job") {
		return
	}
	respondJSON(w, http.StatusOK, toGenerationJobResponse(job))
}
