package api

import (
	"net/http"
	"time"

	"github.com/examcraft/backend/internal/domain/topic"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateTopicRequest struct {
	Name string `json:"name" validate:"required,max=200" example:"Go concurrency"`
}

type UpdateTopicRequest struct {
	Name string `json:"name" validate:"required,max=200" example:"Go concurrency patterns"`
}

type TopicResponse struct {
	ID        string    `json:"id" example:"01928c4e-7a3b-7c2d-9e1f-0a1b2c3d4e5f"`
	Name      string    `json:"name" example:"Go concurrency"`
	CreatedAt time.Time `json:"created_at"`
}

type TopicStatsResponse struct {
	TopicID         string `json:"topic_id" example:"01928c4e-7a3b-7c2d-9e1f-0a1b2c3d4e5f"`
	Total           int    `json:"total" example:"12"`
	Learning        int    `json:"learning" example:"5"`
	UnderReview     int    `json:"under_review" example:"4"`
	Mastered        int    `json:"mastered" example:"3"`
	MasteredPercent int    `json:"mastered_percent" example:"25"`
}

func toTopicResponse(t *topic.Topic) TopicResponse {
	return TopicResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createTopic creates a new topic.
// @Summary      Create a topic
// @Tags         Topics
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string              true  "Caller id"
// @Param        body       body      CreateTopicRequest  true  "Topic to create"
// @Success      201        {object}  TopicResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /topics [post]
func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	t, err := topic.New(UserID(r.Context()), req.Name)
	if h.handleError(w, err, "topic") {
		return
	}
	if h.handleError(w, h.store.SaveTopic(r.Context(), t), "topic") {
		return
	}

	respondJSON(w, http.StatusCreated, toTopicResponse(t))
}

// listTopics returns the caller's topics.
// @Summary      List topics
// @Tags         Topics
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Success      200        {array}   TopicResponse
// @Failure      500        {object}  ErrorResponse
// @Router       /topics [get]
func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.ListTopics(r.Context(), UserID(r.Context()))
	if h.handleError(w, err, "topic") {
		return
	}

	resp := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		resp = append(resp, toTopicResponse(t))
	}
	respondJSON(w, http.StatusOK, resp)
}

// getTopic returns one topic.
// @Summary      Get a topic
// @Tags         Topics
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Param        topicID    path      string  true  "Topic ID"
// @Success      200        {object}  TopicResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /topics/{topicID} [get]
func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}

	t, err := h.store.GetTopic(r.Context(), UserID(r.Context()), topicID)
	if h.handleError(w, err, "topic") {
		return
	}
	respondJSON(w, http.StatusOK, toTopicResponse(t))
}

// updateTopic renames a topic.
// @Summary      Rename a topic
// @Tags         Topics
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string              true  "Caller id"
// @Param        topicID    path      string              true  "Topic ID"
// @Param        body       body      UpdateTopicRequest  true  "New name"
// @Success      200        {object}  TopicResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /topics/{topicID} [put]
func (h *Handler) updateTopic(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}
	var req UpdateTopicRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	t, err := h.store.GetTopic(ctx, UserID(ctx), topicID)
	if h.handleError(w, err, "topic") {
		return
	}
	if h.handleError(w, t.Rename(req.Name), "topic") {
		return
	}
	if h.handleError(w, h.store.UpdateTopic(ctx, t), "topic") {
		return
	}
	respondJSON(w, http.StatusOK, toTopicResponse(t))
}

// deleteTopic removes a topic with its cards and review history.
// @Summary      Delete a topic
// @Tags         Topics
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        topicID    path    string  true  "Topic ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /topics/{topicID} [delete]
func (h *Handler) deleteTopic(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}
	if h.handleError(w, h.store.DeleteTopic(r.Context(), UserID(r.Context()), topicID), "topic") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getTopicStats counts a topic's cards per mastery status.
// @Summary      Topic mastery stats
// @Tags         Topics
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Param        topicID    path      string  true  "Topic ID"
// @Success      200        {object}  TopicStatsResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /topics/{topicID}/stats [get]
func (h *Handler) getTopicStats(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetTopic(ctx, UserID(ctx), topicID); h.handleError(w, err, "topic") {
		return
	}
	stats, err := h.store.GetTopicStats(ctx, UserID(ctx), topicID)
	if h.handleError(w, err, "topic") {
		return
	}
	respondJSON(w, http.StatusOK, TopicStatsResponse{
		TopicID:         stats.TopicID,
		Total:           stats.Total,
		Learning:        stats.Learning,
		UnderReview:     stats.UnderReview,
		Mastered:        stats.Mastered,
		MasteredPercent: stats.MasteredPercent(),
	})
}
