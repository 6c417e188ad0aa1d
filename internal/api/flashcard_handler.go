package api

import (
	"net/http"
	"time"

	"github.com/examcraft/backend/internal/domain/flashcard"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateFlashcardRequest struct {
	Front string `json:"front" validate:"required" example:"What does a buffered channel do?"`
	Back  string `json:"back" validate:"required" example:"Lets sends proceed until the buffer is full."`
}

type FlashcardResponse struct {
	ID                 string    `json:"id" example:"01928c4e-7a3b-7c2d-9e1f-0a1b2c3d4e5f"`
	TopicID            string    `json:"topic_id" example:"01928c4e-7a3b-7c2d-9e1f-0a1b2c3d4e60"`
	Front              string    `json:"front" example:"What does a buffered channel do?"`
	Back               string    `json:"back" example:"Lets sends proceed until the buffer is full."`
	MasteryStatus      string    `json:"mastery_status" example:"learning"`
	ConsecutiveCorrect int       `json:"consecutive_correct" example:"0"`
	Source             string    `json:"source" example:"manual"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ReviewLogResponse struct {
	ID                 string    `json:"id"`
	Performance        string    `json:"performance" example:"know"`
	From               string    `json:"from" example:"learning"`
	To                 string    `json:"to" example:"under_review"`
	ConsecutiveCorrect int       `json:"consecutive_correct" example:"1"`
	ReviewedAt         time.Time `json:"reviewed_at"`
}

func toFlashcardResponse(c flashcard.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:                 c.ID,
		TopicID:            c.TopicID,
		Front:              c.Front,
		Back:               c.Back,
		MasteryStatus:      string(c.MasteryStatus),
		ConsecutiveCorrect: c.ConsecutiveCorrect,
		Source:             string(c.Source),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toFlashcardResponses(cards []flashcard.Flashcard) []FlashcardResponse {
	resp := make([]FlashcardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toFlashcardResponse(c))
	}
	return resp
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createFlashcard adds a card to a topic. New cards start in learning.
// @Summary      Create a flashcard
// @Tags         Flashcards
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                  true  "Caller id"
// @Param        topicID    path      string                  true  "Topic ID"
// @Param        body       body      CreateFlashcardRequest  true  "Card to create"
// @Success      201        {object}  FlashcardResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse  "topic not found"
// @Router       /topics/{topicID}/flashcards [post]
func (h *Handler) createFlashcard(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}
	var req CreateFlashcardRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	userID := UserID(ctx)
	if _, err := h.store.GetTopic(ctx, userID, topicID); h.handleError(w, err, "topic") {
		return
	}

	card, err := flashcard.New(userID, topicID, req.Front, req.Back)
	if h.handleError(w, err, "flashcard") {
		return
	}
	if h.handleError(w, h.store.SaveFlashcard(ctx, card), "flashcard") {
		return
	}
	respondJSON(w, http.StatusCreated, toFlashcardResponse(*card))
}

// listFlashcards lists a topic's cards, optionally by mastery status.
// @Summary      List flashcards
// @Tags         Flashcards
// @Produce      json
// @Param        X-User-ID  header    string  true   "Caller id"
// @Param        topicID    path      string  true   "Topic ID"
// @Param        mastery    query     string  false  "learning, under_review or mastered"
// @Success      200        {array}   FlashcardResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /topics/{topicID}/flashcards [get]
func (h *Handler) listFlashcards(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}

	ctx := r.Context()
	userID := UserID(ctx)
	if _, err := h.store.GetTopic(ctx, userID, topicID); h.handleError(w, err, "topic") {
		return
	}

	var (
		cards []flashcard.Flashcard
		err   error
	)
	if m := r.URL.Query().Get("mastery"); m != "" {
		status, perr := flashcard.ParseMasteryStatus(m)
		if h.handleError(w, perr, "flashcard") {
			return
		}
		cards, err = h.store.ListFlashcardsByStatus(ctx, userID, topicID, status)
	} else {
		cards, err = h.store.ListFlashcards(ctx, userID, topicID)
	}
	if h.handleError(w, err, "flashcard") {
		return
	}
	respondJSON(w, http.StatusOK, toFlashcardResponses(cards))
}

// getFlashcard returns one card with its mastery state.
// @Summary      Get a flashcard
// @Tags         Flashcards
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Param        cardID     path      string  true  "Flashcard ID"
// @Success      200        {object}  FlashcardResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /flashcards/{cardID} [get]
func (h *Handler) getFlashcard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "flashcard")
	if !ok {
		return
	}

	card, err := h.store.GetFlashcard(r.Context(), UserID(r.Context()), cardID)
	if h.handleError(w, err, "flashcard") {
		return
	}
	respondJSON(w, http.StatusOK, toFlashcardResponse(*card))
}

// deleteFlashcard removes a card and its review history.
// @Summary      Delete a flashcard
// @Tags         Flashcards
// @Param        X-User-ID  header  string  true  "Caller id"
// @Param        cardID     path    string  true  "Flashcard ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /flashcards/{cardID} [delete]
func (h *Handler) deleteFlashcard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "flashcard")
	if !ok {
		return
	}
	if h.handleError(w, h.store.DeleteFlashcard(r.Context(), UserID(r.Context()), cardID), "flashcard") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listReviews returns a card's review history, oldest first.
// @Summary      Flashcard review history
// @Tags         Flashcards
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller id"
// @Param        cardID     path      string  true  "Flashcard ID"
// @Success      200        {array}   ReviewLogResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /flashcards/{cardID}/reviews [get]
func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "flashcard")
	if !ok {
		return
	}

	ctx := r.Context()
	userID := UserID(ctx)
	if _, err := h.store.GetFlashcard(ctx, userID, cardID); h.handleError(w, err, "flashcard") {
		return
	}
	reviews, err := h.store.ListReviews(ctx, userID, cardID)
	if h.handleError(w, err, "flashcard") {
		return
	}

	resp := make([]ReviewLogResponse, 0, len(reviews))
	for _, rv := range reviews {
		resp = append(resp, ReviewLogResponse{
			ID:                 rv.ID,
			Performance:        string(rv.Outcome),
			From:               string(rv.From),
			To:                 string(rv.To),
			ConsecutiveCorrect: rv.ConsecutiveCorrect,
			ReviewedAt:         rv.ReviewedAt,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
