package api

import (
	"net/http"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/studydeck"
)

// ── Request / Response types ────────────────────────────────────────────────

type StudyDeckResponse struct {
	TopicID      string              `json:"topic_id"`
	TopicName    string              `json:"topic_name" example:"Go concurrency"`
	Filter       string              `json:"filter" example:"mixed"`
	TotalCards   int                 `json:"total_cards" example:"20"`
	UsedFallback bool                `json:"used_fallback" example:"false"`
	Message      string              `json:"message,omitempty" example:"No mastered cards found. Showing all cards for this topic."`
	Flashcards   []FlashcardResponse `json:"flashcards"`
}

type ReviewRequest struct {
	Performance string `json:"performance" validate:"required,oneof=know dont_know" example:"know"`
}

type ReviewResponse struct {
	CardID             string `json:"card_id"`
	PreviousStatus     string `json:"previous_status" example:"under_review"`
	MasteryStatus      string `json:"mastery_status" example:"mastered"`
	ConsecutiveCorrect int    `json:"consecutive_correct" example:"2"`
	Message            string `json:"message" example:"Excellent! You've mastered this card!"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// getStudyDeck composes a study deck for a topic.
// @Summary      Get a study deck
// @Description  mixed (default) draws up to 20 cards weighted toward under_review;
// @Description  an exact status falls back to all cards when none match.
// @Tags         Study
// @Produce      json
// @Param        X-User-ID  header    string  true   "Caller id"
// @Param        topicID    path      string  true   "Topic ID"
// @Param        mastery    query     string  false  "learning, under_review, mastered, all or mixed"
// @Success      200        {object}  StudyDeckResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse  "topic not found or no cards"
// @Router       /topics/{topicID}/study [get]
func (h *Handler) getStudyDeck(w http.ResponseWriter, r *http.Request) {
	topicID, ok := pathID(w, r, "topicID", "topic")
	if !ok {
		return
	}
	filter, err := studydeck.ParseFilter(r.URL.Query().Get("mastery"))
	if h.handleError(w, err, "topic") {
		return
	}

	ctx := r.Context()
	sess, err := h.study.BuildDeck(ctx, UserID(ctx), topicID, filter)
	if h.handleError(w, err, "topic") {
		return
	}

	deck := sess.Deck
	if deck.Empty() {
		respondError(w, http.StatusNotFound, deck.Message)
		return
	}

	respondJSON(w, http.StatusOK, StudyDeckResponse{
		TopicID:      sess.TopicID,
		TopicName:    sess.TopicName,
		Filter:       string(deck.Filter),
		TotalCards:   sess.TotalCards,
		UsedFallback: deck.UsedFallback,
		Message:      deck.Message,
		Flashcards:   toFlashcardResponses(deck.Cards),
	})
}

// reviewFlashcard records whether the user knew a card.
// @Summary      Review a flashcard
// @Tags         Study
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string         true  "Caller id"
// @Param        cardID     path      string         true  "Flashcard ID"
// @Param        body       body      ReviewRequest  true  "know or dont_know"
// @Success      200        {object}  ReviewResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /flashcards/{cardID}/review [post]
func (h *Handler) reviewFlashcard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "cardID", "flashcard")
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	outcome, err := flashcard.ParseReviewOutcome(req.Performance)
	if h.handleError(w, err, "flashcard") {
		return
	}

	ctx := r.Context()
	res, err := h.study.RecordReview(ctx, UserID(ctx), cardID, outcome)
	if h.handleError(w, err, "flashcard") {
		return
	}

	respondJSON(w, http.StatusOK, ReviewResponse{
		CardID:             res.Card.ID,
		PreviousStatus:     string(res.Transition.From),
		MasteryStatus:      string(res.Transition.To),
		ConsecutiveCorrect: res.Transition.ConsecutiveCorrect,
		Message:            res.Message,
	})
}
