package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/id"
	"github.com/examcraft/backend/internal/service"
	"github.com/examcraft/backend/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	store      store.Store
	study      *service.StudyService
	generation *service.GenerationService
	transfer   *service.TransferService
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	s store.Store,
	study *service.StudyService,
	generation *service.GenerationService,
	transfer *service.TransferService,
	logger *zap.Logger,
) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		store:      s,
		study:      study,
		generation: generation,
		transfer:   transfer,
		validate:   v,
		logger:     logger,
	}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error" example:"topic not found"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}

// decodeAndValidate reads a JSON body into v and runs its validate tags.
// It writes a 400 and returns false when either step fails.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// pathID reads a path parameter that must be a generated ID.
func pathID(w http.ResponseWriter, r *http.Request, name, entity string) (string, bool) {
	v := r.PathValue(name)
	if !id.Valid(v) {
		respondError(w, http.StatusBadRequest, "invalid "+entity+" id")
		return "", false
	}
	return v, true
}

// handleError maps service and store errors onto HTTP responses.
// Returns true if an error was handled (caller should return).
func (h *Handler) handleError(w http.ResponseWriter, err error, entity string) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, entity+" was changed concurrently, retry")
	case errors.Is(err, flashcard.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, invalidArgumentMessage(err))
	case errors.Is(err, topic.ErrEmptyName):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrQueueFull):
		w.Header().Set("Retry-After", "30")
		respondError(w, http.StatusServiceUnavailable, "generation queue is full, try again later")
	case errors.Is(err, service.ErrServiceClosed):
		respondError(w, http.StatusServiceUnavailable, "service is shutting down")
	default:
		h.logger.Error("request failed", zap.String("entity", entity), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}

// invalidArgumentMessage strips the sentinel prefix from wrapped messages.
func invalidArgumentMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, flashcard.ErrInvalidArgument.Error()+": "); i >= 0 {
		return msg[i+len(flashcard.ErrInvalidArgument.Error())+2:]
	}
	return msg
}
