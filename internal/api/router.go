// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// UserIDHeader carries the caller's identity, set by the upstream gateway.
const UserIDHeader = "X-User-ID"

// RegisterRoutes wires every endpoint onto mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /health", health)

	// Topics
	mux.HandleFunc("POST /topics", h.createTopic)
	mux.HandleFunc("GET /topics", h.listTopics)
	mux.HandleFunc("GET /topics/{topicID}", h.getTopic)
	mux.HandleFunc("PUT /topics/{topicID}", h.updateTopic)
	mux.HandleFunc("DELETE /topics/{topicID}", h.deleteTopic)
	mux.HandleFunc("GET /topics/{topicID}/stats", h.getTopicStats)

	// Flashcards
	mux.HandleFunc("POST /topics/{topicID}/flashcards", h.createFlashcard)
	mux.HandleFunc("GET /topics/{topicID}/flashcards", h.listFlashcards)
	mux.HandleFunc("GET /flashcards/{cardID}", h.getFlashcard)
	mux.HandleFunc("DELETE /flashcards/{cardID}", h.deleteFlashcard)
	mux.HandleFunc("GET /flashcards/{cardID}/reviews", h.listReviews)

	// Study
	mux.HandleFunc("GET /topics/{topicID}/study", h.getStudyDeck)
	mux.HandleFunc("POST /flashcards/{cardID}/review", h.reviewFlashcard)

	// Generation
	mux.HandleFunc("POST /topics/{topicID}/flashcards/generate", h.generateFlashcards)
	mux.HandleFunc("GET /generation-jobs/{jobID}", h.getGenerationJob)

	// Export / import
	mux.HandleFunc("GET /export", h.exportAll)
	mux.HandleFunc("POST /import", h.importAll)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
}

// NewRouter builds the full handler chain: Logging → CORS → user → mux.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return Logging(h.logger)(CORS(RequireUser(mux)))
}

// health reports liveness.
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Middleware ──────────────────────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("user_id", r.Header.Get(UserIDHeader)),
			)
		})
	}
}

// CORS allows browser clients from any origin and answers preflights.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+UserIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

// RequireUser rejects requests without an X-User-ID header and stores the
// id in the request context. Health and docs stay public.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/swagger/") {
			next.ServeHTTP(w, r)
			return
		}

		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

// UserID returns the caller set by RequireUser.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey{}).(string)
	return v
}
