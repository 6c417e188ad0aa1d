package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/examcraft/backend/internal/service"
)

// importMaxBytes caps the size of an uploaded export document.
const importMaxBytes = 10 << 20

// ── Handlers ────────────────────────────────────────────────────────────────

// exportAll downloads every topic and card of the caller.
// @Summary      Export topics and flashcards
// @Tags         Transfer
// @Produce      json
// @Produce      application/yaml
// @Param        X-User-ID  header    string  true   "Caller id"
// @Param        format     query     string  false  "json (default) or yaml"
// @Success      200        {object}  service.ExportData
// @Failure      400        {object}  ErrorResponse
// @Router       /export [get]
func (h *Handler) exportAll(w http.ResponseWriter, r *http.Request) {
	format, err := service.ParseFormat(r.URL.Query().Get("format"))
	if h.handleError(w, err, "export") {
		return
	}

	ctx := r.Context()
	data, err := h.transfer.Export(ctx, UserID(ctx))
	if h.handleError(w, err, "export") {
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="examcraft-export.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if err := service.Encode(w, data, format); err != nil {
		h.logger.Error("failed to write export", zap.Error(err))
	}
}

// importAll creates topics and cards from an export document.
// @Summary      Import topics and flashcards
// @Description  Accepts the document produced by /export. The format comes
// @Description  from ?format= or else the Content-Type header.
// @Tags         Transfer
// @Accept       json
// @Accept       application/yaml
// @Produce      json
// @Param        X-User-ID  header    string              true   "Caller id"
// @Param        format     query     string              false  "json or yaml"
// @Param        body       body      service.ExportData  true   "Export document"
// @Success      201        {object}  service.ImportResult
// @Failure      400        {object}  ErrorResponse
// @Router       /import [post]
func (h *Handler) importAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("format")
	if q == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		q = string(service.FormatYAML)
	}
	format, err := service.ParseFormat(q)
	if h.handleError(w, err, "import") {
		return
	}

	data, err := service.Decode(http.MaxBytesReader(w, r.Body, importMaxBytes), format)
	if h.handleError(w, err, "import") {
		return
	}

	ctx := r.Context()
	result, err := h.transfer.Import(ctx, UserID(ctx), data)
	if h.handleError(w, err, "import") {
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func contentType(f service.Format) string {
	if f == service.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
