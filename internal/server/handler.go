// Package server exposes the categorization oracle over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
)

// maxRequestBytes bounds a categorize request body.
const maxRequestBytes = 10 << 20

type handler struct {
	svc    categorize.Service
	logger *slog.Logger
}

// NewHandler serves POST /api/categorize and GET /healthz. svc may be nil, in
// which case categorize requests answer 503.
func NewHandler(svc categorize.Service, logger *slog.Logger) http.Handler {
	logger = common.OrDefault(logger)
	h := &handler{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/categorize", h.categorize)
	mux.HandleFunc("/healthz", h.health)

	return withRecovery(logger)(withLogging(logger)(withRequestID(mux)))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) categorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req categorize.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Expenses) == 0 {
		writeJSON(w, http.StatusOK, categorize.NewReply(nil))
		return
	}

	if h.svc == nil {
		writeError(w, http.StatusServiceUnavailable, common.ErrCategorizerUnavailable.Error())
		return
	}

	results, err := h.svc.Categorize(r.Context(), req.Candidates(), req.ModelCategories())
	switch {
	case errors.Is(err, common.ErrCategorizerUnavailable):
		h.logger.Warn("categorizer unavailable", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusServiceUnavailable, common.ErrCategorizerUnavailable.Error())
		return
	case err != nil:
		h.logger.Error("categorize failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "categorization failed")
		return
	}

	writeJSON(w, http.StatusOK, categorize.NewReply(results))
}
