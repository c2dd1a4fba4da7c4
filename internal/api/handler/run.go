package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/storage"
)

// RunHandler exposes the reconciliation run history.
type RunHandler struct {
	store storage.Storage
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(store storage.Storage) *RunHandler {
	return &RunHandler{store: store}
}

// List lists recent runs, newest first. The optional "limit" query
// parameter caps the count.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// Get returns one run together with its per-resource results.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	results, err := h.store.ListRunResults(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	detail := &domain.RunDetail{Run: *run}
	for _, res := range results {
		detail.Results = append(detail.Results, *res)
	}

	respondJSON(w, http.StatusOK, detail)
}
