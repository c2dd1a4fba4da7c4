package handler

import (
	"net/http"

	"github.com/wasconverge/wasconverge/internal/service"
)

// ReconcileHandler triggers reconciliation passes over the API.
type ReconcileHandler struct {
	reconciler *service.Reconciler
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(reconciler *service.Reconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Trigger runs a reconciliation pass immediately and returns the run with
// its per-resource results.
func (h *ReconcileHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	detail, err := h.reconciler.ForceSync(r.Context(), "api")
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}
