package handler

import (
	"net/http"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/service"
	"github.com/wasconverge/wasconverge/internal/validation"
)

// ResourceHandler exposes the manifest resource set.
type ResourceHandler struct {
	reconciler *service.Reconciler
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(reconciler *service.Reconciler) *ResourceHandler {
	return &ResourceHandler{reconciler: reconciler}
}

type resourceListResponse struct {
	Resources []domain.Resource             `json:"resources"`
	Problems  []*validation.ValidationError `json:"problems,omitempty"`
}

// List returns the manifest resources along with any validation problems.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.reconciler.Resources()
	if err != nil {
		handleError(w, err)
		return
	}

	_, problems := validation.ValidateAll(resources)
	respondJSON(w, http.StatusOK, &resourceListResponse{
		Resources: resources,
		Problems:  problems,
	})
}
