package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/storage"
)

// APIKeyHandler manages the keys that authenticate API callers.
type APIKeyHandler struct {
	store storage.Storage
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(store storage.Storage) *APIKeyHandler {
	return &APIKeyHandler{store: store}
}

// Create mints a key and stores its hash. The response is the only place
// the plaintext secret ever appears.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAPIKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	secret, hash, prefix, err := domain.MintAPIKey()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	key := &domain.APIKey{
		ID:        generateID(),
		Name:      req.Name,
		KeyHash:   hash,
		Prefix:    prefix,
		CreatedAt: time.Now(),
	}
	if err := h.store.CreateAPIKey(r.Context(), key); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, &domain.CreateAPIKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Key:       secret,
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt,
	})
}

// List returns the stored keys. Hashes never serialize, so this is names,
// prefixes and timestamps only.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, keys)
}

// Delete revokes a key by id.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.store.DeleteAPIKey(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
