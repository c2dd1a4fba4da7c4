package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/storage"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

// bootstrapID marks a caller authenticated by the environment-supplied
// bootstrap key rather than a stored one.
const bootstrapID = "bootstrap"

// Auth enforces bearer-key authentication on everything it wraps. While
// the store holds no keys at all, the bootstrap key from the environment
// is accepted so the first real key can be created over the API; once a
// stored key exists the bootstrap key goes dead.
func Auth(store storage.Storage, bootstrapKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			key, err := authenticate(r.Context(), store, bootstrapKey, token)
			if errors.Is(err, domain.ErrUnauthorized) {
				deny(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			if err != nil {
				deny(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if key.ID != bootstrapID {
				// Last-used bookkeeping must not slow the request down.
				go func() {
					_ = store.UpdateAPIKeyLastUsed(context.Background(), key.ID)
				}()
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate resolves a presented token to the key it belongs to.
func authenticate(ctx context.Context, store storage.Storage, bootstrapKey, token string) (*domain.APIKey, error) {
	count, err := store.CountAPIKeys(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 && bootstrapKey != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(bootstrapKey)) == 1 {
		return &domain.APIKey{ID: bootstrapID, Name: "Bootstrap Key"}, nil
	}

	key, err := store.GetAPIKeyByHash(ctx, domain.HashAPIKey(token))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	return key, err
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&domain.APIError{Code: status, Message: message})
}

// KeyFromContext returns the authenticated key, or nil outside Auth.
func KeyFromContext(ctx context.Context) *domain.APIKey {
	key, _ := ctx.Value(apiKeyContextKey).(*domain.APIKey)
	return key
}
