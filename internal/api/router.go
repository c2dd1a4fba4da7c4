package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wasconverge/wasconverge/internal/api/handler"
	"github.com/wasconverge/wasconverge/internal/api/middleware"
	"github.com/wasconverge/wasconverge/internal/service"
	"github.com/wasconverge/wasconverge/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(
	store storage.Storage,
	reconciler *service.Reconciler,
	bootstrapKey string,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(log))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(store, bootstrapKey))

		// API Keys
		keyHandler := handler.NewAPIKeyHandler(store)
		r.Post("/keys", keyHandler.Create)
		r.Get("/keys", keyHandler.List)
		r.Delete("/keys/{id}", keyHandler.Delete)

		// Reconciliation
		reconcileHandler := handler.NewReconcileHandler(reconciler)
		r.Post("/reconcile", reconcileHandler.Trigger)

		// Run history
		runHandler := handler.NewRunHandler(store)
		r.Get("/runs", runHandler.List)
		r.Get("/runs/{id}", runHandler.Get)

		// Manifest resources
		resourceHandler := handler.NewResourceHandler(reconciler)
		r.Get("/resources", resourceHandler.List)
	})

	return r
}
