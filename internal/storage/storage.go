package storage

import (
	"context"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// Storage is the audit-trail store for reconciliation runs and the API
// keys protecting the HTTP surface. Implementations must be safe for
// concurrent use. Remote configuration state is deliberately outside this
// interface: every reconciliation pass re-reads the documents.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// API keys
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
	CountAPIKeys(ctx context.Context) (int, error)

	// Runs
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.Run, error)

	// Per-resource outcomes
	CreateRunResult(ctx context.Context, result *domain.RunResult) error
	ListRunResults(ctx context.Context, runID string) ([]*domain.RunResult, error)
}
