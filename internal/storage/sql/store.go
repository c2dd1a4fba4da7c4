package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.Storage = (*Store)(nil)

// New creates a new SQL store and runs pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	query := s.db.Rebind(`INSERT INTO api_keys (id, name, key_hash, prefix, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, key.ID, key.Name, key.KeyHash, key.Prefix, key.CreatedAt, key.LastUsedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	var key domain.APIKey
	query := s.db.Rebind(`SELECT * FROM api_keys WHERE key_hash = ?`)
	if err := s.db.GetContext(ctx, &key, query, keyHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &key, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	keys := []*domain.APIKey{}
	err := s.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys ORDER BY created_at`)
	return keys, err
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM api_keys WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	query := s.db.Rebind(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM api_keys`)
	return count, err
}

func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	query := s.db.Rebind(`INSERT INTO runs (id, run_trigger, status, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, run.ID, run.Trigger, run.Status, run.StartedAt, run.FinishedAt)
	return wrapUniqueError(err)
}

func (s *Store) UpdateRun(ctx context.Context, run *domain.Run) error {
	query := s.db.Rebind(`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, run.Status, run.FinishedAt, run.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	var run domain.Run
	query := s.db.Rebind(`SELECT * FROM runs WHERE id = ?`)
	if err := s.db.GetContext(ctx, &run, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	runs := []*domain.Run{}
	query := s.db.Rebind(`SELECT * FROM runs ORDER BY started_at DESC LIMIT ?`)
	err := s.db.SelectContext(ctx, &runs, query, limit)
	return runs, err
}

func (s *Store) CreateRunResult(ctx context.Context, result *domain.RunResult) error {
	query := s.db.Rebind(`INSERT INTO run_results (id, run_id, resource_key, outcome, script, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		result.ID, result.RunID, result.ResourceKey, result.Outcome, result.Script, result.Error, result.CreatedAt)
	return wrapUniqueError(err)
}

func (s *Store) ListRunResults(ctx context.Context, runID string) ([]*domain.RunResult, error) {
	results := []*domain.RunResult{}
	query := s.db.Rebind(`SELECT * FROM run_results WHERE run_id = ? ORDER BY created_at`)
	err := s.db.SelectContext(ctx, &results, query, runID)
	return results, err
}
