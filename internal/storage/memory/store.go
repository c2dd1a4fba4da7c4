package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/storage"
)

// Store is an in-memory implementation of the storage interface for
// testing.
type Store struct {
	mu sync.RWMutex

	apiKeys    map[string]*domain.APIKey
	runs       map[string]*domain.Run
	runResults map[string][]*domain.RunResult // key: run id
}

var _ storage.Storage = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		apiKeys:    make(map[string]*domain.APIKey),
		runs:       make(map[string]*domain.Run),
		runResults: make(map[string][]*domain.RunResult),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apiKeys {
		if existing.Name == key.Name {
			return domain.ErrAlreadyExists
		}
	}
	cp := *key
	s.apiKeys[key.ID] = &cp
	return nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.apiKeys {
		if key.KeyHash == keyHash {
			cp := *key
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		cp := *key
		keys = append(keys, &cp)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].CreatedAt.Before(keys[j].CreatedAt) })
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apiKeys[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.apiKeys[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	key.LastUsedAt = &now
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apiKeys), nil
}

func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *Store) UpdateRun(ctx context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) CreateRunResult(ctx context.Context, result *domain.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *result
	s.runResults[result.RunID] = append(s.runResults[result.RunID], &cp)
	return nil
}

func (s *Store) ListRunResults(ctx context.Context, runID string) ([]*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]*domain.RunResult, 0, len(s.runResults[runID]))
	for _, r := range s.runResults[runID] {
		cp := *r
		results = append(results, &cp)
	}
	return results, nil
}
