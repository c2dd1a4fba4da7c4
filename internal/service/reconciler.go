package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wasconverge/wasconverge/internal/classloader"
	"github.com/wasconverge/wasconverge/internal/configstate"
	"github.com/wasconverge/wasconverge/internal/diff"
	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/manifest"
	"github.com/wasconverge/wasconverge/internal/script"
	"github.com/wasconverge/wasconverge/internal/scope"
	"github.com/wasconverge/wasconverge/internal/storage"
	"github.com/wasconverge/wasconverge/internal/validation"
	"github.com/wasconverge/wasconverge/internal/wsadmin"
)

// Reconciler converges the deployment manager's configuration toward the
// manifest set, one resource at a time. Each pass re-reads the remote
// documents, emits at most one mutation script per resource, and records
// the outcome. A failing resource halts only itself; siblings in the same
// pass still converge.
type Reconciler struct {
	store       storage.Storage
	resolver    scope.Resolver
	reader      *configstate.Reader
	renderer    *script.Renderer
	executor    wsadmin.Executor
	manifestDir string
	debounce    time.Duration
	autoSync    bool
	log         zerolog.Logger

	mu        sync.Mutex
	syncTimer *time.Timer

	// runMu serializes passes: the store has no transactional protection
	// against two writers, and neither does the remote document tree.
	runMu sync.Mutex
}

// New creates a Reconciler.
func New(
	store storage.Storage,
	resolver scope.Resolver,
	executor wsadmin.Executor,
	renderer *script.Renderer,
	manifestDir string,
	debounce time.Duration,
	autoSync bool,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		store:       store,
		resolver:    resolver,
		reader:      configstate.NewReader(resolver),
		renderer:    renderer,
		executor:    executor,
		manifestDir: manifestDir,
		debounce:    debounce,
		autoSync:    autoSync,
		log:         log,
	}
}

// Resources returns the current manifest set, unvalidated.
func (r *Reconciler) Resources() ([]domain.Resource, error) {
	return manifest.LoadDir(r.manifestDir)
}

// TriggerSync schedules a debounced reconciliation pass. Multiple
// triggers within the debounce window collapse into a single pass.
func (r *Reconciler) TriggerSync() {
	if !r.autoSync {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.syncTimer != nil {
		r.syncTimer.Stop()
	}

	r.syncTimer = time.AfterFunc(r.debounce, func() {
		if _, err := r.run(context.Background(), "watch"); err != nil {
			r.log.Error().Err(err).Msg("auto reconciliation failed")
		}
	})
}

// ForceSync runs a reconciliation pass immediately, cancelling any
// pending debounced pass.
func (r *Reconciler) ForceSync(ctx context.Context, trigger string) (*domain.RunDetail, error) {
	r.mu.Lock()
	if r.syncTimer != nil {
		r.syncTimer.Stop()
	}
	r.mu.Unlock()

	return r.run(ctx, trigger)
}

// run executes one full pass and records it.
func (r *Reconciler) run(ctx context.Context, trigger string) (*domain.RunDetail, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	resources, err := manifest.LoadDir(r.manifestDir)
	if err != nil {
		return nil, err
	}
	valid, verrs := validation.ValidateAll(resources)

	run := &domain.Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	detail := &domain.RunDetail{Run: *run}
	failed, converged := 0, 0

	for _, verr := range verrs {
		failed++
		detail.Results = append(detail.Results, r.record(ctx, run.ID, verr.Resource, domain.OutcomeFailed, "", verr.Error()))
	}

	for i := range valid {
		res := &valid[i]
		outcome, scriptText, rerr := r.reconcileResource(ctx, res)

		errText := ""
		if rerr != nil {
			errText = rerr.Error()
			if outcome != domain.OutcomeDeferred {
				outcome = domain.OutcomeFailed
			}
		}
		if outcome == domain.OutcomeFailed {
			failed++
		} else {
			converged++
		}
		detail.Results = append(detail.Results, r.record(ctx, run.ID, res.Key(), outcome, scriptText, errText))

		r.log.Info().
			Str("resource", res.Key()).
			Str("outcome", outcome).
			Msg("reconciled")
	}

	now := time.Now()
	run.FinishedAt = &now
	switch {
	case failed == 0:
		run.Status = domain.RunStatusSuccess
	case converged > 0:
		run.Status = domain.RunStatusPartial
	default:
		run.Status = domain.RunStatusFailed
	}
	if err := r.store.UpdateRun(ctx, run); err != nil {
		r.log.Warn().Err(err).Msg("failed to update run record")
	}
	detail.Run = *run
	return detail, nil
}

func (r *Reconciler) record(ctx context.Context, runID, key, outcome, scriptText, errText string) domain.RunResult {
	result := domain.RunResult{
		ID:          uuid.New().String(),
		RunID:       runID,
		ResourceKey: key,
		Outcome:     outcome,
		Script:      scriptText,
		Error:       errText,
		CreatedAt:   time.Now(),
	}
	if err := r.store.CreateRunResult(ctx, &result); err != nil {
		r.log.Warn().Err(err).Str("resource", key).Msg("failed to record result")
	}
	return result
}

// reconcileResource converges one resource. It returns the outcome, the
// script that was executed (empty if none), and any error.
func (r *Reconciler) reconcileResource(ctx context.Context, res *domain.Resource) (string, string, error) {
	addr, err := r.resolver.Resolve(res.Scope)
	if err != nil {
		return domain.OutcomeFailed, "", err
	}

	if res.Kind == domain.KindClassLoader {
		return r.reconcileClassLoader(ctx, res, addr)
	}
	return r.reconcileNamed(ctx, res, addr)
}

func (r *Reconciler) reconcileNamed(ctx context.Context, res *domain.Resource, addr scope.Address) (string, string, error) {
	snap, err := r.reader.ReadEntity(addr, res.Kind, res.Name)
	if err != nil {
		return domain.OutcomeFailed, "", err
	}

	if res.Absent {
		if !snap.Exists {
			return domain.OutcomeUnchanged, "", nil
		}
		scriptText, err := r.renderer.Remove(res, addr, snap.ID)
		if err != nil {
			return domain.OutcomeFailed, "", err
		}
		return r.emit(ctx, res, addr, domain.OutcomeRemoved, scriptText)
	}

	changes, err := diff.Compute(res.Kind, snap, diff.DesiredAttrs(res))
	if err != nil {
		return domain.OutcomeFailed, "", err
	}
	if changes.Empty() {
		return domain.OutcomeUnchanged, "", nil
	}

	var (
		scriptText string
		outcome    string
	)
	if snap.Exists {
		outcome = domain.OutcomeModified
		scriptText, err = r.renderer.Modify(res, addr, snap.ID, changes)
	} else {
		outcome = domain.OutcomeCreated
		scriptText, err = r.renderer.Create(res, addr, changes)
	}
	if err != nil {
		return domain.OutcomeFailed, "", err
	}
	return r.emit(ctx, res, addr, outcome, scriptText)
}

func (r *Reconciler) reconcileClassLoader(ctx context.Context, res *domain.Resource, addr scope.Address) (string, string, error) {
	instances, err := r.reader.ReadClassLoaders(addr)
	if err != nil {
		return domain.OutcomeFailed, "", err
	}

	// An absent loader with no library list means "no loader of this mode
	// at all"; the matcher cannot answer that, so handle it here.
	if res.Absent && len(res.Libraries) == 0 {
		for _, inst := range instances {
			if inst.Mode == res.Mode {
				scriptText, err := r.renderer.RemoveClassLoader(addr, inst.ID)
				if err != nil {
					return domain.OutcomeFailed, "", err
				}
				return r.emit(ctx, res, addr, domain.OutcomeRemoved, scriptText)
			}
		}
		return domain.OutcomeUnchanged, "", nil
	}

	match, err := classloader.MatchMode(instances, res.Mode, res.Libraries)
	if err != nil {
		return domain.OutcomeFailed, "", err
	}

	if res.Absent {
		if !match.Exists {
			return domain.OutcomeUnchanged, "", nil
		}
		scriptText, err := r.renderer.RemoveClassLoader(addr, match.Target.ID)
		if err != nil {
			return domain.OutcomeFailed, "", err
		}
		return r.emit(ctx, res, addr, domain.OutcomeRemoved, scriptText)
	}

	if !match.Exists {
		scriptText, err := r.renderer.CreateClassLoader(addr, res.Mode, match.Add)
		if err != nil {
			return domain.OutcomeFailed, "", err
		}
		return r.emit(ctx, res, addr, domain.OutcomeCreated, scriptText)
	}

	if len(match.Add) == 0 && len(match.Remove) == 0 {
		return domain.OutcomeUnchanged, "", nil
	}
	scriptText, err := r.renderer.ModifyClassLoader(addr, match.Target.ID, match.Add, match.Remove)
	if err != nil {
		return domain.OutcomeFailed, "", err
	}
	return r.emit(ctx, res, addr, domain.OutcomeModified, scriptText)
}

// emit runs one mutation script through the executor and maps the
// tool's failure modes onto the error taxonomy.
func (r *Reconciler) emit(ctx context.Context, res *domain.Resource, addr scope.Address, outcome, scriptText string) (string, string, error) {
	_, err := r.executor.Execute(ctx, scriptText)
	if err != nil {
		if errors.Is(err, domain.ErrNotYetProvisioned) {
			return domain.OutcomeDeferred, scriptText, &domain.NotYetProvisionedError{
				Resource: res.Key(),
				Scope:    addr.Query,
			}
		}
		return domain.OutcomeFailed, scriptText, err
	}
	return outcome, scriptText, nil
}
