package wsadmin

import (
	"context"
	"sync"
)

// Recorder is an in-memory Executor for tests and dry wiring: it records
// every script instead of spawning the tool, and answers with a
// configurable result.
type Recorder struct {
	mu      sync.Mutex
	scripts []string

	// Output and Err are returned by every Execute call.
	Output string
	Err    error
}

var _ Executor = (*Recorder)(nil)

// NewRecorder creates an empty Recorder that reports success.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Execute records the script.
func (r *Recorder) Execute(ctx context.Context, script string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, script)
	return r.Output, r.Err
}

// Scripts returns a copy of everything executed so far.
func (r *Recorder) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.scripts))
	copy(out, r.scripts)
	return out
}

// Reset clears the recorded scripts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = nil
}
