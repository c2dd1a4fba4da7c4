// Package wsadmin invokes the administrative scripting tool that is the
// only way to mutate the deployment manager's configuration store. The
// tool is a separate process with significant startup latency; callers
// batch everything into one script per resource and treat the invocation
// as a blocking external call. Cancellation, if wanted, comes in through
// the context.
package wsadmin

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// Executor runs one administration script and returns the tool's text
// output.
type Executor interface {
	Execute(ctx context.Context, script string) (string, error)
}

// notProvisionedPattern is the output fragment the tool prints when a
// script's parent object does not exist yet (for example a cluster member
// whose documents have not been synchronized to the deployment manager).
// It marks a retryable precondition, not a tool failure.
const notProvisionedPattern = "invalid parent config id"

// outputTail keeps error payloads readable; wsadmin front-loads pages of
// JVM noise before the part that matters.
const outputTail = 2000

// Classify turns a failed invocation's output into the error the
// reconciler propagates.
func Classify(output string, exitCode int) error {
	if strings.Contains(output, notProvisionedPattern) {
		return domain.ErrNotYetProvisioned
	}
	tail := output
	if len(tail) > outputTail {
		tail = "..." + tail[len(tail)-outputTail:]
	}
	return &domain.ExternalToolError{ExitCode: exitCode, Output: strings.TrimSpace(tail)}
}

// Process executes scripts through the real wsadmin tool.
type Process struct {
	path     string // wsadmin.sh
	conntype string
	user     string
	password string
	log      zerolog.Logger
}

var _ Executor = (*Process)(nil)

// NewProcess creates a Process executor. user is the principal every
// script runs as; password may be empty when the profile allows it.
func NewProcess(path, user, password string, log zerolog.Logger) *Process {
	return &Process{
		path:     path,
		conntype: "SOAP",
		user:     user,
		password: password,
		log:      log,
	}
}

// Execute writes the script to a temporary file and runs the tool on it.
func (p *Process) Execute(ctx context.Context, script string) (string, error) {
	tmp, err := os.CreateTemp("", "wasconverge-*.py")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	args := []string{"-lang", "jython", "-conntype", p.conntype}
	if p.user != "" {
		args = append(args, "-user", p.user, "-password", p.password)
	}
	args = append(args, "-f", tmp.Name())

	p.log.Debug().Str("tool", p.path).Str("script", tmp.Name()).Msg("invoking wsadmin")

	cmd := exec.CommandContext(ctx, p.path, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		p.log.Warn().Int("exit", exitCode).Msg("wsadmin failed")
		return output, Classify(output, exitCode)
	}

	p.log.Debug().Int("bytes", len(out)).Msg("wsadmin finished")
	return output, nil
}
