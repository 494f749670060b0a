package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// binaryName is the DDC-CI utility this tool drives. All monitor
// communication goes through it; nothing works without it on PATH.
const binaryName = "m1ddc"

// DefaultTimeout bounds a single utility invocation. DDC-CI transactions
// normally complete in well under a second; anything longer means the bus
// is wedged.
const DefaultTimeout = 10 * time.Second

var globalVerbose bool

// SetGlobalVerbose sets verbose mode for all runners.
func SetGlobalVerbose(v bool) {
	globalVerbose = v
}

// NotFoundError indicates the utility binary is not installed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in PATH (install it with 'brew install %s')", e.Name, e.Name)
}

// ExitError carries a non-zero exit from the utility along with whatever
// it wrote to stderr.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", binaryName, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", binaryName, e.Code)
}

// TimeoutError indicates the utility did not exit within the per-call
// deadline. Distinct from ExitError: the process was killed, it did not
// fail on its own.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not exit within %s", binaryName, e.Timeout)
}

// Runner invokes the DDC-CI utility as a subprocess, one call per
// operation. Calls block until the utility exits or the deadline fires.
type Runner struct {
	path    string
	timeout time.Duration
}

// NewRunner resolves the utility binary from PATH. Returns a
// *NotFoundError if it is not installed.
func NewRunner() (*Runner, error) {
	path, err := exec.LookPath(binaryName)
	if err != nil {
		return nil, &NotFoundError{Name: binaryName}
	}
	return &Runner{path: path, timeout: DefaultTimeout}, nil
}

// SetTimeout overrides the per-call deadline.
func (r *Runner) SetTimeout(d time.Duration) {
	r.timeout = d
}

func (r *Runner) logCommand(args []string) {
	if globalVerbose {
		fmt.Fprintf(os.Stderr, "  $ %s %s\n", binaryName, strings.Join(args, " "))
	}
}

// Run executes the utility with args and returns its stdout with trailing
// whitespace trimmed. A non-zero exit yields *ExitError; hitting the
// per-call deadline yields *TimeoutError.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	r.logCommand(args)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Timeout: r.timeout}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return "", fmt.Errorf("run %s: %w", binaryName, err)
	}

	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}
