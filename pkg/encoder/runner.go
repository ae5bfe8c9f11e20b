package encoder

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result holds the outcome of a single external process invocation.
type Result struct {
	Stderr   string
	ExitCode int
	Err      error
}

// Runner starts an external program and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs programs with os/exec. Stderr is captured so a failing
// encoder can be reported with its own diagnostics.
type ExecRunner struct{}

// Run implements Runner. ExitCode is -1 when the process could not be started
// or was killed before reporting a status.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	res := Result{
		Stderr: stderrBuf.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
	}

	return res
}
