// Package executor runs operator commands on the host shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/ports"
)

// LocalExecutor runs commands with `<shell> -c`.
type LocalExecutor struct {
	shell string
}

// NewLocalExecutor builds a new executor, shell defaults to $SHELL then /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &LocalExecutor{shell: shell}
}

// Shell returns the interpreter commands run under.
func (e *LocalExecutor) Shell() string {
	return e.shell
}

// Run implements ports.CommandExecutor. A non-zero exit is reported through
// ExitCode, not as an error; exceeding timeout yields a Timeout error and the
// process is killed.
func (e *LocalExecutor) Run(ctx context.Context, command, cwd string, timeout time.Duration) (domain.ExecutionResult, error) {
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, e.shell, "-c", command)
	c.Dir = cwd
	c.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	result := domain.ExecutionResult{
		Command:    command,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		return result, domain.Timeout(command, timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, domain.CollaboratorError("Shell", err)
	}
	return result, nil
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
