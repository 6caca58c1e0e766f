package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner handles execution of external commands with logging and timeout
type CommandRunner struct {
	Timeout time.Duration
	Dir     string
	Env     []string
}

// NewCommandRunner creates a new CommandRunner with optional timeout
func NewCommandRunner(timeout time.Duration) *CommandRunner {
	return &CommandRunner{
		Timeout: timeout,
		Env:     os.Environ(),
	}
}

// Run executes a command and returns its stdout. Stderr is captured
// separately and included in the error on failure.
func (c *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdCtx := ctx
	var cancel context.CancelFunc

	if c.Timeout > 0 {
		cmdCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	var stderr strings.Builder
	cmd.Stderr = &stderr

	cmdStr := fmt.Sprintf("%s %s", name, strings.Join(args, " "))
	GetLogger().Debugf("Executing command: %s", cmdStr)

	start := time.Now()
	output, err := cmd.Output()
	duration := time.Since(start)

	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command timed out after %v: %s", c.Timeout, cmdStr)
		}
		GetLogger().Warnf("Command failed (%s): %v\nStderr: %s", duration, err, stderr.String())
		return output, fmt.Errorf("%s: %w (stderr: %s)", cmdStr, err, strings.TrimSpace(stderr.String()))
	}

	GetLogger().Debugf("Command finished successfully in %s", duration)
	return output, nil
}
