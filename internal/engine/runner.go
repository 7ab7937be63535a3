// Package engine wraps the three external model CLIs — speech recognition,
// pivot translation, and speech synthesis — behind handles that are
// constructed once per batch and shared read-only across every file.
package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// commandResult is an internal process execution response. Stdout is raw
// bytes because the synthesizer streams PCM audio through it.
type commandResult struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// lookupBinary verifies that a configured binary can be invoked. Paths with
// a separator are taken as-is; bare names are resolved on PATH.
func lookupBinary(bin string) error {
	_, err := exec.LookPath(bin)
	return err
}
