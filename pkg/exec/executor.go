// Package exec provides the process seam opz uses to talk to external CLIs.
// Backend calls go through CommandExecutor so tests can script the
// secrets CLI instead of running it.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// CommandExecutor runs an external command and captures its output.
type CommandExecutor interface {
	// Execute runs name with args and returns stdout, stderr and the
	// process error (an *exec.ExitError for non-zero exits).
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes commands with os/exec and buffers both streams.
type RealCommandExecutor struct{}

// Execute runs an actual command.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// InteractiveExecutor runs commands attached to the caller's terminal so the
// child can prompt (for example `op item create` asking for sign-in).
// Nothing is captured; stdout and stderr are always returned empty.
type InteractiveExecutor struct{}

// Execute runs the command with inherited stdio.
func (i *InteractiveExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return nil, nil, cmd.Run()
}

// DefaultExecutor returns the standard production executor.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// ExitCode extracts the exit status from an error returned by Execute.
// Any error in the chain with an ExitCode() int method counts, which covers
// *exec.ExitError. It returns -1 when no process exit is recorded.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}
