package infra

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts command execution for testing
type CommandRunner interface {
	// CombinedOutput runs a command to completion and returns stdout and stderr together.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath resolves an executable on PATH.
	LookPath(file string) (string, error)
}

// RealCommandRunner executes real system commands
type RealCommandRunner struct{}

// CombinedOutput executes a command with no stdin so it can never prompt.
func (r *RealCommandRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	return cmd.CombinedOutput()
}

// LookPath resolves an executable on PATH
func (r *RealCommandRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// runOpaque runs a platform command and folds its diagnostic text into the error.
func runOpaque(ctx context.Context, runner CommandRunner, name string, args ...string) error {
	out, err := runner.CombinedOutput(ctx, name, args...)
	if err == nil {
		return nil
	}
	if text := strings.TrimSpace(string(out)); text != "" {
		return fmt.Errorf("%s: %w: %s", name, err, text)
	}
	return fmt.Errorf("%s: %w", name, err)
}

var _ CommandRunner = (*RealCommandRunner)(nil)
