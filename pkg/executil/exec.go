// Package executil runs external commands behind an interface so callers can
// swap in a recorder under test.
package executil

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Executor runs an external command with its output streamed to the given
// writers.
type Executor interface {
	RunStream(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

func (e *RealExecutor) RunStream(ctx context.Context, stdout, stderr io.Writer, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}

// ClearCommand returns the command that clears the terminal on goos.
func ClearCommand(goos string) (string, []string) {
	if goos == "windows" {
		return "cmd", []string{"/c", "cls"}
	}
	return "clear", nil
}

// ClearScreen clears the terminal attached to stdout.
func ClearScreen(ctx context.Context, e Executor, stdout io.Writer) error {
	cmd, args := ClearCommand(runtime.GOOS)
	return e.RunStream(ctx, stdout, io.Discard, cmd, args...)
}
