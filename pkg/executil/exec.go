// Package executil provides process execution utilities.
package executil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external programs.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// LookPath resolves cmd against PATH.
	LookPath(cmd string) (string, error)
}

// RealExecutor calls actual programs.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// LookPath resolves cmd against PATH.
func (e *RealExecutor) LookPath(cmd string) (string, error) {
	path, err := exec.LookPath(cmd)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", cmd, err)
	}
	return path, nil
}

// FirstLine runs cmd and returns the first non-empty line of its output,
// trimmed. Version probes such as "bash --version" print the useful part first.
func FirstLine(ctx context.Context, e Executor, cmd string, args ...string) (string, error) {
	out, err := e.Run(ctx, cmd, args...)
	if err != nil {
		return "", err
	}
	for line := range strings.Lines(string(out)) {
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
	return "", nil
}
