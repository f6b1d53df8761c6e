package executil

import (
	"context"
	"fmt"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs, Errors and Paths to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	Outputs map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error

	// Paths maps command names to the path LookPath resolves. Commands
	// missing from a non-nil map are reported as not found.
	Paths map[string]string
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{Cmd: cmd, Args: args})
	return e.Outputs[cmd], e.Errors[cmd]
}

// LookPath returns the configured path, or cmd itself when Paths is nil.
func (e *RecordingExecutor) LookPath(cmd string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Paths == nil {
		return cmd, nil
	}
	if p, ok := e.Paths[cmd]; ok {
		return p, nil
	}
	return "", fmt.Errorf("look up %s: executable file not found", cmd)
}

// Recorded returns a copy of the commands run so far.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedCommand(nil), e.Commands...)
}
