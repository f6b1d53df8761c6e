// Package terminal defines the contract between the command runner and a
// terminal host: creating terminals, dispatching commands, and observing the
// start and end of each shell execution.
package terminal

import (
	"context"
	"errors"
	"iter"
)

// ErrTerminalClosed is returned when writing to a disposed terminal, and is
// yielded by execution streams cut short by the terminal going away.
var ErrTerminalClosed = errors.New("terminal closed")

// CreateOptions configures a new terminal.
type CreateOptions struct {
	Name string
	Env  map[string]string // merged over the host environment
}

// Host creates terminals and reports shell executions happening in them.
// Handlers are called on host goroutines. Start handlers must not block: they
// should consume the execution stream asynchronously. For a given execution
// the host calls every start handler before any end handler, and calls end
// handlers only after the execution stream has been closed.
type Host interface {
	CreateTerminal(ctx context.Context, opts CreateOptions) (Terminal, error)
	OnDidStartExecution(fn func(StartEvent)) Subscription
	OnDidEndExecution(fn func(EndEvent)) Subscription
}

// Terminal is a handle to one shell session.
type Terminal interface {
	// ID uniquely identifies the terminal within its host.
	ID() string
	Name() string
	Show()
	// SendText writes text followed by a newline, bypassing shell integration.
	SendText(text string) error
	Dispose() error
	// ShellIntegration returns nil until the shell reports integration support.
	ShellIntegration() ShellIntegration
}

// ShellIntegration is the protocol aware side of a terminal.
type ShellIntegration interface {
	CanExecuteCommand() bool
	ExecuteCommand(command string) error
}

// Execution is one command run observed through shell integration.
type Execution interface {
	CommandLine() string
	// Read yields raw output chunks until the execution ends. A non-nil error
	// is always the final element.
	Read(ctx context.Context) iter.Seq2[string, error]
}

// StartEvent is delivered when a command starts producing output.
type StartEvent struct {
	Terminal  Terminal
	Execution Execution
}

// EndEvent is delivered after a command finished and its stream closed.
type EndEvent struct {
	Terminal  Terminal
	Execution Execution
}

// Subscription removes a handler when disposed. Dispose is idempotent.
type Subscription interface {
	Dispose()
}

// Same reports whether two handles refer to the same terminal.
func Same(a, b Terminal) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}
