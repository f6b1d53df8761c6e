// Package runner drives command executions in a managed terminal and turns
// their raw output into extraction reports and statistics.
package runner

import (
	"errors"
	"strings"
	"time"

	"github.com/hay-kot/shellmark/internal/core/marker"
	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// Messages written to the output sink.
const (
	BusyMessage     = "Command execution in progress, please wait..."
	FallbackWarning = "Warning: Shell integration not available, falling back to sendText"
)

const (
	DefaultTerminalName  = "Command Runner"
	DefaultPromptCommand = "sleep 0.1"
)

var (
	// ErrBusy is returned by ExecuteCommand while another run is in flight.
	ErrBusy = errors.New("command execution in progress")
	// ErrClosed is returned by ExecuteCommand after Close.
	ErrClosed = errors.New("controller closed")
)

// State is the controller's position in a run.
type State int

const (
	StateIdle State = iota
	StateAwaitingIntegration
	StateRunning
	StateCleanup
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingIntegration:
		return "awaiting-integration"
	case StateRunning:
		return "running"
	case StateCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Options controls a single ExecuteCommand call.
type Options struct {
	AutoCloseTerminal   bool
	UseShellIntegration bool
	// PromptCommand is exported as PROMPT_COMMAND in the managed terminal.
	// Empty selects the configured default. Whitespace only disables it.
	PromptCommand   string
	EnableVTEChecks bool
}

// Sinks receive the reports produced by each run. Either may be nil.
type Sinks struct {
	OnOutput func(string)
	OnDebug  func(string)
}

// Config holds controller settings. Zero values select defaults.
type Config struct {
	TerminalName       string
	PromptCommand      string
	IntegrationTimeout time.Duration
	PollInterval       time.Duration
	BenchIterations    int
}

func (c Config) withDefaults() Config {
	if c.TerminalName == "" {
		c.TerminalName = DefaultTerminalName
	}
	if c.PromptCommand == "" {
		c.PromptCommand = DefaultPromptCommand
	}
	if c.IntegrationTimeout <= 0 {
		c.IntegrationTimeout = terminal.DefaultIntegrationTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = terminal.DefaultPollInterval
	}
	if c.BenchIterations <= 0 {
		c.BenchIterations = marker.DefaultIterations
	}
	return c
}

// profile is the part of Options baked into a terminal's environment. A
// terminal is recreated when the profile changes.
type profile struct {
	promptCommand string
	enableVTE     bool
}

func (c Config) profileFor(opts Options) profile {
	pc := opts.PromptCommand
	if pc == "" {
		pc = c.PromptCommand
	}
	return profile{
		promptCommand: strings.TrimSpace(pc),
		enableVTE:     opts.EnableVTEChecks,
	}
}

func (p profile) env() map[string]string {
	env := make(map[string]string, 2)
	if p.promptCommand != "" {
		env["PROMPT_COMMAND"] = p.promptCommand
	}
	if !p.enableVTE {
		env["VTE_VERSION"] = "0"
	}
	return env
}
