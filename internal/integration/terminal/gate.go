package terminal

import (
	"context"
	"errors"
	"time"
)

// ErrIntegrationTimeout is returned by WaitForIntegration when the terminal
// did not report shell integration before the deadline.
var ErrIntegrationTimeout = errors.New("shell integration timeout")

// Defaults used when polling for shell integration.
const (
	DefaultIntegrationTimeout = 4 * time.Second
	DefaultPollInterval       = 100 * time.Millisecond
)

// IntegrationReady reports whether t has shell integration with the
// execute-command capability. It only reads terminal state.
func IntegrationReady(t Terminal) bool {
	si := t.ShellIntegration()
	return si != nil && si.CanExecuteCommand()
}

// WaitForIntegration polls t every interval until IntegrationReady or the
// timeout elapses. It returns nil when ready, ErrIntegrationTimeout on
// timeout, or the context error if ctx ends first. Zero durations use the
// package defaults.
func WaitForIntegration(ctx context.Context, t Terminal, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultIntegrationTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	if IntegrationReady(t) {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			if IntegrationReady(t) {
				return nil
			}
			return ErrIntegrationTimeout
		case <-ticker.C:
			if IntegrationReady(t) {
				return nil
			}
		}
	}
}
