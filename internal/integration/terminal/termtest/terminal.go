package termtest

import (
	"maps"
	"slices"
	"sync"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// Terminal records everything done to it.
type Terminal struct {
	host *Host
	id   string
	name string
	env  map[string]string

	mu         sync.Mutex
	integrated bool
	shown      int
	sent       []string
	executed   []string
	disposed   bool
}

func (t *Terminal) ID() string   { return t.id }
func (t *Terminal) Name() string { return t.name }

// Env returns the environment overrides the terminal was created with.
func (t *Terminal) Env() map[string]string {
	return maps.Clone(t.env)
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown++
}

// SendText records text and runs it through the host script.
func (t *Terminal) SendText(text string) error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return terminal.ErrTerminalClosed
	}
	t.sent = append(t.sent, text)
	t.mu.Unlock()

	t.host.dispatch(t, text)
	return nil
}

func (t *Terminal) Dispose() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposed = true
	return nil
}

// SetIntegrated flips shell integration on or off.
func (t *Terminal) SetIntegrated(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.integrated = v
}

func (t *Terminal) ShellIntegration() terminal.ShellIntegration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.integrated || t.disposed {
		return nil
	}
	return integration{t: t}
}

// Sent returns the commands written with SendText.
func (t *Terminal) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sent)
}

// Executed returns the commands run through shell integration.
func (t *Terminal) Executed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.executed)
}

// Disposed reports whether Dispose was called.
func (t *Terminal) Disposed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disposed
}

// Shown returns how many times Show was called.
func (t *Terminal) Shown() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

type integration struct {
	t *Terminal
}

func (i integration) CanExecuteCommand() bool { return true }

func (i integration) ExecuteCommand(command string) error {
	i.t.mu.Lock()
	if i.t.disposed {
		i.t.mu.Unlock()
		return terminal.ErrTerminalClosed
	}
	i.t.executed = append(i.t.executed, command)
	i.t.mu.Unlock()

	i.t.host.dispatch(i.t, command)
	return nil
}

var _ terminal.Terminal = (*Terminal)(nil)
