// Package ptyhost implements terminal.Host on top of bash running in a
// pseudo-terminal. Shell integration is provided by an embedded rcfile that
// writes OSC 633 markers, which a Scanner turns into execution events.
package ptyhost

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"

	"github.com/creack/pty"
	"github.com/rs/zerolog"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

//go:embed integration.bash
var integrationScript string

// Default PTY dimensions. Wide enough that typical output is not wrapped.
const (
	defaultRows = 24
	defaultCols = 200
)

// Host spawns shells in PTYs.
type Host struct {
	shell  string
	mirror io.Writer
	log    zerolog.Logger

	mu     sync.Mutex
	nextID int
	starts map[int]func(terminal.StartEvent)
	ends   map[int]func(terminal.EndEvent)
}

// New creates a Host that runs shell for every terminal. When mirror is
// non-nil, raw output of shown terminals is copied to it.
func New(shell string, mirror io.Writer, log zerolog.Logger) *Host {
	return &Host{
		shell:  shell,
		mirror: mirror,
		log:    log,
		starts: make(map[int]func(terminal.StartEvent)),
		ends:   make(map[int]func(terminal.EndEvent)),
	}
}

// CreateTerminal starts a new interactive shell with the integration script.
func (h *Host) CreateTerminal(_ context.Context, opts terminal.CreateOptions) (terminal.Terminal, error) {
	rc, err := writeRCFile()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(h.shell, "--noprofile", "--rcfile", rc, "-i")
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+opts.Env[k])
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: defaultRows, Cols: defaultCols})
	if err != nil {
		_ = os.Remove(rc)
		return nil, fmt.Errorf("start pty: %w", err)
	}

	h.mu.Lock()
	h.nextID++
	id := fmt.Sprintf("pty-%d", h.nextID)
	h.mu.Unlock()

	t := &Terminal{
		host:   h,
		id:     id,
		name:   opts.Name,
		cmd:    cmd,
		ptmx:   ptmx,
		rcfile: rc,
		log:    h.log.With().Str("terminal", id).Logger(),
		exited: make(chan struct{}),
	}
	t.scanner = &Scanner{
		OnReady: t.markReady,
		OnStart: t.beginExecution,
		OnData:  t.pushOutput,
		OnEnd:   t.endExecution,
	}

	go t.readLoop()
	go t.waitLoop()

	t.log.Debug().Str("shell", h.shell).Int("pid", cmd.Process.Pid).Msg("terminal started")
	return t, nil
}

// OnDidStartExecution implements terminal.Host.
func (h *Host) OnDidStartExecution(fn func(terminal.StartEvent)) terminal.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.starts[id] = fn
	return disposer(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.starts, id)
	})
}

// OnDidEndExecution implements terminal.Host.
func (h *Host) OnDidEndExecution(fn func(terminal.EndEvent)) terminal.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.ends[id] = fn
	return disposer(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.ends, id)
	})
}

// deliver runs the start handlers, waits for the stream to close, then runs
// the end handlers.
func (h *Host) deliver(t *Terminal, stream *terminal.Stream) {
	h.mu.Lock()
	starts := make([]func(terminal.StartEvent), 0, len(h.starts))
	for _, fn := range h.starts {
		starts = append(starts, fn)
	}
	h.mu.Unlock()

	for _, fn := range starts {
		fn(terminal.StartEvent{Terminal: t, Execution: stream})
	}

	<-stream.Done()

	h.mu.Lock()
	ends := make([]func(terminal.EndEvent), 0, len(h.ends))
	for _, fn := range h.ends {
		ends = append(ends, fn)
	}
	h.mu.Unlock()

	for _, fn := range ends {
		fn(terminal.EndEvent{Terminal: t, Execution: stream})
	}
}

func writeRCFile() (string, error) {
	f, err := os.CreateTemp("", "shellmark-*.bash")
	if err != nil {
		return "", fmt.Errorf("create rcfile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(integrationScript); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write rcfile: %w", err)
	}
	return f.Name(), nil
}

type disposer func()

func (d disposer) Dispose() { d() }

var _ terminal.Host = (*Host)(nil)
