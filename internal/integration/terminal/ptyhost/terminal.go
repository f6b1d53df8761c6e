package ptyhost

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// Terminal is a shell running in a PTY.
type Terminal struct {
	host    *Host
	id      string
	name    string
	cmd     *exec.Cmd
	ptmx    *os.File
	rcfile  string
	log     zerolog.Logger
	scanner *Scanner // only touched by readLoop
	exited  chan struct{}

	mu          sync.Mutex
	ready       bool
	shown       bool
	closed      bool
	lastCommand string
	current     *terminal.Stream
	closeOnce   sync.Once
}

func (t *Terminal) ID() string   { return t.id }
func (t *Terminal) Name() string { return t.name }

// Show starts mirroring raw output to the host mirror, if any.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown = true
}

// SendText writes text and a carriage return, as if typed.
func (t *Terminal) SendText(text string) error {
	return t.write(text, text+"\r")
}

// Dispose kills the shell and releases the PTY. It is safe to call twice.
func (t *Terminal) Dispose() error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		if t.cmd.Process != nil {
			if kerr := t.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				err = fmt.Errorf("kill shell: %w", kerr)
			}
		}
		if cerr := t.ptmx.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close pty: %w", cerr)
		}
		_ = os.Remove(t.rcfile)
		t.log.Debug().Msg("terminal disposed")
	})
	return err
}

// ShellIntegration returns nil until the integration script has reported in.
func (t *Terminal) ShellIntegration() terminal.ShellIntegration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready || t.closed {
		return nil
	}
	return integration{t: t}
}

// Exited is closed when the shell process ends.
func (t *Terminal) Exited() <-chan struct{} {
	return t.exited
}

func (t *Terminal) write(command, raw string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return terminal.ErrTerminalClosed
	}
	t.lastCommand = command
	t.mu.Unlock()

	if _, err := io.WriteString(t.ptmx, raw); err != nil {
		return fmt.Errorf("write to pty: %w", err)
	}
	return nil
}

func (t *Terminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := t.ptmx.Read(buf)
		if n > 0 {
			t.mirror(buf[:n])
			_, _ = t.scanner.Write(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.log.Debug().Err(err).Msg("pty read ended")
			}
			break
		}
	}

	// A command still in flight will never see its finish marker.
	t.mu.Lock()
	stream := t.current
	t.current = nil
	t.mu.Unlock()
	if stream != nil {
		stream.Close(terminal.ErrTerminalClosed)
	}
}

func (t *Terminal) waitLoop() {
	err := t.cmd.Wait()
	t.log.Debug().Err(err).Msg("shell exited")

	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	close(t.exited)
}

func (t *Terminal) mirror(b []byte) {
	t.mu.Lock()
	shown := t.shown
	t.mu.Unlock()
	if shown && t.host.mirror != nil {
		_, _ = t.host.mirror.Write(b)
	}
}

func (t *Terminal) markReady() {
	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()
	t.log.Debug().Msg("shell integration ready")
}

func (t *Terminal) beginExecution() {
	t.mu.Lock()
	stream := terminal.NewStream(t.lastCommand)
	t.current = stream
	t.mu.Unlock()

	go t.host.deliver(t, stream)
}

func (t *Terminal) pushOutput(chunk string) {
	t.mu.Lock()
	stream := t.current
	t.mu.Unlock()
	if stream != nil {
		stream.Push(chunk)
	}
}

func (t *Terminal) endExecution() {
	t.mu.Lock()
	stream := t.current
	t.current = nil
	t.mu.Unlock()
	if stream != nil {
		stream.Close(nil)
	}
}

type integration struct {
	t *Terminal
}

func (i integration) CanExecuteCommand() bool { return true }

// ExecuteCommand clears any partially typed input before running command.
func (i integration) ExecuteCommand(command string) error {
	return i.t.write(command, "\x15"+command+"\r")
}

var _ terminal.Terminal = (*Terminal)(nil)
