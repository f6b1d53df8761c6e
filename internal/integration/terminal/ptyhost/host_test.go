package ptyhost

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

func newBashHost(t *testing.T) *Host {
	t.Helper()
	if testing.Short() {
		t.Skip("spawns a shell")
	}
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not installed")
	}
	return New(bash, nil, zerolog.Nop())
}

func TestHost_ExecuteCommand(t *testing.T) {
	host := newBashHost(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	term, err := host.CreateTerminal(ctx, terminal.CreateOptions{
		Name: "test",
		Env:  map[string]string{"VTE_VERSION": "0"},
	})
	require.NoError(t, err)
	defer func() { _ = term.Dispose() }()

	require.NoError(t, terminal.WaitForIntegration(ctx, term, 5*time.Second, 10*time.Millisecond))

	output := make(chan string, 1)
	ended := make(chan struct{})

	startSub := host.OnDidStartExecution(func(e terminal.StartEvent) {
		go func() {
			var b strings.Builder
			for chunk, err := range e.Execution.Read(ctx) {
				if err != nil {
					break
				}
				b.WriteString(chunk)
			}
			output <- b.String()
		}()
	})
	defer startSub.Dispose()

	endSub := host.OnDidEndExecution(func(terminal.EndEvent) { close(ended) })
	defer endSub.Dispose()

	si := term.ShellIntegration()
	require.NotNil(t, si)
	require.NoError(t, si.ExecuteCommand("echo shellmark-$((40+2))"))

	select {
	case got := <-output:
		assert.True(t, strings.HasPrefix(got, "\x1b]633;C\x07"), "got %q", got)
		assert.Contains(t, got, "shellmark-42")
		assert.Contains(t, got, "\x1b]633;D;0\x07")
		assert.NotContains(t, got, "777;notify")
	case <-ctx.Done():
		t.Fatal("no execution output")
	}

	select {
	case <-ended:
	case <-ctx.Done():
		t.Fatal("no end event")
	}
}

func TestHost_DisposeClosesTerminal(t *testing.T) {
	host := newBashHost(t)

	term, err := host.CreateTerminal(context.Background(), terminal.CreateOptions{Name: "test"})
	require.NoError(t, err)

	require.NoError(t, term.Dispose())
	require.NoError(t, term.Dispose())

	assert.Nil(t, term.ShellIntegration())
	assert.ErrorIs(t, term.SendText("echo a"), terminal.ErrTerminalClosed)

	select {
	case <-term.(*Terminal).Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit")
	}
}
