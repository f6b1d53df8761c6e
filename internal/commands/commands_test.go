package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shellmark/internal/core/config"
	"github.com/hay-kot/shellmark/internal/core/history"
	"github.com/hay-kot/shellmark/internal/core/marker"
	"github.com/hay-kot/shellmark/internal/printer"
	"github.com/hay-kot/shellmark/internal/store/jsonfile"
)

const vsceOutput = "\x1b]633;C\x07a\r\n\x1b]633;D;0\x07"

type harness struct {
	flags  *Flags
	app    *cli.Command
	out    bytes.Buffer
	report bytes.Buffer
	ctx    context.Context
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.BenchIterations = 1

	h := &harness{
		flags: &Flags{
			Config:       &cfg,
			HistoryStore: jsonfile.NewHistoryStore(cfg.HistoryFile(), cfg.History.MaxEntries),
		},
	}
	h.app = &cli.Command{
		Name:   "shellmark",
		Reader: strings.NewReader(stdin),
		Writer: &h.out,
	}
	h.ctx = printer.NewContext(context.Background(), printer.NewPlain(&h.report))
	return h
}

func TestExtractCmd_Stdin(t *testing.T) {
	h := newHarness(t, vsceOutput)
	app := NewExtractCmd(h.flags).Register(h.app)

	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "extract", "-"}))

	report := h.report.String()
	assert.Contains(t, report, `Match found (Pattern 2): "a\r\n"`)
	assert.Contains(t, report, "Pattern Matching")
	assert.Regexp(t, `Pattern 2 \(VSCE\): +1`, report)
}

func TestExtractCmd_File(t *testing.T) {
	h := newHarness(t, "")
	path := filepath.Join(t.TempDir(), "capture.txt")
	require.NoError(t, os.WriteFile(path, []byte("no markers here"), 0o644))

	app := NewExtractCmd(h.flags).Register(h.app)
	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "extract", path}))

	assert.Contains(t, h.report.String(), "No match found in:")
}

func TestExtractCmd_MissingFile(t *testing.T) {
	h := newHarness(t, "")
	app := NewExtractCmd(h.flags).Register(h.app)

	err := app.Run(h.ctx, []string{"shellmark", "extract", filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ")
}

func TestHistoryCmd_ListAndClear(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	matched := history.NewEntry("echo a", marker.Result{Tier: marker.TierVSCE, Text: "a"}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, h.flags.HistoryStore.Save(ctx, matched))
	require.NoError(t, h.flags.HistoryStore.Save(ctx, history.NewEntry("true", marker.Result{}, time.Now())))

	app := NewHistoryCmd(h.flags).Register(h.app)
	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "history"}))

	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TIER")
	assert.Contains(t, lines[1], "true")
	assert.Contains(t, lines[2], "VSCE")
	assert.Contains(t, lines[2], "2026-01-02 03:04:05")

	clearApp := NewHistoryCmd(h.flags).Register(&cli.Command{Name: "shellmark", Writer: &h.out})
	require.NoError(t, clearApp.Run(h.ctx, []string{"shellmark", "history", "--clear"}))
	entries, err := h.flags.HistoryStore.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, h.report.String(), "Run history cleared")
}

func TestHistoryCmd_Empty(t *testing.T) {
	h := newHarness(t, "")
	app := NewHistoryCmd(h.flags).Register(h.app)

	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "history"}))
	assert.Empty(t, h.out.String())
	assert.Contains(t, h.report.String(), "No run history")
}

func TestRunnerConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IntegrationPoll = 5 * time.Millisecond
	flags := &Flags{Config: &cfg}

	rc := flags.RunnerConfig()
	assert.Equal(t, cfg.TerminalName, rc.TerminalName)
	assert.Equal(t, cfg.PromptCommand, rc.PromptCommand)
	assert.Equal(t, cfg.IntegrationTimeout, rc.IntegrationTimeout)
	assert.Equal(t, 5*time.Millisecond, rc.PollInterval)
	assert.Equal(t, cfg.BenchIterations, rc.BenchIterations)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefgh-1234"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "short", truncate("short", 7))
	assert.Equal(t, "1.50µs", micros(1.5))
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, "/cfg/shellmark/config.yaml", DefaultConfigPath())
	assert.Equal(t, "/data/shellmark", DefaultDataDir())
}

func TestRunCmd_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no command", args: []string{"shellmark", "run"}, want: "invalid command"},
		{name: "bad prompt command", args: []string{"shellmark", "run", "--prompt-command", "a\nb", "echo", "a"}, want: "invalid --prompt-command"},
		{name: "bad repeat", args: []string{"shellmark", "run", "--repeat", "0", "echo", "a"}, want: "--repeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			app := NewRunCmd(h.flags).Register(h.app)

			err := app.Run(h.ctx, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigValidateCmd(t *testing.T) {
	h := newHarness(t, "")
	h.flags.Config.Shell = os.Args[0]
	h.flags.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")

	app := NewConfigValidateCmd(h.flags).Register(h.app)
	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "config", "validate"}))

	report := h.report.String()
	assert.Contains(t, report, "history:  "+h.flags.Config.HistoryFile())
	assert.Contains(t, report, "Configuration is valid")
}

func TestConfigValidateCmd_JSON(t *testing.T) {
	h := newHarness(t, "")
	h.flags.Config.Shell = os.Args[0]
	h.flags.Config.TerminalName = ""

	app := NewConfigValidateCmd(h.flags).Register(h.app)
	require.NoError(t, app.Run(h.ctx, []string{"shellmark", "config", "validate", "--format", "json"}))

	out := h.out.String()
	assert.Contains(t, out, `"valid": false`)
	assert.Contains(t, out, `"field": "terminal_name"`)
	assert.Contains(t, out, `"history": "`+h.flags.Config.HistoryFile()+`"`)
}
