package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, "Command Runner", cfg.TerminalName)
	assert.Equal(t, "sleep 0.1", cfg.PromptCommand)
	assert.Equal(t, 4*time.Second, cfg.IntegrationTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.IntegrationPoll)
	assert.Equal(t, 1000, cfg.BenchIterations)
	assert.Equal(t, 100, cfg.History.MaxEntries)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.NotEmpty(t, cfg.Shell)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "history.json"), cfg.HistoryFile())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sleep 0.1", cfg.PromptCommand)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
shell: /usr/local/bin/bash
terminal_name: Runner
prompt_command: "echo hi"
integration_timeout: 2s
integration_poll: 50ms
bench_iterations: 10
history:
  max_entries: 5
log:
  max_backups: 1
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/bash", cfg.Shell)
	assert.Equal(t, "Runner", cfg.TerminalName)
	assert.Equal(t, "echo hi", cfg.PromptCommand)
	assert.Equal(t, 2*time.Second, cfg.IntegrationTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.IntegrationPoll)
	assert.Equal(t, 10, cfg.BenchIterations)
	assert.Equal(t, 5, cfg.History.MaxEntries)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB, "unset nested value keeps default")
	assert.Equal(t, 1, cfg.Log.MaxBackups)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "integration_timeout: [not a duration")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
bench_iterations: -1
integration_poll: 10s
history:
  max_entries: -3
`)

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"bench_iterations", "integration_poll", "history.max_entries"}, fields)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "empty shell", mutate: func(c *Config) { c.Shell = "" }, field: "shell"},
		{name: "empty terminal name", mutate: func(c *Config) { c.TerminalName = "" }, field: "terminal_name"},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, field: "data_dir"},
		{name: "multi line prompt command", mutate: func(c *Config) { c.PromptCommand = "a\nb" }, field: "prompt_command"},
		{name: "negative timeout", mutate: func(c *Config) { c.IntegrationTimeout = -time.Second }, field: "integration_timeout"},
		{name: "too many iterations", mutate: func(c *Config) { c.BenchIterations = 2_000_000 }, field: "bench_iterations"},
		{name: "small log size", mutate: func(c *Config) { c.Log.MaxSizeMB = 0 }, field: "log.max_size_mb"},
		{name: "negative backups", mutate: func(c *Config) { c.Log.MaxBackups = -1 }, field: "log.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, cfg.Validate(), &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig(t).Validate())
	})
}

func TestValidateDeep(t *testing.T) {
	t.Run("shell not found", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Shell = filepath.Join(t.TempDir(), "no-such-shell")

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "shell", fieldErrs[0].Field)
	})

	t.Run("config path is a directory", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Shell = os.Args[0]

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(t.TempDir()), &fieldErrs)
		assert.Equal(t, "config", fieldErrs[0].Field)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Shell = os.Args[0]
		cfg.DataDir = writeConfig(t, "")

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
		assert.Equal(t, "data_dir", fieldErrs[0].Field)
	})

	t.Run("includes basic validation", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Shell = os.Args[0]
		cfg.TerminalName = ""

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
		assert.Equal(t, "terminal_name", fieldErrs[0].Field)
	})

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Shell = os.Args[0]
		assert.NoError(t, cfg.ValidateDeep(""))
	})
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Shell = "/bin/zsh"
	cfg.History.MaxEntries = 0
	cfg.BenchIterations = 50_000

	var items []string
	for _, w := range cfg.Warnings() {
		items = append(items, w.Item)
	}
	assert.Equal(t, []string{"shell", "max_entries", "bench_iterations"}, items)

	cfg = validConfig(t)
	cfg.Shell = "/bin/bash"
	assert.Empty(t, cfg.Warnings())
}
