package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/shellmark/internal/core/config"
	"github.com/hay-kot/shellmark/internal/runner"
	"github.com/hay-kot/shellmark/internal/store/jsonfile"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// HistoryStore persists run summaries
	HistoryStore *jsonfile.HistoryStore
}

// RunnerConfig maps the loaded configuration onto controller settings.
func (f *Flags) RunnerConfig() runner.Config {
	return runner.Config{
		TerminalName:       f.Config.TerminalName,
		PromptCommand:      f.Config.PromptCommand,
		IntegrationTimeout: f.Config.IntegrationTimeout,
		PollInterval:       f.Config.IntegrationPoll,
		BenchIterations:    f.Config.BenchIterations,
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shellmark", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "shellmark")
}
