// Package config handles configuration loading and validation for shellmark.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/shellmark/internal/core/validate"
)

// Config holds the application configuration.
type Config struct {
	// Shell is the interactive shell started in managed terminals. The
	// integration script is written for bash.
	Shell              string        `yaml:"shell"`
	TerminalName       string        `yaml:"terminal_name"`
	PromptCommand      string        `yaml:"prompt_command"`
	IntegrationTimeout time.Duration `yaml:"integration_timeout"`
	IntegrationPoll    time.Duration `yaml:"integration_poll"`
	BenchIterations    int           `yaml:"bench_iterations"`
	History            HistoryConfig `yaml:"history"`
	Log                LogConfig     `yaml:"log"`
	DataDir            string        `yaml:"-"` // set by caller, not from config file
}

// HistoryConfig controls the run history file.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"` // 0 keeps everything
}

// LogConfig controls rotation of the log file.
type LogConfig struct {
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Shell:              defaultShell(),
		TerminalName:       "Command Runner",
		PromptCommand:      "sleep 0.1",
		IntegrationTimeout: 4 * time.Second,
		IntegrationPoll:    100 * time.Millisecond,
		BenchIterations:    1000,
		History:            HistoryConfig{MaxEntries: 100},
		Log:                LogConfig{MaxSizeMB: 10, MaxBackups: 3},
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); filepath.Base(sh) == "bash" {
		return sh
	}
	return "/bin/bash"
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Shell == "" {
		c.Shell = defaults.Shell
	}
	if c.TerminalName == "" {
		c.TerminalName = defaults.TerminalName
	}
	if c.IntegrationTimeout == 0 {
		c.IntegrationTimeout = defaults.IntegrationTimeout
	}
	if c.IntegrationPoll == 0 {
		c.IntegrationPoll = defaults.IntegrationPoll
	}
	if c.BenchIterations == 0 {
		c.BenchIterations = defaults.BenchIterations
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
}

// Validate checks that the configuration is valid. All problems are reported
// together as criterio field errors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Shell == "" {
		errs = errs.Append("shell", fmt.Errorf("cannot be empty"))
	}
	if c.TerminalName == "" {
		errs = errs.Append("terminal_name", fmt.Errorf("cannot be empty"))
	}
	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}
	if err := validate.PromptCommand(c.PromptCommand); err != nil {
		errs = errs.Append("prompt_command", err)
	}
	if c.IntegrationTimeout < 0 {
		errs = errs.Append("integration_timeout", fmt.Errorf("must be positive, got %s", c.IntegrationTimeout))
	}
	if c.IntegrationPoll < 0 {
		errs = errs.Append("integration_poll", fmt.Errorf("must be positive, got %s", c.IntegrationPoll))
	} else if c.IntegrationTimeout > 0 && c.IntegrationPoll > c.IntegrationTimeout {
		errs = errs.Append("integration_poll", fmt.Errorf("must not exceed integration_timeout (%s)", c.IntegrationTimeout))
	}
	if c.BenchIterations < 1 || c.BenchIterations > 1_000_000 {
		errs = errs.Append("bench_iterations", fmt.Errorf("must be between 1 and 1000000, got %d", c.BenchIterations))
	}
	if c.History.MaxEntries < 0 {
		errs = errs.Append("history.max_entries", fmt.Errorf("cannot be negative"))
	}
	if c.Log.MaxSizeMB < 1 {
		errs = errs.Append("log.max_size_mb", fmt.Errorf("must be at least 1"))
	}
	if c.Log.MaxBackups < 0 {
		errs = errs.Append("log.max_backups", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

// HistoryFile returns the path to the run history JSON file.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "history.json")
}

// LogFile returns the default path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "shellmark.log")
}
