package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep runs Validate and additionally checks the environment: the
// config file and data directory paths and the shell executable.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		}
	}

	if c.Shell != "" {
		if _, err := exec.LookPath(c.Shell); err != nil {
			errs = errs.Append("shell", fmt.Errorf("executable not found: %s", c.Shell))
		}
	}

	return errs.ToError()
}

// Warnings returns settings that are valid but likely to cause trouble.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Shell != "" && filepath.Base(c.Shell) != "bash" {
		warnings = append(warnings, ValidationWarning{
			Category: "Shell",
			Item:     "shell",
			Message:  fmt.Sprintf("%s is not bash; the integration script may not load and runs will fall back to sendText", filepath.Base(c.Shell)),
		})
	}

	if c.History.MaxEntries == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "max_entries",
			Message:  "history is never pruned",
		})
	}

	if c.BenchIterations > 10_000 {
		warnings = append(warnings, ValidationWarning{
			Category: "Benchmark",
			Item:     "bench_iterations",
			Message:  fmt.Sprintf("%d iterations per scan will slow down every run", c.BenchIterations),
		})
	}

	return warnings
}
