package doctor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/hay-kot/shellmark/pkg/executil"
)

const probeTimeout = 5 * time.Second

// ShellCheck verifies the configured shell exists and reports its version.
type ShellCheck struct {
	shell string
	exec  executil.Executor
}

// NewShellCheck creates a check for shell using exec to probe it.
func NewShellCheck(shell string, exec executil.Executor) *ShellCheck {
	return &ShellCheck{shell: shell, exec: exec}
}

func (c *ShellCheck) Name() string {
	return "Shell"
}

func (c *ShellCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	path, err := c.exec.LookPath(c.shell)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Executable",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "Executable",
		Status: StatusPass,
		Detail: path,
	})

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	version, err := executil.FirstLine(ctx, c.exec, path, "--version")
	item := CheckItem{Label: "Version", Status: StatusPass, Detail: version}
	if err != nil {
		item.Status = StatusWarn
		item.Detail = err.Error()
	}
	result.Items = append(result.Items, item)

	if filepath.Base(path) != "bash" {
		result.Items = append(result.Items, CheckItem{
			Label:  "Integration script",
			Status: StatusWarn,
			Detail: "the integration rcfile needs bash; no markers will be emitted",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "Integration script",
			Status: StatusPass,
			Detail: "bash rcfile",
		})
	}

	return result
}
