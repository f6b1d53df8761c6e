package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shellmark/internal/core/stats"
	"github.com/hay-kot/shellmark/internal/core/validate"
	"github.com/hay-kot/shellmark/internal/integration/terminal/ptyhost"
	"github.com/hay-kot/shellmark/internal/printer"
	"github.com/hay-kot/shellmark/internal/runner"
)

type RunCmd struct {
	flags *Flags

	// Command-specific flags
	autoClose     bool
	noIntegration bool
	promptCommand string
	vte           bool
	repeat        int
	timeout       time.Duration
	show          bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run a command in a managed terminal and extract its output",
		UsageText: "shellmark run [options] <command>",
		Description: `Runs the command in a shell with integration markers, extracts its output
and prints the match report followed by the pattern matching statistics.

Use --repeat to run the command several times in the same terminal and
accumulate statistics across runs.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "auto-close",
				Usage:       "dispose the terminal after each run",
				Destination: &cmd.autoClose,
			},
			&cli.BoolFlag{
				Name:        "no-shell-integration",
				Usage:       "type the command instead of executing it through shell integration",
				Destination: &cmd.noIntegration,
			},
			&cli.StringFlag{
				Name:        "prompt-command",
				Usage:       "PROMPT_COMMAND for the managed shell (defaults to the configured value)",
				Destination: &cmd.promptCommand,
			},
			&cli.BoolFlag{
				Name:        "vte",
				Usage:       "enable VTE completion markers",
				Destination: &cmd.vte,
			},
			&cli.IntFlag{
				Name:        "repeat",
				Aliases:     []string{"n"},
				Usage:       "number of times to run the command",
				Value:       1,
				Destination: &cmd.repeat,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "maximum time to wait for each run to complete",
				Value:       30 * time.Second,
				Destination: &cmd.timeout,
			},
			&cli.BoolFlag{
				Name:        "show",
				Usage:       "mirror raw terminal output to stderr",
				Destination: &cmd.show,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	command := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if err := validate.Command(command); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	if err := validate.PromptCommand(cmd.promptCommand); err != nil {
		return fmt.Errorf("invalid --prompt-command: %w", err)
	}
	if cmd.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", cmd.repeat)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var (
		p      = printer.Ctx(ctx)
		logger = log.With().Str("component", "runner").Logger()
		st     = stats.New()
		mu     sync.Mutex
		mirror io.Writer
	)

	if cmd.show {
		mirror = os.Stderr
	}

	sinks := runner.Sinks{
		OnOutput: func(s string) {
			mu.Lock()
			defer mu.Unlock()
			p.Block("Output", s)
		},
	}

	host := ptyhost.New(cmd.flags.Config.Shell, mirror, logger)
	ctrl := runner.New(host, st, sinks, cmd.flags.RunnerConfig(), logger).
		WithRecorder(cmd.flags.HistoryStore)
	defer func() {
		if err := ctrl.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close controller")
		}
	}()

	opts := runner.Options{
		AutoCloseTerminal:   cmd.autoClose,
		UseShellIntegration: !cmd.noIntegration,
		PromptCommand:       cmd.promptCommand,
		EnableVTEChecks:     cmd.vte,
	}

	for i := range cmd.repeat {
		if err := ctrl.ExecuteCommand(ctx, command, opts); err != nil {
			return fmt.Errorf("run %d: %w", i+1, err)
		}

		waitCtx, cancel := context.WithTimeout(ctx, cmd.timeout)
		err := ctrl.Wait(waitCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("run %d did not complete within %s", i+1, cmd.timeout)
			}
			return fmt.Errorf("run %d: %w", i+1, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	p.Block("Pattern Matching", st.Render())
	return nil
}
