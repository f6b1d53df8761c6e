package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shellmark/internal/core/stats"
	"github.com/hay-kot/shellmark/internal/integration/terminal/ptyhost"
	"github.com/hay-kot/shellmark/internal/runner"
	"github.com/hay-kot/shellmark/internal/tui"
)

// bridgeBuffer bounds how many sink messages may queue while the UI renders.
const bridgeBuffer = 64

type TuiCmd struct {
	flags *Flags

	command       string
	noIntegration bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "command",
			Usage:       "command prefilled in the panel",
			Value:       tui.DefaultCommand,
			Destination: &cmd.command,
		},
		&cli.BoolFlag{
			Name:        "no-shell-integration",
			Usage:       "start with shell integration turned off",
			Destination: &cmd.noIntegration,
		},
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the interactive command panel",
		UsageText:   "shellmark tui [options]",
		Description: "Opens the command panel. This is also the default when shellmark runs in a terminal.",
		Flags:       cmd.Flags(),
		Action:      cmd.run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(_ context.Context, _ *cli.Command) error {
	logger := log.With().Str("component", "runner").Logger()

	bridge := tui.NewBridge(bridgeBuffer)
	host := ptyhost.New(cmd.flags.Config.Shell, nil, logger)
	ctrl := runner.New(host, stats.New(), bridge.Sinks(), cmd.flags.RunnerConfig(), logger).
		WithRecorder(cmd.flags.HistoryStore)

	defer func() {
		// Unblock sink publishers before tearing down the terminal.
		bridge.Close()
		if err := ctrl.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close controller")
		}
	}()

	opts := tui.Options{
		Command:       cmd.command,
		PromptCommand: cmd.flags.Config.PromptCommand,
		Defaults: runner.Options{
			UseShellIntegration: !cmd.noIntegration,
		},
	}

	m := tui.New(ctrl, bridge.Events(), opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
