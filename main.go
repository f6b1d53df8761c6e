package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hay-kot/shellmark/internal/commands"
	"github.com/hay-kot/shellmark/internal/core/config"
	"github.com/hay-kot/shellmark/internal/printer"
	"github.com/hay-kot/shellmark/internal/store/jsonfile"
	"github.com/hay-kot/shellmark/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

// logOptions controls where setupLogger sends output.
type logOptions struct {
	level      string
	file       string
	maxSizeMB  int
	maxBackups int
	// deferred, when set, replaces the console writer while the TUI owns the
	// terminal.
	deferred io.Writer
}

func main() {
	if err := setupLogger(logOptions{level: "info"}); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *utils.DeferredWriter

	app := &cli.Command{
		Name:      "shellmark",
		Usage:     "Extract command output from shell integration markers",
		UsageText: "shellmark [global options] command [command options]",
		Description: `Shellmark runs commands in a managed shell that emits terminal integration
markers, extracts each command's output by cross-checking a regex scan
against an index scan, and keeps statistics on which marker convention
matched and how fast each strategy was.

Run 'shellmark' with no arguments in a terminal to open the command panel.
Run 'shellmark run <command>' to run a command and print the report.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SHELLMARK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional, the panel always logs to the data directory)",
				Sources:     cli.EnvVars("SHELLMARK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SHELLMARK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SHELLMARK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			opts := logOptions{
				level:      flags.LogLevel,
				file:       flags.LogFile,
				maxSizeMB:  cfg.Log.MaxSizeMB,
				maxBackups: cfg.Log.MaxBackups,
			}

			// Detect TUI mode: no subcommand means TUI (default action)
			if isTUI(c) {
				deferredLogs = &utils.DeferredWriter{}
				opts.deferred = deferredLogs
				if opts.file == "" {
					opts.file = cfg.LogFile()
				}
			}

			if err := setupLogger(opts); err != nil {
				return ctx, err
			}

			flags.HistoryStore = jsonfile.NewHistoryStore(cfg.HistoryFile(), cfg.History.MaxEntries)
			return ctx, nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewExtractCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'shellmark --help' for usage", c.Args().First())
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("stdin is not a terminal. Run 'shellmark run <command>' or 'shellmark --help' for usage")
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

func isTUI(c *cli.Command) bool {
	if len(c.Args().Slice()) == 0 {
		return true
	}
	return c.Args().First() == "tui"
}

func setupLogger(opts logOptions) error {
	parsedLevel, err := zerolog.ParseLevel(opts.level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if opts.file != "" {
		// Create log directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(opts.file), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file := &lumberjack.Logger{
			Filename:   opts.file,
			MaxSize:    opts.maxSizeMB,
			MaxBackups: opts.maxBackups,
		}

		if opts.deferred != nil {
			// TUI mode with log file - write to both file and deferred buffer
			output = io.MultiWriter(file, opts.deferred)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if opts.deferred != nil {
		// TUI mode without log file - buffer for display after exit
		output = opts.deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
