package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shellmark/internal/core/marker"
	"github.com/hay-kot/shellmark/internal/core/stats"
	"github.com/hay-kot/shellmark/internal/printer"
	"github.com/hay-kot/shellmark/internal/runner"
)

type ExtractCmd struct {
	flags *Flags

	// Command-specific flags
	vte        bool
	iterations int
}

// NewExtractCmd creates a new extract command
func NewExtractCmd(flags *Flags) *ExtractCmd {
	return &ExtractCmd{flags: flags}
}

// Register adds the extract command to the application
func (cmd *ExtractCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "extract",
		Usage:     "Extract command output from captured terminal data",
		UsageText: "shellmark extract [options] [file|-]",
		Description: `Runs the marker extraction over raw terminal output read from a file or
stdin, cross-checking the regex and index scans for every tier.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "vte",
				Usage:       "try the VTE completion marker first",
				Destination: &cmd.vte,
			},
			&cli.IntFlag{
				Name:        "iterations",
				Usage:       "benchmark iterations per scan (defaults to bench_iterations)",
				Destination: &cmd.iterations,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExtractCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	source, err := readSource(c.Args().First(), c.Root().Reader)
	if err != nil {
		return err
	}

	iterations := cmd.iterations
	if iterations <= 0 {
		iterations = cmd.flags.Config.BenchIterations
	}

	res := marker.New(iterations).Extract(source, cmd.vte)

	st := stats.New()
	st.RecordCompletionMarkerCount(marker.CountCompletionMarkers(source))
	for _, m := range res.Mismatches {
		p.Warnf("%s: regex %s, index %s", m.Tier.Label(), m.Regex, m.Index)
		st.RecordMismatch(m)
	}
	st.Record(res, source)

	p.Block("Output", runner.FormatMatch(res, source))
	p.Block("Pattern Matching", st.Render())
	return nil
}

// readSource reads path, or r when path is empty or "-".
func readSource(path string, r io.Reader) (string, error) {
	if path == "" || path == "-" {
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
