package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/shellmark/internal/core/history"
	"github.com/hay-kot/shellmark/internal/printer"
)

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	clear bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or manage run history",
		UsageText: "shellmark history [options]",
		Description: `View or manage the summaries of completed runs.

By default, lists recent runs with the matched pattern, extracted text and
scan timings. Use --clear to remove all history entries.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Aliases:     []string{"c"},
				Usage:       "clear all run history",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.clear {
		return cmd.runClear(ctx, p)
	}

	return cmd.runList(ctx, c)
}

func (cmd *HistoryCmd) runList(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.flags.HistoryStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No run history")
		return nil
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMMAND\tTIER\tMATCH\tREGEX\tINDEX\tTIME")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID),
			truncate(e.Command, 40),
			e.TierName(),
			matchColumn(e),
			micros(e.RegexMicros),
			micros(e.IndexMicros),
			e.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runClear(ctx context.Context, p *printer.Printer) error {
	if err := cmd.flags.HistoryStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	p.Successf("Run history cleared")
	return nil
}

func matchColumn(e history.Entry) string {
	if !e.Matched {
		return "-"
	}
	return truncate(strconv.Quote(e.Match), 30)
}

func micros(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "µs"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
