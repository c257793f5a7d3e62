package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/printer"
)

type HistoryCmd struct {
	flags *Flags

	// Command-specific flags
	clear bool
	yes   bool
	limit int

	// confirm overrides the interactive prompt used before clearing.
	confirm ConfirmFunc
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags) *HistoryCmd {
	return &HistoryCmd{flags: flags}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "View or manage saved calculation history",
		UsageText: "abacus history [options]",
		Description: `View or manage the saved calculation history.

By default, lists saved calculations oldest first.
Use --clear to remove all saved calculations. On a terminal you are asked
to confirm first unless --yes is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Aliases:     []string{"c"},
				Usage:       "clear all saved history",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "clear without asking for confirmation",
				Destination: &cmd.yes,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show only the newest n calculations (0 for all)",
				Destination: &cmd.limit,
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
	calcs, err := cmd.flags.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if len(calcs) == 0 {
		printer.Ctx(ctx).Infof("No saved calculations")
		return nil
	}

	start := 0
	if cmd.limit > 0 && len(calcs) > cmd.limit {
		start = len(calcs) - cmd.limit
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tOPERATION\tOPERAND1\tOPERAND2\tRESULT\tTIME")

	for i := start; i < len(calcs); i++ {
		calc := calcs[i]
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			calc.Operation,
			calc.Operand1,
			calc.Operand2,
			calc.FormatResult(cmd.flags.Config.Precision),
			calc.Timestamp.Local().Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) runClear(ctx context.Context, p *printer.Printer) error {
	path := cmd.flags.Store.Path()

	// An unreadable file can still be cleared.
	calcs, loadErr := cmd.flags.Store.Load(ctx)
	if loadErr == nil && len(calcs) == 0 {
		p.Infof("No saved calculations")
		return nil
	}

	title := fmt.Sprintf("Delete %d saved calculations from %s?", len(calcs), path)
	if loadErr != nil {
		title = fmt.Sprintf("Replace the unreadable history at %s?", path)
	}

	ok, err := cmd.confirmClear(title)
	if err != nil {
		return fmt.Errorf("confirm clear: %w", err)
	}
	if !ok {
		p.Infof("History left unchanged")
		return nil
	}

	if err := cmd.flags.Store.Save(ctx, []history.Calculation{}); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	p.Successf("Calculation history cleared")
	return nil
}

// confirmClear asks before clearing. --yes and non-interactive stdin skip
// the question.
func (cmd *HistoryCmd) confirmClear(title string) (bool, error) {
	if cmd.yes {
		return true, nil
	}
	if cmd.confirm != nil {
		return cmd.confirm(title, "Clear")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true, nil
	}
	return confirmPrompt(title, "Clear")
}
