package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/repl"
)

type EvalCmd struct {
	flags *Flags

	// Command-specific flags
	noSave bool
}

// NewEvalCmd creates a new eval command
func NewEvalCmd(flags *Flags) *EvalCmd {
	return &EvalCmd{flags: flags}
}

// Register adds the eval command to the application
func (cmd *EvalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate a single calculation",
		UsageText: "abacus eval [options] <number> <operator> <number>",
		Description: `Evaluates one calculation and records it in history.

The expression may be given as separate arguments or as one quoted string:

  abacus eval 2 pow 10
  abacus eval "10 / 4"
  abacus eval -- -5 + 3

With auto_save enabled the updated history is written to disk.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-save",
				Usage:       "do not record the calculation in history",
				Destination: &cmd.noSave,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EvalCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	expr := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("missing expression. Usage: %s", c.UsageText)
	}

	input, err := repl.NewParser(cmd.flags.Factory.Tokens()).Parse(expr)
	if err != nil {
		return err
	}
	if input.Kind != repl.KindCalculation {
		return fmt.Errorf("%q is a REPL command, not a calculation", expr)
	}

	op, err := cmd.flags.Factory.Create(input.Operator)
	if err != nil {
		return err
	}

	flags := cmd.flags
	if cmd.noSave {
		cfg := *flags.Config
		cfg.AutoSave = false
		flags = &Flags{Config: &cfg, Store: flags.Store, Factory: flags.Factory}
	}

	calc := newCalculator(ctx, flags, log.Logger, cmd.noSave)

	calc.SetOperation(op)
	result, err := calc.PerformOperation(ctx, input.Left, input.Right)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.Root().Writer, history.FormatResult(result, cmd.flags.Config.Precision))
	return err
}
