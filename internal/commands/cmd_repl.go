package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/abacus/internal/repl"
	"github.com/hay-kot/abacus/pkg/executil"
)

type ReplCmd struct {
	flags *Flags

	// Command-specific flags
	fresh bool
}

// NewReplCmd creates a new REPL command. It runs as the root action.
func NewReplCmd(flags *Flags) *ReplCmd {
	return &ReplCmd{flags: flags}
}

// Flags returns the REPL flags for registration on the root command.
func (cmd *ReplCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "fresh",
			Usage:       "start with an empty history instead of loading the saved one",
			Destination: &cmd.fresh,
		},
	}
}

// Run starts the interactive calculator on stdin/stdout.
func (cmd *ReplCmd) Run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	logger := log.With().Str("component", "repl").Logger()
	calc := newCalculator(ctx, cmd.flags, log.Logger, cmd.fresh)

	r := repl.New(calc, cmd.flags.Factory, cmd.flags.Config, logger, repl.Options{
		In:          os.Stdin,
		Out:         c.Root().Writer,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		Executor:    &executil.RealExecutor{},
	})

	logger.Info().Str("history", cmd.flags.Store.Path()).Msg("starting repl")
	return r.Run(ctx)
}
