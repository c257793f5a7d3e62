package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/abacus/internal/commands"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/core/operation"
	"github.com/hay-kot/abacus/internal/printer"
	"github.com/hay-kot/abacus/internal/store/csvfile"
	"github.com/hay-kot/abacus/internal/store/jsonfile"
)

// runID identifies this process in the shared log file.
var runID = uuid.NewString()

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

func main() {
	if _, err := setupLogger("info", "", true); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
		logf  io.Closer
	)

	app := &cli.Command{
		Name:      "abacus",
		Usage:     "Interactive decimal calculator with history and undo/redo",
		UsageText: "abacus [global options] [command [command options]]",
		Description: `Abacus evaluates binary calculations on exact decimals and keeps a
persistent, undoable history.

Run 'abacus' with no arguments to start the interactive calculator.
Run 'abacus eval 2 pow 10' for a one-shot calculation.

Settings come from the config file and CALCULATOR_* environment variables
(CALCULATOR_MAX_HISTORY_SIZE, CALCULATOR_PRECISION, CALCULATOR_AUTO_SAVE, ...).`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("CALCULATOR_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <log_dir>/calculator.log)",
				Sources:     cli.EnvVars("CALCULATOR_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("CALCULATOR_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("CALCULATOR_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// No subcommand means the REPL (default action). Console logs
			// would interleave with the prompt, so the REPL logs to file only.
			isREPL := c.Args().Len() == 0

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logf, err = setupLogger(flags.LogLevel, logFile, !isREPL)
			if err != nil {
				return ctx, err
			}

			store, err := newHistoryStore(cfg)
			if err != nil {
				return ctx, fmt.Errorf("history store: %w", err)
			}
			flags.Store = store
			flags.Factory = operation.NewFactory()

			log.Debug().
				Str("config", flags.ConfigPath).
				Str("history", store.Path()).
				Str("log", logFile).
				Msg("configuration loaded")

			return ctx, nil
		},
	}

	replCmd := commands.NewReplCmd(flags)

	app = commands.NewEvalCmd(flags).Register(app)
	app = commands.NewHistoryCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	// Register REPL flags on root command
	app.Flags = append(app.Flags, replCmd.Flags()...)

	// Set REPL as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'abacus --help' for usage", c.Args().First())
		}
		return replCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	if logf != nil {
		_ = logf.Close()
	}

	os.Exit(exitCode)
}

// newHistoryStore returns the store for the configured history format.
func newHistoryStore(cfg *config.Config) (history.Store, error) {
	switch cfg.HistoryFormat {
	case config.FormatJSON:
		return jsonfile.NewHistoryStore(cfg.HistoryFile()), nil
	default:
		enc, err := cfg.Encoding()
		if err != nil {
			return nil, err
		}
		return csvfile.NewHistoryStore(cfg.HistoryFile(), enc), nil
	}
}

// setupLogger configures the global logger. Output goes to the console when
// console is set and to logFile when one is given; with neither, logs are
// discarded. The returned closer, if any, closes the log file.
func setupLogger(level string, logFile string, console bool) (io.Closer, error) {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	var writers []io.Writer
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	var file *os.File
	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}

	var output io.Writer
	switch len(writers) {
	case 0:
		output = io.Discard
	case 1:
		output = writers[0]
	default:
		output = io.MultiWriter(writers...)
	}

	// Every invocation appends to the same log file; run_id separates them.
	log.Logger = zerolog.New(output).Level(parsedLevel).With().Timestamp().Str("run_id", runID).Logger()

	if file == nil {
		return nil, nil
	}
	return file, nil
}
