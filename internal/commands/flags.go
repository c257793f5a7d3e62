package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/abacus/internal/calculator"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/core/operation"
	"github.com/hay-kot/abacus/internal/printer"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store persists calculation history in the configured format
	Store history.Store

	// Factory resolves operator tokens to operations
	Factory *operation.Factory
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "abacus", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "abacus")
}

// newCalculator builds a Calculator wired with the logging and auto-save
// observers. Unless fresh is set, the saved history is loaded. A history
// that cannot be read is reported and left on disk untouched: the session
// starts empty and auto-save stays off until an explicit save.
func newCalculator(ctx context.Context, flags *Flags, log zerolog.Logger, fresh bool) *calculator.Calculator {
	calc := calculator.New(flags.Config, flags.Store, log.With().Str("component", "calculator").Logger())
	calc.AddObserver(calculator.NewLoggingObserver(log.With().Str("component", "observer").Logger()))
	calc.AddObserver(calculator.NewAutoSaveObserver(calc))

	if fresh {
		return calc
	}

	if err := calc.LoadHistory(ctx); err != nil {
		log.Warn().Err(err).Str("path", flags.Store.Path()).Msg("starting with empty history, auto-save paused")
		p := printer.Ctx(ctx)
		p.Warnf("Could not load history from %s: %v", flags.Store.Path(), err)
		if flags.Config.AutoSave {
			p.Warnf("Auto-save is paused so the file is not overwritten; 'save' replaces it")
		}
	}

	return calc
}
