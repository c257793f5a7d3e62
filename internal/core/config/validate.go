package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/shopspring/decimal"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// largeHistorySize is the history size above which Warnings reports a
// memory concern.
const largeHistorySize = 10_000

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this also checks that the config file and the history
// and log directories are usable.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := c.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if err := checkDir(c.HistoryDir); err != nil {
		errs = errs.Append("history_dir", err)
	}
	if err := checkDir(c.LogDir); err != nil {
		errs = errs.Append("log_dir", err)
	}

	if c.HistoryDir != "" {
		if info, err := os.Stat(c.HistoryFile()); err == nil && info.IsDir() {
			errs = errs.Append("history_file", fmt.Errorf("%s is a directory, not a file", c.HistoryFile()))
		}
	}

	if err := errs.ToError(); err != nil {
		return &calcerr.ConfigurationError{Err: err}
	}
	return nil
}

// checkDir accepts a missing directory (it will be created) or an existing
// one, and rejects anything else.
func checkDir(dir string) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%s exists but is not a directory", dir)
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("cannot access %s: %w", dir, err)
	default:
		return nil
	}
}

// Warnings returns non-fatal issues with the configuration.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.AutoSave {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "auto_save",
			Message:  "auto-save is disabled; history is only written by the 'save' command",
		})
	}

	if c.MaxHistorySize > largeHistorySize {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Item:     "max_history_size",
			Message:  fmt.Sprintf("%d entries are kept in memory and snapshotted on every calculation", c.MaxHistorySize),
		})
	}

	if c.Precision > decimal.DivisionPrecision {
		warnings = append(warnings, ValidationWarning{
			Category: "Display",
			Item:     "precision",
			Message:  fmt.Sprintf("precision %d exceeds the %d fractional digits division results carry", c.Precision, decimal.DivisionPrecision),
		})
	}

	return warnings
}
