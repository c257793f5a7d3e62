// Package config handles configuration loading and validation for abacus.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// History file formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CALCULATOR_"

// Config holds the application configuration.
type Config struct {
	MaxHistorySize  int             `yaml:"max_history_size"`
	Precision       int             `yaml:"precision"`
	MaxInputValue   decimal.Decimal `yaml:"max_input_value"`
	AutoSave        bool            `yaml:"auto_save"`
	DefaultEncoding string          `yaml:"default_encoding"`
	HistoryFormat   string          `yaml:"history_format"`
	HistoryDir      string          `yaml:"history_dir"`
	LogDir          string          `yaml:"log_dir"`
	DataDir         string          `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxHistorySize:  1000,
		Precision:       10,
		MaxInputValue:   decimal.RequireFromString("1e999"),
		AutoSave:        true,
		DefaultEncoding: "utf-8",
		HistoryFormat:   FormatCSV,
	}
}

// Load reads configuration from the given path, applies CALCULATOR_*
// environment overrides and sets the data directory. If configPath is empty
// or doesn't exist, defaults are used.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides fields from environment variables. Values that cannot
// be parsed are reported as a ConfigurationError.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs criterio.FieldErrorsBuilder

	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok
	}

	if v, ok := env("MAX_HISTORY_SIZE"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			errs = errs.Append(EnvPrefix+"MAX_HISTORY_SIZE", fmt.Errorf("not an integer: %q", v))
		} else {
			c.MaxHistorySize = n
		}
	}

	if v, ok := env("PRECISION"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			errs = errs.Append(EnvPrefix+"PRECISION", fmt.Errorf("not an integer: %q", v))
		} else {
			c.Precision = n
		}
	}

	if v, ok := env("MAX_INPUT_VALUE"); ok {
		n, err := decimal.NewFromString(v)
		if err != nil {
			errs = errs.Append(EnvPrefix+"MAX_INPUT_VALUE", fmt.Errorf("not a number: %q", v))
		} else {
			c.MaxInputValue = n
		}
	}

	if v, ok := env("AUTO_SAVE"); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			errs = errs.Append(EnvPrefix+"AUTO_SAVE", fmt.Errorf("not a boolean: %q", v))
		} else {
			c.AutoSave = b
		}
	}

	if v, ok := env("DEFAULT_ENCODING"); ok {
		c.DefaultEncoding = v
	}
	if v, ok := env("HISTORY_FORMAT"); ok {
		c.HistoryFormat = strings.ToLower(v)
	}
	if v, ok := env("HISTORY_DIR"); ok {
		c.HistoryDir = v
	}
	if v, ok := env("LOG_DIR"); ok {
		c.LogDir = v
	}

	if err := errs.ToError(); err != nil {
		return &calcerr.ConfigurationError{Err: err}
	}
	return nil
}

// applyDefaults fills unset string options. Numeric options are left alone
// so that explicit zero values fail validation.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DefaultEncoding == "" {
		c.DefaultEncoding = defaults.DefaultEncoding
	}
	if c.HistoryFormat == "" {
		c.HistoryFormat = defaults.HistoryFormat
	}
	if c.HistoryDir == "" && c.DataDir != "" {
		c.HistoryDir = filepath.Join(c.DataDir, "history")
	}
	if c.LogDir == "" && c.DataDir != "" {
		c.LogDir = filepath.Join(c.DataDir, "logs")
	}
}

// Validate checks that the configuration is valid. Failures are returned as
// a *calcerr.ConfigurationError wrapping criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.MaxHistorySize <= 0 {
		errs = errs.Append("max_history_size", errors.New("must be positive"))
	}
	if c.Precision <= 0 {
		errs = errs.Append("precision", errors.New("must be positive"))
	}
	if !c.MaxInputValue.IsPositive() {
		errs = errs.Append("max_input_value", errors.New("must be positive"))
	}
	if c.HistoryFormat != FormatCSV && c.HistoryFormat != FormatJSON {
		errs = errs.Append("history_format", fmt.Errorf("must be %q or %q, got %q", FormatCSV, FormatJSON, c.HistoryFormat))
	}
	if _, err := c.Encoding(); err != nil {
		errs = errs.Append("default_encoding", err)
	}
	if c.HistoryDir == "" {
		errs = errs.Append("history_dir", errors.New("cannot be empty"))
	}

	if err := errs.ToError(); err != nil {
		return &calcerr.ConfigurationError{Err: err}
	}
	return nil
}

// Encoding resolves DefaultEncoding to a text encoding.
func (c *Config) Encoding() (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(c.DefaultEncoding))
	if name == "utf-8" || name == "utf8" {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", c.DefaultEncoding)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", c.DefaultEncoding)
	}
	return enc, nil
}

// HistoryFile returns the path to the history file for the configured
// format.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.HistoryDir, "calculator_history."+c.HistoryFormat)
}

// LogFile returns the path to the application log file. Empty when no log
// directory is configured.
func (c *Config) LogFile() string {
	if c.LogDir == "" {
		return ""
	}
	return filepath.Join(c.LogDir, "calculator.log")
}
