package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "abacus config validate [options]",
				Description: "Validates the configuration after file and CALCULATOR_* environment overrides, checking limits, history format, encoding and storage paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.flags.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cmd.flags.Config.Warnings()

	if cmd.format == "json" {
		return cmd.outputJSON(c, err, warnings)
	}

	return cmd.outputText(p, err, warnings)
}

func (cmd *ConfigValidateCmd) outputJSON(c *cli.Command, validationErr error, warnings []config.ValidationWarning) error {
	type fieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}

	out := struct {
		Valid    bool                       `json:"valid"`
		Config   resolvedConfig             `json:"config"`
		Errors   []fieldError               `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    validationErr == nil,
		Config:   resolve(cmd.flags.Config),
		Warnings: warnings,
	}

	for _, fe := range extractFieldErrors(validationErr) {
		out.Errors = append(out.Errors, fieldError{Field: fe.Field, Message: fe.Err.Error()})
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// resolvedConfig is the effective configuration after file, environment and
// default resolution.
type resolvedConfig struct {
	MaxHistorySize  int    `json:"max_history_size"`
	Precision       int    `json:"precision"`
	MaxInputValue   string `json:"max_input_value"`
	AutoSave        bool   `json:"auto_save"`
	DefaultEncoding string `json:"default_encoding"`
	HistoryFile     string `json:"history_file"`
	LogFile         string `json:"log_file,omitempty"`
}

func resolve(cfg *config.Config) resolvedConfig {
	return resolvedConfig{
		MaxHistorySize:  cfg.MaxHistorySize,
		Precision:       cfg.Precision,
		MaxInputValue:   cfg.MaxInputValue.String(),
		AutoSave:        cfg.AutoSave,
		DefaultEncoding: cfg.DefaultEncoding,
		HistoryFile:     cfg.HistoryFile(),
		LogFile:         cfg.LogFile(),
	}
}

// extractFieldErrors extracts field errors from a validation error.
func extractFieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var cfgErr *calcerr.ConfigurationError
	if errors.As(err, &cfgErr) {
		return criterio.FieldErrors{{Err: cfgErr.Err}}
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, validationErr error, warnings []config.ValidationWarning) error {
	fieldErrs := extractFieldErrors(validationErr)

	rc := resolve(cmd.flags.Config)
	p.Section("Effective configuration")
	p.Printf("  history file:   %s (%s)", rc.HistoryFile, rc.DefaultEncoding)
	if rc.LogFile != "" {
		p.Printf("  log file:       %s", rc.LogFile)
	}
	p.Printf("  history size:   %d", rc.MaxHistorySize)
	p.Printf("  precision:      %d", rc.Precision)
	p.Printf("  max input:      %s", rc.MaxInputValue)
	p.Printf("  auto save:      %t", rc.AutoSave)
	p.Printf("")

	if len(fieldErrs) > 0 {
		p.Section("Errors")
		for _, fe := range fieldErrs {
			field := fe.Field
			if field == "" {
				field = "config"
			}
			p.Item(printer.LevelError, field, fe.Err.Error())
		}
	}

	if len(warnings) > 0 {
		if len(fieldErrs) > 0 {
			p.Printf("")
		}
		p.Section("Warnings")
		for _, warn := range warnings {
			label := warn.Category
			if warn.Item != "" {
				label += " (" + warn.Item + ")"
			}
			p.Item(printer.LevelWarn, label, warn.Message)
		}
	}

	p.Printf("")
	if validationErr == nil {
		if len(warnings) > 0 {
			p.Successf("Configuration is valid (%d warning(s))", len(warnings))
		} else {
			p.Successf("Configuration is valid")
		}
		return nil
	}

	p.Errorf("%d error(s), %d warning(s)", len(fieldErrs), len(warnings))
	return cli.Exit("", 1)
}
