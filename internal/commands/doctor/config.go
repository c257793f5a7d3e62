package doctor

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/config"
)

// ConfigCheck runs the deep config validation and reports where history
// and logs will be written.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: configPath}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Report {
	report := Report{Name: c.Name()}

	if c.cfg == nil {
		report.add(fail("Config loaded", "configuration not loaded"))
		return report
	}

	if err := c.cfg.ValidateDeep(c.path); err != nil {
		report.add(configFailures(err)...)
	} else {
		source := c.path
		if source == "" {
			source = "defaults and CALCULATOR_* environment"
		}
		report.add(
			pass("Config valid", source),
			pass("History file", c.cfg.HistoryFile()),
		)
	}

	for _, w := range c.cfg.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		report.add(warn(label, w.Message))
	}

	return report
}

// configFailures turns a ValidateDeep error into one failure per field.
func configFailures(err error) []Finding {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		var cfgErr *calcerr.ConfigurationError
		if errors.As(err, &cfgErr) {
			err = cfgErr.Err
		}
		return []Finding{fail("validation", err.Error())}
	}

	out := make([]Finding, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		label := fe.Field
		if label == "" {
			label = "validation"
		}
		out = append(out, fail(label, fe.Err.Error()))
	}
	return out
}
