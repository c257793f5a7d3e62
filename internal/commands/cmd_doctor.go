package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/abacus/internal/commands/doctor"
	"github.com/hay-kot/abacus/internal/printer"
)

type DoctorCmd struct {
	flags  *Flags
	format string
	fix    bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your abacus setup",
		UsageText:   "abacus doctor [options]",
		Description: "Runs diagnostic checks on the configuration and the saved history file.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "fix",
				Usage:       "remove stale temp files and trim an oversized saved history",
				Destination: &cmd.fix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	maxEntries := 0
	if cmd.flags.Config != nil {
		maxEntries = cmd.flags.Config.MaxHistorySize
	}

	reports := doctor.RunAll(ctx,
		doctor.NewConfigCheck(cmd.flags.Config, cmd.flags.ConfigPath),
		doctor.NewHistoryCheck(cmd.flags.Store, maxEntries, cmd.fix),
	)

	if cmd.format == "json" {
		return cmd.outputJSON(c, reports)
	}

	return cmd.outputText(ctx, reports)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, reports []doctor.Report) error {
	tally := doctor.Count(reports)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Report `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  reports,
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var statusLevels = map[doctor.Status]printer.Level{
	doctor.StatusPass: printer.LevelSuccess,
	doctor.StatusWarn: printer.LevelWarn,
	doctor.StatusFail: printer.LevelError,
}

func (cmd *DoctorCmd) outputText(ctx context.Context, reports []doctor.Report) error {
	p := printer.Ctx(ctx)

	for _, report := range reports {
		p.Section(report.Name)
		for _, f := range report.Findings {
			p.Item(statusLevels[f.Status], f.Label, f.Detail)
		}
		p.Printf("")
	}

	tally := doctor.Count(reports)
	p.Printf("Summary: %d passed, %d warnings, %d failed", tally.Passed, tally.Warned, tally.Failed)

	if pending := doctor.Pending(reports); len(pending) > 0 {
		p.Infof("Run 'abacus doctor --fix' to fix %d issue(s)", len(pending))
	}

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
