// Package repl implements the interactive read-eval-print loop.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/hay-kot/abacus/internal/calculator"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/core/operation"
	"github.com/hay-kot/abacus/internal/printer"
	"github.com/hay-kot/abacus/internal/styles"
	"github.com/hay-kot/abacus/pkg/executil"
)

const helpWrapWidth = 80

// Options configures a REPL.
type Options struct {
	In  io.Reader
	Out io.Writer
	// Interactive enables the prompt, banner and styled output. Set it when
	// In is a terminal.
	Interactive bool
	Executor    executil.Executor
}

// REPL reads calculations and commands line by line and runs them against a
// Calculator.
type REPL struct {
	calc    *calculator.Calculator
	factory *operation.Factory
	cfg     *config.Config
	log     zerolog.Logger

	in          io.Reader
	out         io.Writer
	p           *printer.Printer
	exec        executil.Executor
	interactive bool

	parser    *Parser
	parserRev uint64
}

// New creates a REPL.
func New(calc *calculator.Calculator, factory *operation.Factory, cfg *config.Config, log zerolog.Logger, opts Options) *REPL {
	exec := opts.Executor
	if exec == nil {
		exec = &executil.RealExecutor{}
	}

	return &REPL{
		calc:        calc,
		factory:     factory,
		cfg:         cfg,
		log:         log,
		in:          opts.In,
		out:         opts.Out,
		p:           printer.New(opts.Out),
		exec:        exec,
		interactive: opts.Interactive,
	}
}

// Run processes input until "exit", end of input or context cancellation.
// Errors from individual lines are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	if r.interactive {
		_, _ = fmt.Fprintln(r.out, styles.BannerStyle.Render(styles.Banner))
		_, _ = fmt.Fprintln(r.out)
	}
	r.p.Infof("Type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(r.in)
	for {
		if r.interactive {
			_, _ = fmt.Fprint(r.out, styles.PromptStyle.Render("abacus ›")+" ")
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			r.exit(ctx)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		input, err := r.currentParser().Parse(line)
		if err != nil {
			r.log.Debug().Str("line", line).Err(err).Msg("rejected input")
			r.p.Errorf("%v", err)
			continue
		}

		switch input.Kind {
		case KindEmpty:
			continue
		case KindCalculation:
			r.calculate(ctx, input)
		case KindCommand:
			if input.Command == CmdExit {
				r.exit(ctx)
				return nil
			}
			r.command(ctx, input.Command)
		}
	}
}

// currentParser returns a parser for the factory's current tokens, rebuilding
// it when operations were registered since the last line.
func (r *REPL) currentParser() *Parser {
	if rev := r.factory.Revision(); r.parser == nil || rev != r.parserRev {
		r.parser = NewParser(r.factory.Tokens())
		r.parserRev = rev
	}
	return r.parser
}

func (r *REPL) calculate(ctx context.Context, in Input) {
	op, err := r.factory.Create(in.Operator)
	if err != nil {
		r.p.Errorf("%v", err)
		return
	}

	r.calc.SetOperation(op)
	result, err := r.calc.PerformOperation(ctx, in.Left, in.Right)
	if err != nil {
		r.log.Debug().Err(err).Str("operation", op.String()).Msg("calculation failed")
		r.p.Errorf("%v", err)
		return
	}

	formatted := history.FormatResult(result, r.cfg.Precision)
	expr := fmt.Sprintf("%s %s %s", in.Left, in.Operator, in.Right)
	if r.interactive {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", styles.ExpressionStyle.Render(expr+" ="), styles.ResultStyle.Render(formatted))
		return
	}
	r.p.Printf("%s = %s", expr, formatted)
}

func (r *REPL) command(ctx context.Context, cmd string) {
	switch cmd {
	case CmdHelp:
		r.help()
	case CmdHistory:
		lines := r.calc.ShowHistory()
		if len(lines) == 0 {
			r.p.Infof("No calculations in history")
			return
		}
		r.p.Section("Calculation History")
		for i, line := range lines {
			r.p.NumberedItem(i+1, line)
		}
	case CmdUndo:
		if r.calc.Undo() {
			r.p.Successf("Operation undone")
		} else {
			r.p.Infof("Nothing to undo")
		}
	case CmdRedo:
		if r.calc.Redo() {
			r.p.Successf("Operation redone")
		} else {
			r.p.Infof("Nothing to redo")
		}
	case CmdSave:
		if err := r.calc.SaveHistory(ctx); err != nil {
			r.p.Errorf("%v", err)
			return
		}
		r.p.Successf("History saved")
	case CmdLoad:
		if err := r.calc.LoadHistory(ctx); err != nil {
			r.p.Errorf("%v", err)
			return
		}
		r.p.Successf("Loaded %d calculations", len(r.calc.History()))
	case CmdClear:
		r.calc.ClearHistory()
		r.p.Successf("History cleared")
	case CmdCls:
		if err := executil.ClearScreen(ctx, r.exec, r.out); err != nil {
			r.log.Debug().Err(err).Msg("clear screen failed")
			r.p.Errorf("clear screen: %v", err)
		}
	}
}

func (r *REPL) exit(ctx context.Context) {
	if r.calc.AutoSaveEnabled() {
		if err := r.calc.SaveHistory(ctx); err != nil {
			r.p.Warnf("Could not save history: %v", err)
		} else {
			r.p.Successf("History saved")
		}
	}
	r.p.Printf("Goodbye!")
}

func (r *REPL) help() {
	md := r.helpMarkdown()
	if !r.interactive {
		r.p.Printf("%s", md)
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("tokyo-night"),
		glamour.WithWordWrap(helpWrapWidth),
	)
	if err != nil {
		r.p.Printf("%s", md)
		return
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		r.p.Printf("%s", md)
		return
	}
	_, _ = fmt.Fprint(r.out, rendered)
}

var commandHelp = map[string]string{
	CmdHelp:    "Show this help",
	CmdHistory: "List calculation history",
	CmdUndo:    "Undo the last change to history",
	CmdRedo:    "Redo the last undone change",
	CmdSave:    "Save history to disk",
	CmdLoad:    "Load history from disk",
	CmdClear:   "Clear calculation history (undoable)",
	CmdCls:     "Clear the screen",
	CmdExit:    "Save history (when auto-save is on) and quit",
}

func (r *REPL) helpMarkdown() string {
	var b strings.Builder

	b.WriteString("# Abacus\n\n")
	b.WriteString("Enter `<number> <operator> <number>`, optionally followed by `=`.\n\n")

	b.WriteString("## Operators\n\n")
	b.WriteString("| Operator | Operation |\n|---|---|\n")
	for _, tok := range r.factory.Tokens() {
		name := ""
		if op, err := r.factory.Create(tok); err == nil {
			name = op.String()
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(tok, "|", `\|`), name)
	}

	b.WriteString("\n## Commands\n\n")
	b.WriteString("| Command | Description |\n|---|---|\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "| `%s` | %s |\n", cmd, commandHelp[cmd])
	}

	return b.String()
}
