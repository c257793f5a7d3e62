// Package printer writes colored status lines and error boxes for the CLI
// and REPL. A Printer travels with the command context.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
)

// Level selects the color and symbol of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

var marks = [...]struct{ color, symbol string }{
	LevelInfo:    {ColorGray, Dot},
	LevelSuccess: {ColorGreen, Check},
	LevelWarn:    {ColorYellow, Dot},
	LevelError:   {ColorRed, Cross},
}

type ctxKey struct{}

// Printer handles formatted output with colors and styles
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) writeln(s string) {
	_, _ = io.WriteString(p.w, s+"\n")
}

func paint(color, text string) string {
	return color + text + ColorReset
}

// Line prints a message prefixed with the level's symbol, all in the
// level's color.
func (p *Printer) Line(level Level, format string, args ...any) {
	m := marks[level]
	p.writeln(paint(m.color, m.symbol+" "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Errorf(format string, args ...any)   { p.Line(LevelError, format, args...) }
func (p *Printer) Successf(format string, args ...any) { p.Line(LevelSuccess, format, args...) }
func (p *Printer) Infof(format string, args ...any)    { p.Line(LevelInfo, format, args...) }
func (p *Printer) Warnf(format string, args ...any)    { p.Line(LevelWarn, format, args...) }

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.writeln(fmt.Sprintf(format, args...))
}

// Section prints a bold, underlined heading.
func (p *Printer) Section(title string) {
	p.writeln(ColorBold + ColorUnderline + title + ColorReset)
}

// Item prints an indented "symbol label: detail" entry. Only the symbol is
// colored.
func (p *Printer) Item(level Level, label, detail string) {
	m := marks[level]
	line := "  " + paint(m.color, m.symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.writeln(line)
}

// NumberedItem prints a list entry prefixed with its 1-based position.
func (p *Printer) NumberedItem(n int, text string) {
	p.writeln("  " + paint(ColorGray, fmt.Sprintf("%3d.", n)) + " " + text)
}

// FatalError prints err in a box. It does not exit.
//
// Config errors carrying criterio.FieldErrors list one line per field.
// Rejected operands and unknown operators are titled "Invalid Input".
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.box("Validation Error", fieldLines(err, fieldErrs))
		return
	}

	title := "Error"
	if calcerr.IsValidation(err) || calcerr.IsUnknownOperation(err) {
		title = "Invalid Input"
	}
	p.box(title, []string{paint(ColorGray, err.Error())})
}

// fieldLines renders one line per field error, preceded by whatever context
// wraps the field errors in err ("load config: ...").
func fieldLines(err error, fieldErrs criterio.FieldErrors) []string {
	var lines []string

	full, fields := err.Error(), fieldErrs.Error()
	if idx := strings.Index(full, fields); idx > 0 {
		lines = append(lines, paint(ColorGray, strings.TrimSuffix(full[:idx], ": ")), "")
	}

	for _, fe := range fieldErrs {
		line := paint(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += paint(ColorGray, fe.Field+": ")
		}
		lines = append(lines, line+fe.Err.Error())
	}
	return lines
}

func (p *Printer) box(title string, body []string) {
	p.writeln(paint(ColorRed, "╭ "+title))
	for _, line := range body {
		if line == "" {
			p.writeln(paint(ColorRed, "│"))
			continue
		}
		p.writeln(paint(ColorRed, "│") + " " + line)
	}
	p.writeln(paint(ColorRed, "╵"))
}
