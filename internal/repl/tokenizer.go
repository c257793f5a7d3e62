package repl

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Commands recognised by the REPL, in help order.
const (
	CmdHelp    = "help"
	CmdHistory = "history"
	CmdUndo    = "undo"
	CmdRedo    = "redo"
	CmdSave    = "save"
	CmdLoad    = "load"
	CmdClear   = "clear"
	CmdCls     = "cls"
	CmdExit    = "exit"
)

var commands = []string{CmdHelp, CmdHistory, CmdUndo, CmdRedo, CmdSave, CmdLoad, CmdClear, CmdCls, CmdExit}

// numberPattern matches an optionally signed integer or decimal.
const numberPattern = `[-+]?(?:\d+(?:\.\d*)?|\.\d+)`

// Kind classifies a parsed input line.
type Kind int

const (
	KindEmpty Kind = iota
	KindCommand
	KindCalculation
)

// Input is one parsed line of REPL input.
type Input struct {
	Kind    Kind
	Command string // set for KindCommand

	// Set for KindCalculation.
	Left     string
	Operator string
	Right    string
}

// Parser splits input lines into commands and binary calculations.
type Parser struct {
	binary *regexp.Regexp
}

// NewParser builds a parser that accepts the given operator tokens. Longer
// tokens are tried first so that multi-character operators win over their
// prefixes.
func NewParser(tokens []string) *Parser {
	ops := slices.Clone(tokens)
	slices.SortStableFunc(ops, func(a, b string) int { return len(b) - len(a) })

	quoted := make([]string, 0, len(ops))
	for _, op := range ops {
		if op == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(op)))
	}

	pattern := fmt.Sprintf(`^(%s)\s*(%s)\s*(%s)$`, numberPattern, strings.Join(quoted, "|"), numberPattern)
	return &Parser{binary: regexp.MustCompile(pattern)}
}

// Parse classifies line. Input is case-insensitive and a trailing "=" is
// ignored.
func (p *Parser) Parse(line string) (Input, error) {
	s := strings.ToLower(strings.TrimSpace(line))
	if s == "" {
		return Input{Kind: KindEmpty}, nil
	}

	if slices.Contains(commands, s) {
		return Input{Kind: KindCommand, Command: s}, nil
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "="))

	m := p.binary.FindStringSubmatch(s)
	if m == nil {
		return Input{}, fmt.Errorf("invalid input %q: expected '<number> <operator> <number> [=]' or a command", strings.TrimSpace(line))
	}

	return Input{
		Kind:     KindCalculation,
		Left:     m[1],
		Operator: m[2],
		Right:    m[3],
	}, nil
}
