package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/abacus/internal/core/operation"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(operation.NewFactory().Tokens())

	tests := []struct {
		line string
		want Input
	}{
		{"5 + 3", Input{Kind: KindCalculation, Left: "5", Operator: "+", Right: "3"}},
		{"  10/4 = ", Input{Kind: KindCalculation, Left: "10", Operator: "/", Right: "4"}},
		{"-2.5 * -4", Input{Kind: KindCalculation, Left: "-2.5", Operator: "*", Right: "-4"}},
		{"7--3", Input{Kind: KindCalculation, Left: "7", Operator: "-", Right: "-3"}},
		{"2 POW 10", Input{Kind: KindCalculation, Left: "2", Operator: "pow", Right: "10"}},
		{"27 root 3", Input{Kind: KindCalculation, Left: "27", Operator: "root", Right: "3"}},
		{"9 div 2=", Input{Kind: KindCalculation, Left: "9", Operator: "div", Right: "2"}},
		{"1 per 3", Input{Kind: KindCalculation, Left: "1", Operator: "per", Right: "3"}},
		{".5 abs 2", Input{Kind: KindCalculation, Left: ".5", Operator: "abs", Right: "2"}},
		{"10 % 3", Input{Kind: KindCalculation, Left: "10", Operator: "%", Right: "3"}},
		{"HISTORY", Input{Kind: KindCommand, Command: CmdHistory}},
		{" exit ", Input{Kind: KindCommand, Command: CmdExit}},
		{"cls", Input{Kind: KindCommand, Command: CmdCls}},
		{"", Input{Kind: KindEmpty}},
		{"   ", Input{Kind: KindEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_ParseInvalid(t *testing.T) {
	p := NewParser(operation.NewFactory().Tokens())

	for _, line := range []string{"5 +", "five + 3", "5 mod 3", "5 + 3 + 1", "histories", "5 3"} {
		t.Run(line, func(t *testing.T) {
			_, err := p.Parse(line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid input")
		})
	}
}

func TestParser_PrefersLongestOperator(t *testing.T) {
	p := NewParser([]string{"*", "**"})

	got, err := p.Parse("2 ** 3")
	require.NoError(t, err)
	assert.Equal(t, "**", got.Operator)
	assert.Equal(t, "3", got.Right)
}
