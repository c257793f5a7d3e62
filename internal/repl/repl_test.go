package repl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/abacus/internal/calculator"
	"github.com/hay-kot/abacus/internal/core/config"
	"github.com/hay-kot/abacus/internal/core/history"
	"github.com/hay-kot/abacus/internal/core/operation"
	"github.com/hay-kot/abacus/internal/store/csvfile"
	"github.com/hay-kot/abacus/pkg/executil"
)

type session struct {
	repl    *REPL
	calc    *calculator.Calculator
	out     *bytes.Buffer
	exec    *executil.RecordingExecutor
	store   *csvfile.HistoryStore
	factory *operation.Factory
}

func newSession(t *testing.T, input string, autoSave bool) *session {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.AutoSave = autoSave
	cfg.Precision = 4

	store := csvfile.NewHistoryStore(filepath.Join(t.TempDir(), "calculator_history.csv"), nil)
	calc := calculator.New(&cfg, store, zerolog.Nop())
	calc.AddObserver(calculator.NewAutoSaveObserver(calc))

	var out bytes.Buffer
	rec := &executil.RecordingExecutor{}

	factory := operation.NewFactory()
	r := New(calc, factory, &cfg, zerolog.Nop(), Options{
		In:       strings.NewReader(input),
		Out:      &out,
		Executor: rec,
	})

	return &session{repl: r, calc: calc, out: &out, exec: rec, store: store, factory: factory}
}

func TestREPL_Transcript(t *testing.T) {
	s := newSession(t, strings.Join([]string{
		"5 + 3",
		"10 / 4 =",
		"undo",
		"redo",
		"history",
		"exit",
		"7 * 7",
	}, "\n"), false)

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "5 + 3 = 8")
	assert.Contains(t, out, "10 / 4 = 2.5")
	assert.Contains(t, out, "Operation undone")
	assert.Contains(t, out, "Operation redone")
	assert.Contains(t, out, "Calculation History")
	assert.Contains(t, out, "Addition(5, 3) = 8")
	assert.Contains(t, out, "Division(10, 4) = 2.5")
	assert.Contains(t, out, "Goodbye!")
	assert.NotContains(t, out, "7 * 7", "input after exit is ignored")
	assert.NotContains(t, out, "History saved", "auto-save disabled")

	assert.Len(t, s.calc.History(), 2)
}

func TestREPL_ErrorsDoNotStopLoop(t *testing.T) {
	s := newSession(t, "5 / 0\nfoo\n4 root 2\n", false)

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, operation.MsgDivisionByZero)
	assert.Contains(t, out, "invalid input")
	assert.Contains(t, out, "4 root 2 = 2")
	assert.Contains(t, out, "Goodbye!", "EOF exits cleanly")
}

func TestREPL_NothingToUndo(t *testing.T) {
	s := newSession(t, "undo\nredo\nhistory\n", false)

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Nothing to undo")
	assert.Contains(t, out, "Nothing to redo")
	assert.Contains(t, out, "No calculations in history")
}

func TestREPL_ClearAndCls(t *testing.T) {
	s := newSession(t, "2 pow 8\nclear\ncls\n", false)

	require.NoError(t, s.repl.Run(context.Background()))

	assert.Contains(t, s.out.String(), "History cleared")
	assert.Empty(t, s.calc.History())

	calls := s.exec.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, []string{"clear", "cmd /c cls"}, calls[0])
}

func TestREPL_SaveAndLoad(t *testing.T) {
	s := newSession(t, "1 per 3\nsave\nclear\nload\nhistory\n", false)

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "1 per 3 = 33.33%")
	assert.Contains(t, out, "History saved")
	assert.Contains(t, out, "Loaded 1 calculations")
	assert.Contains(t, out, "Percentage(1, 3) = 33.33%")
}

func TestREPL_AutoSaveOnExit(t *testing.T) {
	s := newSession(t, "9 div 2\nexit\n", true)

	require.NoError(t, s.repl.Run(context.Background()))
	assert.Contains(t, s.out.String(), "History saved")

	saved, err := s.store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "IntegerDivision", saved[0].Operation)
	assert.Equal(t, "4", saved[0].Result)
}

func TestREPL_UnreadableHistoryNotOverwrittenOnExit(t *testing.T) {
	s := newSession(t, "load\n3 + 4\nexit\n", true)

	corrupt := []byte("not,a,history\n1,2,3\n")
	require.NoError(t, os.WriteFile(s.store.Path(), corrupt, 0o644))

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "Invalid calculation data")
	assert.Contains(t, out, "3 + 4 = 7")
	assert.NotContains(t, out, "History saved")

	data, err := os.ReadFile(s.store.Path())
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)
}

// averageOp is registered while the REPL is running.
type averageOp struct{}

func (averageOp) Validate(a, b decimal.Decimal) error { return nil }

func (averageOp) Execute(a, b decimal.Decimal) (string, error) {
	return a.Add(b).Div(decimal.NewFromInt(2)).String(), nil
}

func (averageOp) String() string { return "Average" }

// registerOnFirst registers "Avg" the first time a calculation is recorded.
type registerOnFirst struct {
	factory *operation.Factory
}

func (o *registerOnFirst) Update(_ context.Context, _ history.Calculation) error {
	return o.factory.Register("Avg", func() operation.Operation { return averageOp{} })
}

func TestREPL_OperationRegisteredWhileRunning(t *testing.T) {
	s := newSession(t, "1 + 1\n4 AVG 6\n", false)
	s.calc.AddObserver(&registerOnFirst{factory: s.factory})

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "1 + 1 = 2")
	assert.Contains(t, out, "4 avg 6 = 5")

	h := s.calc.History()
	require.Len(t, h, 2)
	assert.Equal(t, "Average", h[1].Operation)
}

func TestREPL_Help(t *testing.T) {
	s := newSession(t, "help\n", false)

	require.NoError(t, s.repl.Run(context.Background()))

	out := s.out.String()
	assert.Contains(t, out, "| `root` | Root |")
	assert.Contains(t, out, "| `cls` | Clear the screen |")
}

func TestREPL_PrecisionFormatting(t *testing.T) {
	s := newSession(t, "1 / 3\n", false)

	require.NoError(t, s.repl.Run(context.Background()))
	assert.Contains(t, s.out.String(), "1 / 3 = 0.3333")

	h := s.calc.History()
	require.Len(t, h, 1)
	assert.Equal(t, "0.3333333333333333", h[0].Result, "history keeps the full result")
}
