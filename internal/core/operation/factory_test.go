package operation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// doubleSum is a test operation returning 2*(a+b).
type doubleSum struct{}

func (doubleSum) Validate(a, b decimal.Decimal) error { return nil }

func (doubleSum) Execute(a, b decimal.Decimal) (string, error) {
	return a.Add(b).Mul(decimal.NewFromInt(2)).String(), nil
}

func (doubleSum) String() string { return "DoubleSum" }

func TestFactory_CreateBuiltins(t *testing.T) {
	f := NewFactory()

	tests := map[string]string{
		"+":    "Addition",
		"-":    "Subtraction",
		"*":    "Multiplication",
		"/":    "Division",
		"%":    "Modulus",
		"pow":  "Power",
		"div":  "IntegerDivision",
		"abs":  "AbsoluteDifference",
		"root": "Root",
		"per":  "Percentage",
	}

	for token, name := range tests {
		t.Run(token, func(t *testing.T) {
			op, err := f.Create(token)
			require.NoError(t, err)
			assert.Equal(t, name, op.String())
		})
	}

	assert.Len(t, f.Tokens(), len(tests))
}

func TestFactory_CreateUnknown(t *testing.T) {
	f := NewFactory()

	_, err := f.Create("unknown_op")

	var uerr *calcerr.UnknownOperationError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "unknown_op", uerr.Token)
	assert.Contains(t, err.Error(), "Unknown operation")
}

func TestFactory_Register(t *testing.T) {
	f := NewFactory()

	_, err := f.Create("dbl")
	require.Error(t, err)

	require.NoError(t, f.Register("dbl", func() Operation { return doubleSum{} }))

	op, err := f.Create("dbl")
	require.NoError(t, err)

	got, err := op.Execute(decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "10", got)
	assert.Contains(t, f.Tokens(), "dbl")
}

func TestFactory_RegisterOverwrites(t *testing.T) {
	f := NewFactory()

	require.NoError(t, f.Register("+", func() Operation { return doubleSum{} }))

	op, err := f.Create("+")
	require.NoError(t, err)
	assert.Equal(t, "DoubleSum", op.String())
}

func TestFactory_RegisterRejectsInvalid(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name  string
		token string
		ctor  Constructor
	}{
		{"empty token", "", func() Operation { return Addition{} }},
		{"nil constructor", "x", nil},
		{"constructor returns nil", "y", func() Operation { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, f.Register(tt.token, tt.ctor))
		})
	}

	assert.NotContains(t, f.Tokens(), "x")
	assert.NotContains(t, f.Tokens(), "y")
}

func TestFactory_TokensAreCaseInsensitive(t *testing.T) {
	f := NewFactory()

	require.NoError(t, f.Register("Avg", func() Operation { return doubleSum{} }))
	assert.Contains(t, f.Tokens(), "avg")
	assert.NotContains(t, f.Tokens(), "Avg")

	for _, token := range []string{"avg", "AVG", "Avg", "POW"} {
		_, err := f.Create(token)
		assert.NoError(t, err, token)
	}
}

func TestFactory_Revision(t *testing.T) {
	f := NewFactory()
	before := f.Revision()

	_, err := f.Create("+")
	require.NoError(t, err)
	assert.Equal(t, before, f.Revision(), "lookups do not change the revision")

	require.NoError(t, f.Register("dbl", func() Operation { return doubleSum{} }))
	assert.Greater(t, f.Revision(), before)

	after := f.Revision()
	require.Error(t, f.Register("", func() Operation { return doubleSum{} }))
	assert.Equal(t, after, f.Revision(), "rejected registrations do not change the revision")
}
