package operation

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		a, b string
		want string
	}{
		{"add integers", Addition{}, "5", "3", "8"},
		{"add decimals exactly", Addition{}, "0.1", "0.2", "0.3"},
		{"add negatives", Addition{}, "-5", "-3", "-8"},
		{"subtract", Subtraction{}, "5", "3", "2"},
		{"subtract below zero", Subtraction{}, "3", "5", "-2"},
		{"multiply", Multiplication{}, "2.5", "4", "10"},
		{"divide", Division{}, "10", "4", "2.5"},
		{"divide repeating", Division{}, "1", "3", "0.3333333333333333"},
		{"modulus", Modulus{}, "10", "3", "1"},
		{"modulus decimal", Modulus{}, "5.5", "2", "1.5"},
		{"modulus sign of dividend", Modulus{}, "-7", "2", "-1"},
		{"integer divide", IntegerDivision{}, "7", "2", "3"},
		{"integer divide floors negative", IntegerDivision{}, "-7", "2", "-4"},
		{"integer divide negative divisor", IntegerDivision{}, "7", "-2", "-4"},
		{"integer divide both negative", IntegerDivision{}, "-7", "-2", "3"},
		{"integer divide decimal", IntegerDivision{}, "7.5", "2", "3"},
		{"integer divide exact", IntegerDivision{}, "8", "2", "4"},
		{"power", Power{}, "2", "3", "8"},
		{"power large", Power{}, "2", "10", "1024"},
		{"power zero exponent", Power{}, "7", "0", "1"},
		{"square root", Root{}, "4", "2", "2"},
		{"percentage", Percentage{}, "1", "3", "33.33%"},
		{"percentage pads", Percentage{}, "50", "200", "25.00%"},
		{"percentage over hundred", Percentage{}, "3", "2", "150.00%"},
		{"absolute difference", AbsoluteDifference{}, "3", "10", "7"},
		{"absolute difference reversed", AbsoluteDifference{}, "10", "3", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op.Execute(d(tt.a), d(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecute_Deterministic(t *testing.T) {
	ops := []Operation{
		Addition{}, Subtraction{}, Multiplication{}, Division{}, Modulus{},
		IntegerDivision{}, Power{}, Root{}, Percentage{}, AbsoluteDifference{},
	}

	for _, op := range ops {
		t.Run(op.String(), func(t *testing.T) {
			first, err := op.Execute(d("9"), d("3"))
			require.NoError(t, err)

			for range 5 {
				again, err := op.Execute(d("9"), d("3"))
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestExecute_DivisionByZero(t *testing.T) {
	for _, op := range []Operation{Division{}, Modulus{}, IntegerDivision{}, Percentage{}} {
		t.Run(op.String(), func(t *testing.T) {
			_, err := op.Execute(d("10"), d("0"))

			var verr *calcerr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), "Division by zero is not allowed")
		})
	}
}

func TestRoot_Validation(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"zero degree", "4", "0", MsgZeroRoot},
		{"even root of negative", "-4", "2", MsgEvenRootNegative},
		{"fractional degree", "4", "2.5", MsgRootNotInteger},
		{"fractional degree checked before sign", "-4", "2.5", MsgRootNotInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Root{}.Execute(d(tt.a), d(tt.b))
			require.True(t, calcerr.IsValidation(err), "got %v", err)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestRoot_Exact(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"cube root", "27", "3", "3"},
		{"odd root of negative", "-27", "3", "-3"},
		{"negative cube degree", "8", "-3", "0.5"},
		{"negative square degree", "4", "-2", "0.5"},
		{"decimal square root", "1.21", "2", "1.1"},
		{"tenth root", "1024", "10", "2"},
		{"fifth root of negative", "-32", "5", "-2"},
		{"root of zero", "0", "5", "0"},
		{"first root", "7.25", "1", "7.25"},
		{"irrational", "2", "2", "1.4142135623730951"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Root{}.Execute(d(tt.a), d(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoot_Inexact(t *testing.T) {
	got, err := Root{}.Execute(d("10"), d("3"))
	require.NoError(t, err)

	f, err := strconv.ParseFloat(got, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.154434690031884, f, 1e-15)
}

func TestRoot_ZeroWithNegativeDegree(t *testing.T) {
	_, err := Root{}.Execute(d("0"), d("-2"))
	require.Error(t, err)
	assert.False(t, calcerr.IsValidation(err))
}

func TestPower_Undefined(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"zero to negative power", "0", "-1"},
		{"negative base fractional exponent", "-8", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Power{}.Execute(d(tt.a), d(tt.b))
			require.Error(t, err)
			assert.False(t, calcerr.IsValidation(err), "compute failures are not validation errors")
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "Addition", Addition{}.String())
	assert.Equal(t, "IntegerDivision", IntegerDivision{}.String())
	assert.Equal(t, "AbsoluteDifference", AbsoluteDifference{}.String())
}
