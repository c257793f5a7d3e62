// Package operation defines the arithmetic strategies the calculator can
// apply to a pair of decimal operands, and the registry that maps operator
// tokens to them.
package operation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// Validation messages shared by several operations.
const (
	MsgDivisionByZero   = "Division by zero is not allowed"
	MsgZeroRoot         = "Zero root is undefined"
	MsgRootNotInteger   = "Root degree must be an integer."
	MsgEvenRootNegative = "Cannot calculate even root of a negative number"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Operation is a binary arithmetic strategy. Implementations hold no state
// and return results as exact decimal text.
type Operation interface {
	// Execute validates the operands and returns the textual result.
	Execute(a, b decimal.Decimal) (string, error)
	// Validate returns a *calcerr.ValidationError when the operand pair is
	// invalid for this operation.
	Validate(a, b decimal.Decimal) error
	// String returns the display name recorded in history.
	String() string
}

func requireNonZeroDivisor(b decimal.Decimal) error {
	if b.IsZero() {
		return &calcerr.ValidationError{Msg: MsgDivisionByZero}
	}
	return nil
}

// Addition returns a+b.
type Addition struct{}

func (Addition) Validate(a, b decimal.Decimal) error { return nil }

func (op Addition) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Add(b).String(), nil
}

func (Addition) String() string { return "Addition" }

// Subtraction returns a-b.
type Subtraction struct{}

func (Subtraction) Validate(a, b decimal.Decimal) error { return nil }

func (op Subtraction) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Sub(b).String(), nil
}

func (Subtraction) String() string { return "Subtraction" }

// Multiplication returns a*b.
type Multiplication struct{}

func (Multiplication) Validate(a, b decimal.Decimal) error { return nil }

func (op Multiplication) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Mul(b).String(), nil
}

func (Multiplication) String() string { return "Multiplication" }

// Division returns a/b using decimal.DivisionPrecision fractional digits.
type Division struct{}

func (Division) Validate(a, b decimal.Decimal) error { return requireNonZeroDivisor(b) }

func (op Division) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Div(b).String(), nil
}

func (Division) String() string { return "Division" }

// Modulus returns the remainder of a/b. The remainder takes the sign of the
// dividend.
type Modulus struct{}

func (Modulus) Validate(a, b decimal.Decimal) error { return requireNonZeroDivisor(b) }

func (op Modulus) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Mod(b).String(), nil
}

func (Modulus) String() string { return "Modulus" }

// IntegerDivision returns floor(a/b), computed exactly.
type IntegerDivision struct{}

func (IntegerDivision) Validate(a, b decimal.Decimal) error { return requireNonZeroDivisor(b) }

func (op IntegerDivision) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}

	// QuoRem truncates toward zero and gives the remainder the sign of a.
	q, r := a.QuoRem(b, 0)
	if !r.IsZero() && r.Sign() != b.Sign() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.String(), nil
}

func (IntegerDivision) String() string { return "IntegerDivision" }

// Power returns a raised to b.
type Power struct{}

func (Power) Validate(a, b decimal.Decimal) error { return nil }

func (op Power) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}

	result, err := a.PowWithPrecision(b, int32(decimal.DivisionPrecision))
	if err != nil {
		return "", fmt.Errorf("%s pow %s: %w", a, b, err)
	}
	return result.String(), nil
}

func (Power) String() string { return "Power" }

// Root returns the b-th root of a. Roots are found in floating point and
// snapped to an exact decimal when one exists, so 27 root 3 is 3 rather
// than the nearest float.
type Root struct{}

// maxExactDegree bounds the degree for which Root looks for an exact
// decimal root.
const maxExactDegree = 64

func (Root) Validate(a, b decimal.Decimal) error {
	if b.IsZero() {
		return &calcerr.ValidationError{Msg: MsgZeroRoot}
	}
	if !b.IsInteger() {
		return &calcerr.ValidationError{Msg: MsgRootNotInteger}
	}
	if a.IsNegative() && b.Mod(two).IsZero() {
		return &calcerr.ValidationError{Msg: MsgEvenRootNegative}
	}
	return nil
}

func (op Root) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}

	x := a.Abs()
	n := b.Abs().IntPart()

	f := nthRoot(x.InexactFloat64(), n)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("root %s of %s is outside the float range", b, a)
	}

	root, exact := exactRoot(x, f, n)
	if !exact {
		root = decimal.NewFromFloat(f)
	}
	if a.IsNegative() {
		root = root.Neg()
	}

	if b.IsNegative() {
		if root.IsZero() {
			return "", fmt.Errorf("root %s of %s is undefined", b, a)
		}
		if !exact {
			return decimal.NewFromFloat(1 / root.InexactFloat64()).String(), nil
		}
		return decimal.NewFromInt(1).Div(root).String(), nil
	}

	return root.String(), nil
}

func (Root) String() string { return "Root" }

// nthRoot returns the positive n-th root of x >= 0. Square and cube roots
// use the correctly rounded math functions.
func nthRoot(x float64, n int64) float64 {
	switch n {
	case 1:
		return x
	case 2:
		return math.Sqrt(x)
	case 3:
		return math.Cbrt(x)
	default:
		return math.Pow(x, 1/float64(n))
	}
}

// exactRoot rounds the float root f to a short decimal and reports whether
// that decimal raised to n is exactly x.
func exactRoot(x decimal.Decimal, f float64, n int64) (decimal.Decimal, bool) {
	if n > maxExactDegree {
		return decimal.Zero, false
	}

	candidate := decimal.NewFromFloat(f).Round(int32(decimal.DivisionPrecision / 2))
	p := decimal.NewFromInt(1)
	for range n {
		p = p.Mul(candidate)
	}
	if !p.Equal(x) {
		return decimal.Zero, false
	}
	return candidate, true
}

// Percentage returns a as a percentage of b, rounded half-even to two
// places and suffixed with "%".
type Percentage struct{}

func (Percentage) Validate(a, b decimal.Decimal) error { return requireNonZeroDivisor(b) }

func (op Percentage) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Mul(hundred).Div(b).StringFixedBank(2) + "%", nil
}

func (Percentage) String() string { return "Percentage" }

// AbsoluteDifference returns |a-b|.
type AbsoluteDifference struct{}

func (AbsoluteDifference) Validate(a, b decimal.Decimal) error { return nil }

func (op AbsoluteDifference) Execute(a, b decimal.Decimal) (string, error) {
	if err := op.Validate(a, b); err != nil {
		return "", err
	}
	return a.Sub(b).Abs().String(), nil
}

func (AbsoluteDifference) String() string { return "AbsoluteDifference" }
