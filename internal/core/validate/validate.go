// Package validate converts raw user input into calculator operands.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/hay-kot/abacus/internal/core/calcerr"
	"github.com/hay-kot/abacus/internal/core/config"
)

// Number parses raw as an exact decimal and checks it against the configured
// maximum. Strings are trimmed before parsing. Any failure is a
// *calcerr.ValidationError.
func Number(raw any, cfg *config.Config) (decimal.Decimal, error) {
	n, err := toDecimal(raw)
	if err != nil {
		return decimal.Decimal{}, calcerr.Validationf("Invalid number format: %v", raw)
	}

	if cfg != nil && n.Abs().GreaterThan(cfg.MaxInputValue) {
		return decimal.Decimal{}, calcerr.Validationf("Value exceeds maximum allowed: %s", cfg.MaxInputValue)
	}

	return n, nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("nil decimal")
		}
		return *v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case nil:
		return decimal.Decimal{}, fmt.Errorf("missing value")
	}

	// Remaining scalar kinds (uint8, json.Number, ...) go through cast,
	// which also rejects non-numeric types.
	s, err := cast.ToStringE(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("not a finite number")
	}
	return decimal.NewFromFloat(f), nil
}
