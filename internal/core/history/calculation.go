// Package history defines calculation history domain types and interfaces.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hay-kot/abacus/internal/core/calcerr"
)

// isoLocal parses ISO-8601 timestamps written without a zone offset.
const isoLocal = "2006-01-02T15:04:05.999999999"

// Calculation records one executed operation. It is not modified after
// creation.
type Calculation struct {
	Operation string          // display name, e.g. "Addition"
	Operand1  decimal.Decimal // first operand
	Operand2  decimal.Decimal // second operand
	Result    string          // exact textual output of the operation
	Timestamp time.Time
}

// New returns a Calculation stamped with the current time.
func New(operation string, a, b decimal.Decimal, result string) Calculation {
	return Calculation{
		Operation: operation,
		Operand1:  a,
		Operand2:  b,
		Result:    result,
		Timestamp: time.Now(),
	}
}

// Equal reports whether c and o describe the same operation, operands and
// result. Timestamps are ignored.
func (c Calculation) Equal(o Calculation) bool {
	return c.Operation == o.Operation &&
		c.Operand1.Equal(o.Operand1) &&
		c.Operand2.Equal(o.Operand2) &&
		c.Result == o.Result
}

// String returns the calculation as "(a Operation b) = result".
func (c Calculation) String() string {
	return fmt.Sprintf("(%s %s %s) = %s", c.Operand1, c.Operation, c.Operand2, c.Result)
}

// FormatResult rounds a numeric result to precision decimal places and drops
// trailing zeros. Non-numeric results such as "33.33%" are returned as-is.
func (c Calculation) FormatResult(precision int) string {
	return FormatResult(c.Result, precision)
}

// FormatResult formats a raw operation result for display. See
// Calculation.FormatResult.
func FormatResult(result string, precision int) string {
	v, err := decimal.NewFromString(result)
	if err != nil {
		return result
	}
	return v.Round(int32(precision)).String()
}

// Record is the flat, string-only form of a Calculation used by the
// persistence formats. Field order matches the CSV column order.
type Record struct {
	Operation string `json:"operation"`
	Operand1  string `json:"operand1"`
	Operand2  string `json:"operand2"`
	Result    string `json:"result"`
	Timestamp string `json:"timestamp"`
}

// Columns lists the persisted column names in order.
var Columns = []string{"operation", "operand1", "operand2", "result", "timestamp"}

// Fields returns the record values in column order.
func (r Record) Fields() []string {
	return []string{r.Operation, r.Operand1, r.Operand2, r.Result, r.Timestamp}
}

// Record converts the calculation to its serialised form.
func (c Calculation) Record() Record {
	return Record{
		Operation: c.Operation,
		Operand1:  c.Operand1.String(),
		Operand2:  c.Operand2.String(),
		Result:    c.Result,
		Timestamp: c.Timestamp.Format(time.RFC3339Nano),
	}
}

// FromRecord rebuilds a Calculation from its serialised form. The stored
// result is trusted and not recomputed.
func FromRecord(r Record) (Calculation, error) {
	invalid := func(err error) error {
		return &calcerr.OperationError{Msg: "Invalid calculation data", Err: err}
	}

	if r.Operation == "" {
		return Calculation{}, invalid(fmt.Errorf("missing operation"))
	}
	if r.Result == "" {
		return Calculation{}, invalid(fmt.Errorf("missing result"))
	}

	a, err := decimal.NewFromString(r.Operand1)
	if err != nil {
		return Calculation{}, invalid(fmt.Errorf("operand1 %q: %w", r.Operand1, err))
	}

	b, err := decimal.NewFromString(r.Operand2)
	if err != nil {
		return Calculation{}, invalid(fmt.Errorf("operand2 %q: %w", r.Operand2, err))
	}

	ts, err := parseTimestamp(r.Timestamp)
	if err != nil {
		return Calculation{}, invalid(err)
	}

	return Calculation{
		Operation: r.Operation,
		Operand1:  a,
		Operand2:  b,
		Result:    r.Result,
		Timestamp: ts,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation(isoLocal, s, time.Local); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not ISO-8601", s)
}

// MarshalJSON encodes the calculation as its Record.
func (c Calculation) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// UnmarshalJSON decodes a Record and validates it.
func (c *Calculation) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	calc, err := FromRecord(r)
	if err != nil {
		return err
	}

	*c = calc
	return nil
}
