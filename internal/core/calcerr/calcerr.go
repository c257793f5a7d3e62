// Package calcerr defines the error taxonomy shared by the calculator core.
//
// Validation and unknown-operation errors describe bad user input and are
// returned to callers unwrapped. Operation and configuration errors describe
// internal or startup failures and carry their cause.
package calcerr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-domain input, such as a zero
// divisor or an operand above the configured maximum.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf returns a *ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnknownOperationError is returned when an operator token has no registered
// operation.
type UnknownOperationError struct {
	Token string
}

func (e *UnknownOperationError) Error() string {
	return "Unknown operation: " + e.Token
}

// OperationError reports an internal or operational failure. Err, when set,
// is the underlying cause.
type OperationError struct {
	Msg string
	Err error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Operationf returns an *OperationError without a cause.
func Operationf(format string, args ...any) error {
	return &OperationError{Msg: fmt.Sprintf(format, args...)}
}

// WrapOperation wraps err as an *OperationError. Validation errors are
// returned as-is.
func WrapOperation(msg string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) {
		return err
	}
	return &OperationError{Msg: msg, Err: err}
}

// ConfigurationError reports invalid configuration detected at load time.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUnknownOperation reports whether err is, or wraps, an
// *UnknownOperationError.
func IsUnknownOperation(err error) bool {
	var u *UnknownOperationError
	return errors.As(err, &u)
}

// IsOperation reports whether err is, or wraps, an *OperationError.
func IsOperation(err error) bool {
	var o *OperationError
	return errors.As(err, &o)
}
