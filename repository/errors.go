package repository

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing caller input. It is returned
// immediately, before any manager or cache interaction, and is never wrapped
// in an OperationError.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// OperationError normalizes unexpected manager failures. The underlying
// error is preserved for errors.Is/As inspection.
type OperationError struct {
	Op     string
	Entity string
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Entity, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// IsOperationFailure reports whether err is (or wraps) an OperationError.
func IsOperationFailure(err error) bool {
	var o *OperationError
	return errors.As(err, &o)
}
