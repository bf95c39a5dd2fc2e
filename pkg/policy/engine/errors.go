package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoRenderer indicates an APPLY TEMPLATE action ran without a
	// configured template renderer.
	ErrNoRenderer = errors.New("template renderer not configured")
)

// FieldNotFoundError indicates a condition referenced a field that does not
// exist in the evaluation context.
type FieldNotFoundError struct {
	Field string // Dotted path
}

// Error returns the error message.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %q", e.Field)
}

// TypeMismatchError indicates an operator was applied to operand types it
// does not support.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// InvalidRegexError indicates a MATCHES pattern failed to compile.
type InvalidRegexError struct {
	Pattern string
	Cause   error
}

// Error returns the error message.
func (e *InvalidRegexError) Error() string {
	return fmt.Sprintf("invalid regex pattern %q: %v", e.Pattern, e.Cause)
}

// Unwrap returns the underlying compile error.
func (e *InvalidRegexError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a rule referenced data in a way that cannot be
// evaluated (unsupported operand pairing, missing assert target, empty SET
// path).
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// EvaluationError is the general evaluation failure type for errors that
// do not fit a more specific category.
type EvaluationError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// DataStoreError indicates a datastore collaborator call failed during
// evaluation or result persistence.
type DataStoreError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *DataStoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("datastore error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("datastore error: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *DataStoreError) Unwrap() error {
	return e.Cause
}
