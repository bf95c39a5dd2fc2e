package parser

import (
	"fmt"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// ParseError describes a syntax violation in DCL source text.
// Location is optional: a zero Location means the position is unknown.
type ParseError struct {
	Message  string
	Location ast.Location
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Location.IsValid() {
		return fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// errorAt constructs a ParseError at the given location.
func errorAt(loc ast.Location, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}
