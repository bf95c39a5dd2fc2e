package ast

import "fmt"

// Location records where an AST node appeared in its source text.
// Line and column are 1-based; a zero Location means "unknown".
type Location struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// String returns a human-readable "line:column" form.
func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsValid reports whether the location carries real position information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
