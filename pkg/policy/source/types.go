package source

import (
	"context"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// PolicyFile is one successfully loaded rule file.
type PolicyFile struct {
	// Path is the file's path as given to the loader.
	Path string

	// Name is the file's base name without the .dcl extension. Rule IDs
	// are derived from it.
	Name string

	// Rules holds the parsed rules with their assigned IDs.
	Rules []*ast.Rule
}

// LoadError records a file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying load failure.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is the outcome of a load pass: everything that parsed plus
// everything that did not. A non-empty Errors slice does not invalidate
// Loaded.
type LoadResult struct {
	Loaded []PolicyFile
	Errors []*LoadError
}

// AllRules flattens the loaded files into a single rule slice, preserving
// file order.
func (r *LoadResult) AllRules() []*ast.Rule {
	var rules []*ast.Rule
	for _, f := range r.Loaded {
		rules = append(rules, f.Rules...)
	}
	return rules
}

// Source is a rule provider. Implementations load the complete current
// rule set on each call.
type Source interface {
	Load(ctx context.Context) (*LoadResult, error)
}
