package source

import (
	"context"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// MemorySource is an in-memory rule source for testing.
type MemorySource struct {
	rules []*ast.Rule
}

// NewMemorySource creates a source over the given rules.
func NewMemorySource(rules ...*ast.Rule) *MemorySource {
	return &MemorySource{rules: rules}
}

// Load returns the stored rules as a single synthetic file.
func (s *MemorySource) Load(_ context.Context) (*LoadResult, error) {
	rules := make([]*ast.Rule, len(s.rules))
	copy(rules, s.rules)
	return &LoadResult{
		Loaded: []PolicyFile{{Name: "memory", Rules: rules}},
	}, nil
}

// SetRules replaces the stored rules.
func (s *MemorySource) SetRules(rules []*ast.Rule) {
	s.rules = rules
}
