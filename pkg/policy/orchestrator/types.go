package orchestrator

import (
	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// Priority controls execution order of rules within a batch. Higher
// priorities run first.
type Priority int

// PriorityMedium is the zero value, so a rule built without explicit
// scheduling metadata runs at medium priority.
const (
	PriorityLow Priority = iota - 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParsePriority parses a priority name. Unknown names (and the empty
// string) default to PriorityMedium.
func ParsePriority(s string) Priority {
	switch s {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// OrchestrationRule wraps a parsed rule with scheduling metadata.
//
// Priority orders rules within a batch (critical first). Order breaks ties
// between rules of the same priority: lower Order runs earlier, so a
// rule's position in its source file is a natural default.
type OrchestrationRule struct {
	Rule     *ast.Rule
	Priority Priority
	Order    int
	Tags     []string
}
