package engine

import (
	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// EvaluationContext holds the JSON-like documents a rule is evaluated
// against: the device's node data and optional derived data (computed
// attributes the poller or enrichment pipeline attached).
//
// A context is owned by the evaluation call that receives it and is never
// shared mutably across concurrent evaluations of the same rule set. SET
// actions mutate NodeData in place.
type EvaluationContext struct {
	NodeData    map[string]any
	DerivedData map[string]any
}

// NewEvaluationContext creates a context over the given node data.
func NewEvaluationContext(nodeData map[string]any) *EvaluationContext {
	if nodeData == nil {
		nodeData = make(map[string]any)
	}
	return &EvaluationContext{NodeData: nodeData}
}

// Resolve looks up a field reference, trying node data first and derived
// data second. The empty (root) reference resolves to the node document.
func (c *EvaluationContext) Resolve(field ast.FieldRef) (any, bool) {
	if v, ok := GetNestedField(c.NodeData, field); ok {
		return v, true
	}
	if c.DerivedData != nil {
		if v, ok := GetNestedField(c.DerivedData, field); ok {
			return v, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the context. The orchestrator clones a
// scheduled context before evaluation so SET actions operate on a working
// copy and never on the caller's original.
func (c *EvaluationContext) Clone() *EvaluationContext {
	clone := &EvaluationContext{
		NodeData: deepCopyObject(c.NodeData),
	}
	if c.DerivedData != nil {
		clone.DerivedData = deepCopyObject(c.DerivedData)
	}
	return clone
}

// deepCopyObject deep-copies a JSON-like object.
func deepCopyObject(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue deep-copies a JSON-like value (objects and arrays copied,
// scalars shared).
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyObject(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return val
	}
}
