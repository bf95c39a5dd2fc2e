package engine

import (
	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// GetNestedField resolves a dotted path inside a JSON-like document.
//
// The empty (root) path returns the document itself. Resolution that fails
// partway (a missing key, or an intermediate value that is not an object)
// reports "not found" rather than an error; only callers decide whether a
// missing field is an error condition.
func GetNestedField(doc any, path ast.FieldRef) (any, bool) {
	current := doc
	for _, segment := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetNestedField writes a value at a dotted path inside a document,
// creating intermediate objects as needed. If an intermediate value exists
// but is not an object it is replaced with a fresh object so the path can
// be completed; this coercion is deliberate, not an error.
//
// The returned previous/existed pair describes what GetNestedField would
// have reported for the same path before the write: existed is false when
// the field was absent (including when an intermediate was coerced).
// The path must be non-empty.
func SetNestedField(doc map[string]any, path ast.FieldRef, value any) (previous any, existed bool) {
	previous, existed = GetNestedField(doc, path)

	current := doc
	for _, segment := range path[:len(path)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			// Missing or non-object intermediate: coerce to a fresh object.
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	current[path[len(path)-1]] = value
	return previous, existed
}

// DeleteNestedField removes the value at a dotted path. It reports false
// when the path does not resolve to an existing field (nothing deleted).
func DeleteNestedField(doc map[string]any, path ast.FieldRef) bool {
	if len(path) == 0 {
		return false
	}
	current := doc
	for _, segment := range path[:len(path)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			return false
		}
		current = child
	}
	last := path[len(path)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
