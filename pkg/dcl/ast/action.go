package ast

import "fmt"

// ActionType represents the type of action in a DCL rule. Actions define
// what the platform does when a rule's condition is satisfied.
type ActionType string

const (
	ActionTypeAssert        ActionType = "assert"         // Read-only compliance check
	ActionTypeSet           ActionType = "set"            // Mutate a field in the context document
	ActionTypeApplyTemplate ActionType = "apply_template" // Delegate to the template renderer
)

// Action represents an action node in the AST.
type Action struct {
	Type         ActionType
	Field        FieldRef // Target field (assert, set)
	Value        *Value   // Expected value (assert) or new value (set)
	TemplatePath string   // Template path (apply_template)
	Location     Location // Source location
}

// Assert constructs a read-only assertion action.
func Assert(field FieldRef, expected *Value) *Action {
	return &Action{Type: ActionTypeAssert, Field: field, Value: expected}
}

// Set constructs a field mutation action.
func Set(field FieldRef, value *Value) *Action {
	return &Action{Type: ActionTypeSet, Field: field, Value: value}
}

// ApplyTemplate constructs a template application action.
func ApplyTemplate(path string) *Action {
	return &Action{Type: ActionTypeApplyTemplate, TemplatePath: path}
}

// Mutates reports whether the action modifies the context document.
// Assertions are always read-only.
func (a *Action) Mutates() bool {
	return a.Type != ActionTypeAssert
}

// Equal reports structural equality between two actions, ignoring location.
func (a *Action) Equal(other *Action) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.Type != other.Type {
		return false
	}
	switch a.Type {
	case ActionTypeAssert, ActionTypeSet:
		return a.Field.Equal(other.Field) && a.Value.Equal(other.Value)
	case ActionTypeApplyTemplate:
		return a.TemplatePath == other.TemplatePath
	default:
		return false
	}
}

// String returns a DCL-syntax rendering of the action.
func (a *Action) String() string {
	switch a.Type {
	case ActionTypeAssert:
		return fmt.Sprintf("ASSERT %s IS %s", a.Field, a.Value)
	case ActionTypeSet:
		return fmt.Sprintf("SET %s TO %s", a.Field, a.Value)
	case ActionTypeApplyTemplate:
		return fmt.Sprintf("APPLY TEMPLATE %q", a.TemplatePath)
	default:
		return fmt.Sprintf("<%s>", a.Type)
	}
}
