package ast

import "fmt"

// ConditionType represents the type of condition expression in DCL.
type ConditionType string

const (
	ConditionTypeTrue       ConditionType = "true"       // Always satisfied
	ConditionTypeFalse      ConditionType = "false"      // Never satisfied
	ConditionTypeComparison ConditionType = "comparison" // field op value
	ConditionTypeAnd        ConditionType = "and"        // Left AND Right
	ConditionTypeOr         ConditionType = "or"         // Left OR Right
	ConditionTypeNot        ConditionType = "not"        // NOT Child
)

// Operator represents a comparison operator in DCL conditions.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterThan  Operator = ">"
	OperatorGreaterEqual Operator = ">="
	OperatorContains     Operator = "CONTAINS"
	OperatorMatches      Operator = "MATCHES" // Regex match
)

// IsOrdering reports whether the operator is an ordering comparison.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorLessThan, OperatorLessEqual, OperatorGreaterThan, OperatorGreaterEqual:
		return true
	}
	return false
}

// Condition represents a condition expression in the AST. Conditions are
// purely structural: AND/OR are binary nodes (Left/Right), NOT is unary
// (Child), and chained `a AND b AND c` folds left-associatively into nested
// binary nodes.
type Condition struct {
	Type     ConditionType
	Field    FieldRef  // Field being compared (comparison only)
	Operator Operator  // Comparison operator (comparison only)
	Value    *Value    // Comparison operand (comparison only)
	Left     *Condition // Left operand (and/or)
	Right    *Condition // Right operand (and/or)
	Child    *Condition // Negated condition (not)
	Location Location   // Source location
}

// True returns the trivially satisfied condition.
func True() *Condition { return &Condition{Type: ConditionTypeTrue} }

// False returns the never-satisfied condition.
func False() *Condition { return &Condition{Type: ConditionTypeFalse} }

// Comparison constructs a field/operator/value comparison condition.
func Comparison(field FieldRef, op Operator, value *Value) *Condition {
	return &Condition{Type: ConditionTypeComparison, Field: field, Operator: op, Value: value}
}

// And constructs the conjunction of two conditions.
func And(left, right *Condition) *Condition {
	return &Condition{Type: ConditionTypeAnd, Left: left, Right: right}
}

// Or constructs the disjunction of two conditions.
func Or(left, right *Condition) *Condition {
	return &Condition{Type: ConditionTypeOr, Left: left, Right: right}
}

// Not constructs the negation of a condition.
func Not(child *Condition) *Condition {
	return &Condition{Type: ConditionTypeNot, Child: child}
}

// IsComparison reports whether this is a simple comparison condition.
func (c *Condition) IsComparison() bool {
	return c.Type == ConditionTypeComparison
}

// IsLogical reports whether this is a logical operator node (and/or/not).
func (c *Condition) IsLogical() bool {
	return c.Type == ConditionTypeAnd || c.Type == ConditionTypeOr || c.Type == ConditionTypeNot
}

// Equal reports structural equality between two conditions, ignoring location.
func (c *Condition) Equal(other *Condition) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Type != other.Type {
		return false
	}
	switch c.Type {
	case ConditionTypeTrue, ConditionTypeFalse:
		return true
	case ConditionTypeComparison:
		return c.Field.Equal(other.Field) && c.Operator == other.Operator && c.Value.Equal(other.Value)
	case ConditionTypeAnd, ConditionTypeOr:
		return c.Left.Equal(other.Left) && c.Right.Equal(other.Right)
	case ConditionTypeNot:
		return c.Child.Equal(other.Child)
	default:
		return false
	}
}

// String returns a DCL-syntax rendering of the condition.
func (c *Condition) String() string {
	switch c.Type {
	case ConditionTypeTrue:
		return "true"
	case ConditionTypeFalse:
		return "false"
	case ConditionTypeComparison:
		return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
	case ConditionTypeAnd:
		return fmt.Sprintf("(%s AND %s)", c.Left, c.Right)
	case ConditionTypeOr:
		return fmt.Sprintf("(%s OR %s)", c.Left, c.Right)
	case ConditionTypeNot:
		return fmt.Sprintf("NOT %s", c.Child)
	default:
		return fmt.Sprintf("<%s>", c.Type)
	}
}
