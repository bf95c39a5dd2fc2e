package engine

import (
	"fmt"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// EvaluateCondition walks a condition tree against an evaluation context
// and reports whether it is satisfied. It is pure: neither the condition
// nor the context is modified.
//
// AND/OR do not short-circuit: both branches are always evaluated so a
// branch that cannot be evaluated surfaces its error regardless of the
// sibling's outcome.
func EvaluateCondition(cond *ast.Condition, evalCtx *EvaluationContext) (bool, error) {
	if cond == nil {
		return false, &EvaluationError{Message: "nil condition"}
	}

	switch cond.Type {
	case ast.ConditionTypeTrue:
		return true, nil

	case ast.ConditionTypeFalse:
		return false, nil

	case ast.ConditionTypeAnd:
		left, err := EvaluateCondition(cond.Left, evalCtx)
		if err != nil {
			return false, err
		}
		right, err := EvaluateCondition(cond.Right, evalCtx)
		if err != nil {
			return false, err
		}
		return left && right, nil

	case ast.ConditionTypeOr:
		left, err := EvaluateCondition(cond.Left, evalCtx)
		if err != nil {
			return false, err
		}
		right, err := EvaluateCondition(cond.Right, evalCtx)
		if err != nil {
			return false, err
		}
		return left || right, nil

	case ast.ConditionTypeNot:
		inner, err := EvaluateCondition(cond.Child, evalCtx)
		if err != nil {
			return false, err
		}
		return !inner, nil

	case ast.ConditionTypeComparison:
		return evaluateComparison(cond, evalCtx)

	default:
		return false, &EvaluationError{Message: fmt.Sprintf("unknown condition type %q", cond.Type)}
	}
}

// evaluateComparison resolves the field and operand of a comparison and
// dispatches on the operator. A top-level field that does not resolve is a
// FieldNotFoundError; resolution failing partway inside GetNestedField is
// already folded into "not found" by the traversal itself.
func evaluateComparison(cond *ast.Condition, evalCtx *EvaluationContext) (bool, error) {
	actual, ok := evalCtx.Resolve(cond.Field)
	if !ok {
		return false, &FieldNotFoundError{Field: cond.Field.String()}
	}

	switch cond.Operator {
	case ast.OperatorEqual, ast.OperatorNotEqual:
		expected, err := resolveOperand(cond.Value, evalCtx)
		if err != nil {
			return false, err
		}
		equal := equalValues(actual, expected)
		if cond.Operator == ast.OperatorNotEqual {
			return !equal, nil
		}
		return equal, nil

	case ast.OperatorLessThan:
		return orderingOperand(cond, actual, evalCtx, func(c int) bool { return c < 0 })
	case ast.OperatorLessEqual:
		return orderingOperand(cond, actual, evalCtx, func(c int) bool { return c <= 0 })
	case ast.OperatorGreaterThan:
		return orderingOperand(cond, actual, evalCtx, func(c int) bool { return c > 0 })
	case ast.OperatorGreaterEqual:
		return orderingOperand(cond, actual, evalCtx, func(c int) bool { return c >= 0 })

	case ast.OperatorContains:
		expected, err := resolveOperand(cond.Value, evalCtx)
		if err != nil {
			return false, err
		}
		return evaluateContains(actual, expected)

	case ast.OperatorMatches:
		pattern, err := patternOperand(cond.Value, evalCtx)
		if err != nil {
			return false, err
		}
		return evaluateMatches(actual, pattern)

	default:
		return false, &EvaluationError{Message: fmt.Sprintf("unknown operator %q", cond.Operator)}
	}
}

// orderingOperand resolves the right-hand operand and applies an ordering
// comparison.
func orderingOperand(cond *ast.Condition, actual any, evalCtx *EvaluationContext, op func(int) bool) (bool, error) {
	expected, err := resolveOperand(cond.Value, evalCtx)
	if err != nil {
		return false, err
	}
	return compareOrdering(op, actual, expected)
}

// resolveOperand converts a value node into a plain JSON-like value,
// resolving late-bound field references against the context with the same
// traversal used for condition fields.
func resolveOperand(v *ast.Value, evalCtx *EvaluationContext) (any, error) {
	if v == nil {
		return nil, &EvaluationError{Message: "nil value operand"}
	}
	switch v.Type {
	case ast.ValueTypeString:
		return v.Str, nil
	case ast.ValueTypeNumber:
		return v.Num, nil
	case ast.ValueTypeBoolean:
		return v.Bool, nil
	case ast.ValueTypeNull:
		return nil, nil
	case ast.ValueTypeRegex:
		// A regex used as a plain operand behaves as its pattern text.
		return v.Str, nil
	case ast.ValueTypeFieldRef:
		resolved, ok := evalCtx.Resolve(v.Field)
		if !ok {
			return nil, &FieldNotFoundError{Field: v.Field.String()}
		}
		return resolved, nil
	default:
		return nil, &EvaluationError{Message: fmt.Sprintf("unknown value type %q", v.Type)}
	}
}

// patternOperand extracts the regex pattern for MATCHES: a regex literal,
// a string literal, or a field reference resolving to a string.
func patternOperand(v *ast.Value, evalCtx *EvaluationContext) (string, error) {
	resolved, err := resolveOperand(v, evalCtx)
	if err != nil {
		return "", err
	}
	pattern, ok := resolved.(string)
	if !ok {
		return "", &ValidationError{
			Message: fmt.Sprintf("MATCHES requires a string pattern, got %s", typeName(resolved)),
		}
	}
	return pattern, nil
}
