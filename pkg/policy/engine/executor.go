package engine

import (
	"context"
	"fmt"
	"log/slog"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// TemplateRenderer is the external collaborator that applies configuration
// templates to a device context. Rendering internals are out of scope for
// the policy engine; renderer I/O must carry its own timeout via ctx.
type TemplateRenderer interface {
	// Render applies the template at templatePath to the evaluation
	// context. Mutations it performs are its own responsibility.
	Render(ctx context.Context, templatePath string, evalCtx *EvaluationContext) error
}

// TemplateReverter is the optional inverse collaborator used during
// rollback of APPLY TEMPLATE actions.
type TemplateReverter interface {
	Revert(ctx context.Context, templatePath string, evalCtx *EvaluationContext) error
}

// Executor runs a rule's condition and, when satisfied, its action.
type Executor struct {
	renderer TemplateRenderer
	logger   *slog.Logger
}

// NewExecutor creates an action executor. renderer may be nil when no
// template collaborator is wired; APPLY TEMPLATE then fails as an
// evaluation error rather than panicking.
func NewExecutor(renderer TemplateRenderer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default().With("component", "policy.engine")
	}
	return &Executor{renderer: renderer, logger: logger}
}

// ExecuteRule evaluates a rule's condition and executes its action when
// satisfied, producing exactly one PolicyExecutionResult. All failure
// paths become a StatusError result or an ActionResult variant; ExecuteRule
// never panics on rule or data content.
func (e *Executor) ExecuteRule(ctx context.Context, rule *ast.Rule, evalCtx *EvaluationContext) *PolicyExecutionResult {
	result := &PolicyExecutionResult{Rule: rule}

	if rule == nil {
		result.Evaluation = EvaluationResult{Status: StatusError, Message: "nil rule"}
		return result
	}

	satisfied, err := EvaluateCondition(rule.Condition, evalCtx)
	if err != nil {
		e.logger.Debug("condition evaluation failed",
			"rule_id", rule.ID,
			"error", err,
		)
		result.Evaluation = EvaluationResult{Status: StatusError, Message: err.Error()}
		return result
	}

	if !satisfied {
		result.Evaluation = EvaluationResult{Status: StatusNotSatisfied}
		return result
	}

	actionResult, err := e.executeAction(ctx, rule.Action, evalCtx)
	if err != nil {
		// Action-level hard errors degrade the whole rule result; the
		// Action stays nil so the satisfied-iff-action invariant holds.
		e.logger.Debug("action execution failed",
			"rule_id", rule.ID,
			"error", err,
		)
		result.Evaluation = EvaluationResult{Status: StatusError, Message: err.Error()}
		return result
	}

	result.Evaluation = EvaluationResult{Status: StatusSatisfied}
	result.Action = actionResult
	return result
}

// executeAction dispatches on the action type.
func (e *Executor) executeAction(ctx context.Context, action *ast.Action, evalCtx *EvaluationContext) (*ActionExecutionResult, error) {
	if action == nil {
		return nil, &EvaluationError{Message: "nil action"}
	}

	switch action.Type {
	case ast.ActionTypeAssert:
		return e.executeAssert(action, evalCtx)
	case ast.ActionTypeSet:
		return e.executeSet(action, evalCtx)
	case ast.ActionTypeApplyTemplate:
		return e.executeApplyTemplate(ctx, action, evalCtx)
	default:
		return nil, &EvaluationError{Message: fmt.Sprintf("unknown action type %q", action.Type)}
	}
}

// executeAssert checks a field against an expected value without mutating
// anything. A missing field is a validation error with the action-side
// message shape ("Field not found: ..."), which is a different surface
// than the condition-side FieldNotFoundError.
func (e *Executor) executeAssert(action *ast.Action, evalCtx *EvaluationContext) (*ActionExecutionResult, error) {
	actual, ok := evalCtx.Resolve(action.Field)
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("Field not found: %s", action.Field)}
	}

	expected, err := resolveOperand(action.Value, evalCtx)
	if err != nil {
		return nil, err
	}

	rollback := &RollbackData{Kind: RollbackAssert}

	if equalValues(actual, expected) {
		return &ActionExecutionResult{
			Result: ActionResult{
				Status:  ActionSuccess,
				Message: fmt.Sprintf("field %s matches expected value", action.Field),
				Field:   action.Field.String(),
			},
			Rollback: rollback,
		}, nil
	}

	return &ActionExecutionResult{
		Result: ActionResult{
			Status:   ActionComplianceFailure,
			Message:  fmt.Sprintf("field %s expected %v, got %v", action.Field, expected, actual),
			Field:    action.Field.String(),
			Expected: expected,
			Actual:   actual,
		},
		Rollback: rollback,
	}, nil
}

// executeSet writes a value into the context document, capturing the
// pre-mutation value as rollback data before writing. Once the path is
// non-empty the mutation always succeeds: missing or non-object
// intermediates are created or coerced.
func (e *Executor) executeSet(action *ast.Action, evalCtx *EvaluationContext) (*ActionExecutionResult, error) {
	if action.Field.IsRoot() {
		return nil, &ValidationError{Message: "Field path cannot be empty"}
	}

	value, err := resolveOperand(action.Value, evalCtx)
	if err != nil {
		return nil, err
	}

	previous, existed := SetNestedField(evalCtx.NodeData, action.Field, value)

	return &ActionExecutionResult{
		Result: ActionResult{
			Status:  ActionSuccess,
			Message: fmt.Sprintf("set field %s", action.Field),
			Field:   action.Field.String(),
		},
		Rollback: &RollbackData{
			Kind:     RollbackSet,
			Field:    action.Field,
			Previous: previous,
			Existed:  existed,
		},
	}, nil
}

// executeApplyTemplate delegates to the external template renderer.
// Renderer failures are an ActionResult variant, not a rule error: the
// rule was satisfied and the action ran, it just didn't succeed.
func (e *Executor) executeApplyTemplate(ctx context.Context, action *ast.Action, evalCtx *EvaluationContext) (*ActionExecutionResult, error) {
	if e.renderer == nil {
		return nil, &EvaluationError{Message: ErrNoRenderer.Error()}
	}

	if err := e.renderer.Render(ctx, action.TemplatePath, evalCtx); err != nil {
		return &ActionExecutionResult{
			Result: ActionResult{
				Status:  ActionTemplateFailure,
				Message: fmt.Sprintf("template %q failed: %v", action.TemplatePath, err),
			},
		}, nil
	}

	return &ActionExecutionResult{
		Result: ActionResult{
			Status:  ActionSuccess,
			Message: fmt.Sprintf("applied template %q", action.TemplatePath),
		},
		Rollback: &RollbackData{
			Kind:         RollbackApplyTemplate,
			TemplatePath: action.TemplatePath,
		},
	}, nil
}
