package engine

import (
	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// EvaluationStatus is the outcome of evaluating a rule's condition.
type EvaluationStatus string

const (
	// StatusSatisfied means the condition held and the action ran.
	StatusSatisfied EvaluationStatus = "satisfied"

	// StatusNotSatisfied means the condition did not hold; the action was
	// not executed. For compliance reporting this is "not applicable".
	StatusNotSatisfied EvaluationStatus = "not_satisfied"

	// StatusError means the condition (or the action) could not be
	// evaluated. The error is contained in this rule's result and never
	// aborts sibling rules.
	StatusError EvaluationStatus = "error"
)

// EvaluationResult describes how a rule's condition resolved.
type EvaluationResult struct {
	Status  EvaluationStatus
	Message string // Populated for StatusError
}

// ActionStatus is the outcome of executing a rule's action.
type ActionStatus string

const (
	// ActionSuccess means the action completed (assertion held, field was
	// set, template was applied).
	ActionSuccess ActionStatus = "success"

	// ActionComplianceFailure means an ASSERT found the device out of
	// compliance. This is an expected business outcome, not a system
	// fault, and front ends must render it distinctly from hard errors.
	ActionComplianceFailure ActionStatus = "compliance_failure"

	// ActionTemplateFailure means the external template renderer reported
	// a failure for an APPLY TEMPLATE action.
	ActionTemplateFailure ActionStatus = "template_failure"
)

// ActionResult describes the outcome of an executed action.
type ActionResult struct {
	Status   ActionStatus
	Message  string
	Field    string // Dotted path (assert/set)
	Expected any    // Expected value (compliance failures)
	Actual   any    // Observed value (compliance failures)
}

// RollbackKind identifies the reversal strategy for an executed action.
type RollbackKind string

const (
	// RollbackSet restores a field to its pre-mutation value.
	RollbackSet RollbackKind = "set"

	// RollbackApplyTemplate reverts an applied template (delegated).
	RollbackApplyTemplate RollbackKind = "apply_template"

	// RollbackAssert is a no-op: assertions never mutate.
	RollbackAssert RollbackKind = "assert"
)

// RollbackData is a per-action reversal record captured at execution time.
type RollbackData struct {
	Kind RollbackKind

	// Set reversal: the field written and what was there before.
	// Existed is false when the field was absent pre-mutation (including
	// when an intermediate value was coerced to an object), in which case
	// rollback removes the field instead of restoring a value.
	Field    ast.FieldRef
	Previous any
	Existed  bool

	// Template reversal.
	TemplatePath string
}

// ActionExecutionResult pairs an action outcome with its reversal record.
type ActionExecutionResult struct {
	Result   ActionResult
	Rollback *RollbackData
}

// PolicyExecutionResult is the per-rule record produced by ExecuteRule.
// It is created once per rule per evaluation and immutable afterwards.
//
// Invariant: Action is non-nil iff Evaluation.Status is StatusSatisfied.
type PolicyExecutionResult struct {
	Rule       *ast.Rule
	Evaluation EvaluationResult
	Action     *ActionExecutionResult
}

// Satisfied reports whether the rule's condition held.
func (r *PolicyExecutionResult) Satisfied() bool {
	return r.Evaluation.Status == StatusSatisfied
}

// IsError reports whether the rule failed to evaluate.
func (r *PolicyExecutionResult) IsError() bool {
	return r.Evaluation.Status == StatusError
}

// CompliancePassed reports whether the rule ran an action that completed
// successfully.
func (r *PolicyExecutionResult) CompliancePassed() bool {
	return r.Action != nil && r.Action.Result.Status == ActionSuccess
}

// ComplianceFailed reports whether the rule found the device out of
// compliance.
func (r *PolicyExecutionResult) ComplianceFailed() bool {
	return r.Action != nil && r.Action.Result.Status == ActionComplianceFailure
}
