// Package engine evaluates DCL compliance rules against device data.
//
// The engine is split along the condition/action boundary:
//
//   - Condition evaluation (EvaluateCondition) is fully synchronous and
//     pure: it walks the AST against an EvaluationContext and never mutates
//     anything. It is trivially unit-testable without a runtime.
//   - Action execution (Executor.ExecuteRule) may mutate the context
//     document (SET), delegate to the external template renderer
//     (APPLY TEMPLATE), and records per-action rollback data.
//
// Per-rule evaluation failures are contained: they become an error-status
// PolicyExecutionResult for that rule and never abort evaluation of
// sibling rules. The engine never panics on rule or data content.
//
// Transactions (Transaction, RollbackExecutor) capture reversal data for
// executed actions and can undo a sequence of mutations in LIFO order with
// partial-failure semantics.
package engine
