package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Transaction captures reversal data for a sequence of executed actions
// against one device. It is owned exclusively by the evaluation session
// that created it; rollback consumes the stack.
type Transaction struct {
	ID        string
	NodeID    string
	StartedAt time.Time

	// rollbackStack holds reversal records in execution (push) order.
	rollbackStack []RollbackData

	// originalState is an optional full-document snapshot taken before the
	// first mutation.
	originalState map[string]any
}

// NewTransaction starts a transaction with an empty rollback stack and no
// captured original state. An empty id gets a generated UUID.
func NewTransaction(id, nodeID string) *Transaction {
	if id == "" {
		id = uuid.New().String()
	}
	return &Transaction{
		ID:        id,
		NodeID:    nodeID,
		StartedAt: time.Now(),
	}
}

// AddRollback appends a reversal record in execution order.
func (t *Transaction) AddRollback(data RollbackData) {
	t.rollbackStack = append(t.rollbackStack, data)
}

// SetOriginalState stores a deep-copied full-document snapshot. It is
// idempotent to call; the last write wins.
func (t *Transaction) SetOriginalState(doc map[string]any) {
	t.originalState = deepCopyObject(doc)
}

// OriginalState returns the captured snapshot, or nil if none was taken.
func (t *Transaction) OriginalState() map[string]any {
	return t.originalState
}

// Len returns the number of reversal records on the stack.
func (t *Transaction) Len() int {
	return len(t.rollbackStack)
}

// RollbackResult reports the outcome of replaying a transaction's stack.
type RollbackResult struct {
	ActionsRolledBack int
	RollbackFailures  int
	ErrorMessages     []string
	Success           bool
}

// AddError records a rollback failure. This is the single mutation point
// that flips Success to false.
func (r *RollbackResult) AddError(msg string) {
	r.RollbackFailures++
	r.ErrorMessages = append(r.ErrorMessages, msg)
	r.Success = false
}

// RollbackExecutor undoes a transaction's actions against a context
// document.
type RollbackExecutor struct {
	reverter TemplateReverter
	logger   *slog.Logger
}

// NewRollbackExecutor creates a rollback executor. reverter may be nil;
// template rollbacks then record a failure instead of reverting.
func NewRollbackExecutor(reverter TemplateReverter, logger *slog.Logger) *RollbackExecutor {
	if logger == nil {
		logger = slog.Default().With("component", "policy.rollback")
	}
	return &RollbackExecutor{reverter: reverter, logger: logger}
}

// Rollback replays the transaction's stack in reverse (LIFO) order,
// applying each record's inverse to the context. A failed record is
// recorded and rollback continues through the remaining stack; it never
// aborts early. The transaction's stack is consumed.
func (e *RollbackExecutor) Rollback(ctx context.Context, txn *Transaction, evalCtx *EvaluationContext) *RollbackResult {
	result := &RollbackResult{Success: true}

	stack := txn.rollbackStack
	txn.rollbackStack = nil

	for i := len(stack) - 1; i >= 0; i-- {
		data := stack[i]
		if err := e.apply(ctx, data, evalCtx); err != nil {
			e.logger.Warn("rollback step failed",
				"transaction_id", txn.ID,
				"node_id", txn.NodeID,
				"kind", data.Kind,
				"error", err,
			)
			result.AddError(err.Error())
			continue
		}
		result.ActionsRolledBack++
	}

	e.logger.Info("transaction rolled back",
		"transaction_id", txn.ID,
		"node_id", txn.NodeID,
		"rolled_back", result.ActionsRolledBack,
		"failures", result.RollbackFailures,
	)

	return result
}

// apply undoes a single reversal record.
func (e *RollbackExecutor) apply(ctx context.Context, data RollbackData, evalCtx *EvaluationContext) error {
	switch data.Kind {
	case RollbackAssert:
		// Assertions never mutate; nothing to undo.
		return nil

	case RollbackSet:
		if data.Existed {
			SetNestedField(evalCtx.NodeData, data.Field, data.Previous)
			return nil
		}
		// The field did not exist before the SET: remove it. A missing
		// path here means something else already removed it; treat that
		// as done rather than failed.
		DeleteNestedField(evalCtx.NodeData, data.Field)
		return nil

	case RollbackApplyTemplate:
		if e.reverter == nil {
			return fmt.Errorf("no template reverter configured for %q", data.TemplatePath)
		}
		if err := e.reverter.Revert(ctx, data.TemplatePath, evalCtx); err != nil {
			return fmt.Errorf("template revert %q: %w", data.TemplatePath, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown rollback kind %q", data.Kind)
	}
}
