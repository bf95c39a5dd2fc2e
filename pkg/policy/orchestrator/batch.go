package orchestrator

import (
	"time"

	"driftwatch-io/driftwatch/pkg/policy/engine"
)

// EvaluationBatch groups the rules scheduled against one device snapshot.
// Batches are immutable after scheduling; the orchestrator clones the
// context before evaluation so the caller's document is never mutated.
type EvaluationBatch struct {
	BatchID   string
	NodeID    string
	Context   *engine.EvaluationContext
	Rules     []OrchestrationRule
	CreatedAt time.Time
}

// IsTimedOut reports whether the batch has been pending longer than the
// given timeout. A timed-out batch still executes at the next flush; the
// timeout marks it overdue, it never discards work.
func (b *EvaluationBatch) IsTimedOut(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return time.Since(b.CreatedAt) > timeout
}
