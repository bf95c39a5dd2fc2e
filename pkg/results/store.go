package results

import (
	"context"
	"time"

	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
)

// StoredResult is one persisted batch outcome.
type StoredResult struct {
	BatchID    string
	NodeID     string
	Summary    string
	RuleCount  int
	Satisfied  int
	Errors     int
	Duration   time.Duration
	RecordedAt time.Time

	// Results holds the full per-rule detail. Backends may store it
	// serialized; it is reconstructed on read.
	Results *orchestrator.AggregatedResult
}

// Query filters stored results.
type Query struct {
	NodeID string
	Since  time.Time
	Limit  int
}

// Store persists aggregated results. It satisfies the orchestrator's
// ResultSink interface.
type Store interface {
	StoreResult(ctx context.Context, result *orchestrator.AggregatedResult) error
	GetResult(ctx context.Context, batchID string) (*StoredResult, error)
	ListResults(ctx context.Context, q Query) ([]*StoredResult, error)
	Close() error
}
