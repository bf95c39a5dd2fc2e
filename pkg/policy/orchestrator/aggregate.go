package orchestrator

import (
	"fmt"
	"time"

	"driftwatch-io/driftwatch/pkg/policy/engine"
)

// AggregatedResult is the per-batch outcome: every rule's result plus a
// human-readable summary for reports and CLI output.
type AggregatedResult struct {
	NodeID   string
	BatchID  string
	Results  []*engine.PolicyExecutionResult
	Duration time.Duration
	Summary  string
}

// NewAggregatedResult composes an aggregated result, deriving the summary
// from the individual results.
func NewAggregatedResult(nodeID, batchID string, results []*engine.PolicyExecutionResult, duration time.Duration) *AggregatedResult {
	return &AggregatedResult{
		NodeID:   nodeID,
		BatchID:  batchID,
		Results:  results,
		Duration: duration,
		Summary:  summarize(results),
	}
}

// SatisfiedCount returns the number of rules whose condition held.
func (a *AggregatedResult) SatisfiedCount() int {
	n := 0
	for _, r := range a.Results {
		if r.Satisfied() {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of rules that failed to evaluate.
func (a *AggregatedResult) ErrorCount() int {
	n := 0
	for _, r := range a.Results {
		if r.IsError() {
			n++
		}
	}
	return n
}

// ComplianceFailureCount returns the number of rules that found the device
// out of compliance.
func (a *AggregatedResult) ComplianceFailureCount() int {
	n := 0
	for _, r := range a.Results {
		if r.ComplianceFailed() {
			n++
		}
	}
	return n
}

// summarize builds the one-line batch summary.
func summarize(results []*engine.PolicyExecutionResult) string {
	if len(results) == 0 {
		return "No policies evaluated"
	}

	satisfied, errs := 0, 0
	for _, r := range results {
		switch {
		case r.Satisfied():
			satisfied++
		case r.IsError():
			errs++
		}
	}
	notApplicable := len(results) - satisfied - errs

	return fmt.Sprintf("%d policies evaluated: %d satisfied, %d not applicable, %d errors",
		len(results), satisfied, notApplicable, errs)
}
