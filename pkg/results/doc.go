// Package results persists aggregated policy evaluation results.
//
// Store implements the orchestrator's ResultSink so a flush can hand its
// batch outcomes off for durable storage. MemoryStore keeps results in
// memory for tests and ad-hoc runs; SQLiteStore persists them with the
// pure-Go sqlite driver, storing each batch's per-rule results as a JSON
// column for later reporting.
package results
