package results

import (
	"context"
	"sort"
	"sync"
	"time"

	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
)

// MemoryStore keeps results in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*StoredResult
}

// NewMemoryStore creates an empty in-memory result store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*StoredResult)}
}

// StoreResult records one batch outcome.
func (s *MemoryStore) StoreResult(_ context.Context, result *orchestrator.AggregatedResult) error {
	stored := &StoredResult{
		BatchID:    result.BatchID,
		NodeID:     result.NodeID,
		Summary:    result.Summary,
		RuleCount:  len(result.Results),
		Satisfied:  result.SatisfiedCount(),
		Errors:     result.ErrorCount(),
		Duration:   result.Duration,
		RecordedAt: time.Now(),
		Results:    result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.BatchID] = stored
	return nil
}

// GetResult fetches one batch outcome.
func (s *MemoryStore) GetResult(_ context.Context, batchID string) (*StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.results[batchID]
	if !ok {
		return nil, &NotFoundError{BatchID: batchID}
	}
	copied := *stored
	return &copied, nil
}

// ListResults returns stored results matching the query, most recent
// first.
func (s *MemoryStore) ListResults(_ context.Context, q Query) ([]*StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*StoredResult
	for _, stored := range s.results {
		if q.NodeID != "" && stored.NodeID != q.NodeID {
			continue
		}
		if !q.Since.IsZero() && stored.RecordedAt.Before(q.Since) {
			continue
		}
		copied := *stored
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
