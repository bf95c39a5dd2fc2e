package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"driftwatch-io/driftwatch/pkg/policy/engine"
)

// ResultSink receives aggregated results after a flush. Persistence is
// best-effort: a sink failure is logged and reported but never aborts the
// flush or discards the in-memory result.
type ResultSink interface {
	StoreResult(ctx context.Context, result *AggregatedResult) error
}

// CacheMetrics receives result-cache instrumentation events.
// telemetry/metrics.PolicyMetrics satisfies it.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// Orchestrator batches, prioritizes, and executes policy evaluations.
//
// All mutable state (pending batches and the result cache) sits behind a
// single mutex plus the cache's own lock; batch execution itself runs
// outside any lock so evaluations proceed in parallel.
type Orchestrator struct {
	config   Config
	executor *engine.Executor
	limiter  *ConcurrencyLimiter
	cache    *resultCache
	logger   *slog.Logger
	metrics  CacheMetrics

	mu      sync.Mutex
	pending map[string]*EvaluationBatch
}

// New creates an orchestrator. executor must be non-nil.
func New(config Config, executor *engine.Executor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default().With("component", "policy.orchestrator")
	}
	return &Orchestrator{
		config:   config,
		executor: executor,
		limiter:  NewConcurrencyLimiter(config.MaxConcurrent),
		cache:    newResultCache(config.CacheTTL, config.EnableCaching),
		logger:   logger,
	}
}

// ScheduleEvaluation enqueues a batch of rules against a device snapshot
// and returns the batch ID. Nothing executes until the next flush.
func (o *Orchestrator) ScheduleEvaluation(nodeID string, evalCtx *engine.EvaluationContext, rules []OrchestrationRule) string {
	batch := &EvaluationBatch{
		BatchID:   uuid.New().String(),
		NodeID:    nodeID,
		Context:   evalCtx,
		Rules:     rules,
		CreatedAt: time.Now(),
	}

	o.mu.Lock()
	if o.pending == nil {
		o.pending = make(map[string]*EvaluationBatch)
	}
	o.pending[batch.BatchID] = batch
	o.mu.Unlock()

	o.logger.Debug("batch scheduled",
		"batch_id", batch.BatchID,
		"node_id", nodeID,
		"rules", len(rules),
	)

	return batch.BatchID
}

// ExecutePendingBatches drains and executes every pending batch, timed-out
// or not, in parallel up to MaxConcurrent. sink may be nil. The returned
// slice holds one aggregated result per batch in no guaranteed order; the
// error is the first context cancellation encountered, if any.
func (o *Orchestrator) ExecutePendingBatches(ctx context.Context, sink ResultSink) ([]*AggregatedResult, error) {
	o.mu.Lock()
	batches := make([]*EvaluationBatch, 0, len(o.pending))
	for _, b := range o.pending {
		batches = append(batches, b)
	}
	o.pending = nil
	o.mu.Unlock()

	if len(batches) == 0 {
		return nil, nil
	}

	o.logger.Info("flushing pending batches", "count", len(batches))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  []*AggregatedResult
		ctxErr   error
	)

	for _, batch := range batches {
		if err := o.limiter.Acquire(ctx); err != nil {
			// Flush interrupted: requeue the unexecuted batch.
			o.requeue(batch)
			mu.Lock()
			if ctxErr == nil {
				ctxErr = err
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(b *EvaluationBatch) {
			defer wg.Done()
			defer o.limiter.Release()

			result := o.executeBatch(ctx, b)
			o.cache.set(b.NodeID, b.BatchID, result)
			o.persist(ctx, sink, result)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(batch)
	}

	wg.Wait()
	return results, ctxErr
}

// executeBatch runs one batch's rules in priority order against a cloned
// context.
func (o *Orchestrator) executeBatch(ctx context.Context, batch *EvaluationBatch) *AggregatedResult {
	start := time.Now()

	// Work on a copy: SET actions must never leak into the caller's
	// scheduled document.
	evalCtx := batch.Context
	if evalCtx == nil {
		evalCtx = engine.NewEvaluationContext(nil)
	} else {
		evalCtx = evalCtx.Clone()
	}

	ordered := orderRules(batch.Rules)
	results := make([]*engine.PolicyExecutionResult, 0, len(ordered))
	for _, r := range ordered {
		results = append(results, o.executor.ExecuteRule(ctx, r.Rule, evalCtx))
	}

	agg := NewAggregatedResult(batch.NodeID, batch.BatchID, results, time.Since(start))

	o.logger.Info("batch executed",
		"batch_id", batch.BatchID,
		"node_id", batch.NodeID,
		"summary", agg.Summary,
		"duration", agg.Duration,
	)

	return agg
}

// orderRules returns the rules sorted for execution: highest priority
// first, ties broken by ascending Order. The input slice is not modified.
func orderRules(rules []OrchestrationRule) []OrchestrationRule {
	ordered := make([]OrchestrationRule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].Order < ordered[j].Order
	})

	return ordered
}

// persist hands a result to the sink, best-effort.
func (o *Orchestrator) persist(ctx context.Context, sink ResultSink, result *AggregatedResult) {
	if sink == nil {
		return
	}
	if err := sink.StoreResult(ctx, result); err != nil {
		dsErr := &engine.DataStoreError{Message: "storing aggregated result", Cause: err}
		o.logger.Error("result persistence failed",
			"batch_id", result.BatchID,
			"node_id", result.NodeID,
			"error", dsErr,
		)
	}
}

// requeue puts an unexecuted batch back on the pending map.
func (o *Orchestrator) requeue(batch *EvaluationBatch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		o.pending = make(map[string]*EvaluationBatch)
	}
	o.pending[batch.BatchID] = batch
}

// SetMetrics installs a cache instrumentation hook. Call before the
// orchestrator is shared across goroutines.
func (o *Orchestrator) SetMetrics(m CacheMetrics) {
	o.metrics = m
}

// GetCachedResult returns a previously computed batch result if it is
// still within its TTL.
func (o *Orchestrator) GetCachedResult(nodeID, batchID string) (*AggregatedResult, bool) {
	result, ok := o.cache.get(nodeID, batchID)
	if o.metrics != nil {
		if ok {
			o.metrics.RecordCacheHit()
		} else {
			o.metrics.RecordCacheMiss()
		}
	}
	return result, ok
}

// PendingBatchCount returns the number of batches awaiting a flush.
func (o *Orchestrator) PendingBatchCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// TimedOutBatchCount returns how many pending batches are overdue.
func (o *Orchestrator) TimedOutBatchCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0
	for _, b := range o.pending {
		if b.IsTimedOut(o.config.BatchTimeout) {
			n++
		}
	}
	return n
}

// CacheSize returns the number of cached results, expired ones included.
func (o *Orchestrator) CacheSize() int {
	return o.cache.size()
}

// PruneCache drops expired cache entries and returns how many were removed.
func (o *Orchestrator) PruneCache() int {
	return o.cache.prune()
}
