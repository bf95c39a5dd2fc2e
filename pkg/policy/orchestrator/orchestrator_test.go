package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
	"driftwatch-io/driftwatch/pkg/policy/engine"
)

// recordingSink captures stored results and optionally fails.
type recordingSink struct {
	mu      sync.Mutex
	stored  []*AggregatedResult
	err     error
}

func (s *recordingSink) StoreResult(_ context.Context, result *AggregatedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, result)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func newTestOrchestrator(cfg Config) *Orchestrator {
	return New(cfg, engine.NewExecutor(nil, nil), nil)
}

func assertRule(id, field, expected string) OrchestrationRule {
	return OrchestrationRule{
		Rule: &ast.Rule{
			ID:        id,
			Condition: ast.True(),
			Action:    ast.Assert(ast.ParseFieldRef(field), ast.StringValue(expected)),
		},
	}
}

func nodeContext(vendor string) *engine.EvaluationContext {
	return engine.NewEvaluationContext(map[string]any{
		"node": map[string]any{"vendor": vendor},
	})
}

func TestOrchestrator_ScheduleDoesNotExecute(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())

	id := orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})

	if id == "" {
		t.Error("ScheduleEvaluation returned empty batch ID")
	}
	if got := orch.PendingBatchCount(); got != 1 {
		t.Errorf("pending = %d, want 1", got)
	}
	if _, ok := orch.GetCachedResult("node-1", id); ok {
		t.Error("result cached before any flush")
	}
}

func TestOrchestrator_FlushExecutesAllPending(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	for i := 0; i < 5; i++ {
		orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
			[]OrchestrationRule{assertRule("r", "node.vendor", "cisco")})
	}

	results, err := orch.ExecutePendingBatches(context.Background(), nil)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("results = %d, want 5", len(results))
	}
	if got := orch.PendingBatchCount(); got != 0 {
		t.Errorf("pending after flush = %d, want 0", got)
	}

	for _, r := range results {
		if r.SatisfiedCount() != 1 || r.ErrorCount() != 0 {
			t.Errorf("batch %s: satisfied=%d errors=%d, want 1/0", r.BatchID, r.SatisfiedCount(), r.ErrorCount())
		}
	}
}

// A batch whose timeout elapsed before the flush still executes; the
// timeout marks it overdue, it never discards work.
func TestOrchestrator_TimedOutBatchRunsOnFlush(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchTimeout = 50 * time.Millisecond
	orch := newTestOrchestrator(cfg)

	orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})

	time.Sleep(100 * time.Millisecond)

	if got := orch.TimedOutBatchCount(); got != 1 {
		t.Fatalf("timed out batches = %d, want 1", got)
	}

	results, err := orch.ExecutePendingBatches(context.Background(), nil)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if got := orch.PendingBatchCount(); got != 0 {
		t.Errorf("pending after flush = %d, want 0", got)
	}
}

func TestOrchestrator_EmptyFlush(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())

	results, err := orch.ExecutePendingBatches(context.Background(), nil)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestOrchestrator_PriorityOrderWithinBatch(t *testing.T) {
	// SET rules stamp an execution sequence into the shared context, so
	// the final evaluation order is observable through the results.
	rules := []OrchestrationRule{
		{Rule: &ast.Rule{ID: "low", Condition: ast.True(), Action: ast.Set(ast.ParseFieldRef("last"), ast.StringValue("low"))}, Priority: PriorityLow, Order: 0},
		{Rule: &ast.Rule{ID: "crit-b", Condition: ast.True(), Action: ast.Set(ast.ParseFieldRef("first_crit"), ast.StringValue("b"))}, Priority: PriorityCritical, Order: 2},
		{Rule: &ast.Rule{ID: "crit-a", Condition: ast.True(), Action: ast.Set(ast.ParseFieldRef("first_crit"), ast.StringValue("a"))}, Priority: PriorityCritical, Order: 1},
		{Rule: &ast.Rule{ID: "med", Condition: ast.True(), Action: ast.Set(ast.ParseFieldRef("mid"), ast.StringValue("med"))}, Priority: PriorityMedium, Order: 0},
	}

	ordered := orderRules(rules)

	wantIDs := []string{"crit-a", "crit-b", "med", "low"}
	for i, want := range wantIDs {
		if ordered[i].Rule.ID != want {
			t.Errorf("position %d = %s, want %s", i, ordered[i].Rule.ID, want)
		}
	}

	// The input order is untouched.
	if rules[0].Rule.ID != "low" {
		t.Error("orderRules mutated its input")
	}
}

func TestOrchestrator_ContextClonedPerFlush(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	evalCtx := nodeContext("cisco")

	orch.ScheduleEvaluation("node-1", evalCtx, []OrchestrationRule{
		{Rule: &ast.Rule{ID: "set", Condition: ast.True(), Action: ast.Set(ast.ParseFieldRef("node.vendor"), ast.StringValue("juniper"))}},
	})

	if _, err := orch.ExecutePendingBatches(context.Background(), nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if got := evalCtx.NodeData["node"].(map[string]any)["vendor"]; got != "cisco" {
		t.Errorf("caller's document vendor = %v, SET leaked out of the batch clone", got)
	}
}

func TestOrchestrator_ResultsCachedWithTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Hour
	orch := newTestOrchestrator(cfg)

	id := orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})

	if _, err := orch.ExecutePendingBatches(context.Background(), nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	cached, ok := orch.GetCachedResult("node-1", id)
	if !ok {
		t.Fatal("result not cached after flush")
	}
	if cached.BatchID != id || cached.NodeID != "node-1" {
		t.Errorf("cached result = %s/%s, want node-1/%s", cached.NodeID, cached.BatchID, id)
	}
	if orch.CacheSize() != 1 {
		t.Errorf("cache size = %d, want 1", orch.CacheSize())
	}
}

func TestOrchestrator_ExpiredEntriesNotServed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = -time.Second // Entries are born expired.
	orch := newTestOrchestrator(cfg)

	id := orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})
	if _, err := orch.ExecutePendingBatches(context.Background(), nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if _, ok := orch.GetCachedResult("node-1", id); ok {
		t.Error("expired entry served")
	}
	if pruned := orch.PruneCache(); pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
	if orch.CacheSize() != 0 {
		t.Errorf("cache size after prune = %d, want 0", orch.CacheSize())
	}
}

func TestOrchestrator_CachingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableCaching = false
	orch := newTestOrchestrator(cfg)

	id := orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})
	if _, err := orch.ExecutePendingBatches(context.Background(), nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if _, ok := orch.GetCachedResult("node-1", id); ok {
		t.Error("caching disabled but result was cached")
	}
}

func TestOrchestrator_SinkReceivesResults(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	sink := &recordingSink{}

	orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})
	orch.ScheduleEvaluation("node-2", nodeContext("juniper"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "juniper")})

	if _, err := orch.ExecutePendingBatches(context.Background(), sink); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if sink.count() != 2 {
		t.Errorf("sink stored = %d, want 2", sink.count())
	}
}

// A sink failure is best-effort: the flush still returns the in-memory
// results.
func TestOrchestrator_SinkFailureDoesNotAbortFlush(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	sink := &recordingSink{err: errors.New("disk full")}

	orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})

	results, err := orch.ExecutePendingBatches(context.Background(), sink)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestOrchestrator_CanceledFlushRequeues(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Saturate the limiter so Acquire must wait on the canceled context.
	for i := 0; i < orch.limiter.Limit(); i++ {
		if err := orch.limiter.Acquire(context.Background()); err != nil {
			t.Fatalf("setup acquire failed: %v", err)
		}
	}
	defer func() {
		for i := 0; i < orch.limiter.Limit(); i++ {
			orch.limiter.Release()
		}
	}()

	results, err := orch.ExecutePendingBatches(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	if got := orch.PendingBatchCount(); got != 1 {
		t.Errorf("pending = %d, want 1 (unexecuted batch requeued)", got)
	}
}

func TestOrchestrator_ConcurrentFlushesSafe(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	for i := 0; i < 20; i++ {
		orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
			[]OrchestrationRule{assertRule("r", "node.vendor", "cisco")})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := orch.ExecutePendingBatches(context.Background(), nil)
			if err != nil {
				t.Errorf("flush failed: %v", err)
			}
			mu.Lock()
			total += len(results)
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Each batch executes exactly once across all concurrent flushes.
	if total != 20 {
		t.Errorf("total results = %d, want 20", total)
	}
	if got := orch.PendingBatchCount(); got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}
}

func TestBatch_IsTimedOut(t *testing.T) {
	batch := &EvaluationBatch{CreatedAt: time.Now().Add(-time.Minute)}

	if !batch.IsTimedOut(time.Second) {
		t.Error("minute-old batch not timed out with 1s timeout")
	}
	if batch.IsTimedOut(time.Hour) {
		t.Error("minute-old batch timed out with 1h timeout")
	}
	if batch.IsTimedOut(0) {
		t.Error("zero timeout should disable the check")
	}
}

func TestAggregatedResult_Summary(t *testing.T) {
	empty := NewAggregatedResult("node-1", "batch-1", nil, 0)
	if empty.Summary != "No policies evaluated" {
		t.Errorf("empty summary = %q", empty.Summary)
	}

	results := []*engine.PolicyExecutionResult{
		{Evaluation: engine.EvaluationResult{Status: engine.StatusSatisfied}, Action: &engine.ActionExecutionResult{Result: engine.ActionResult{Status: engine.ActionSuccess}}},
		{Evaluation: engine.EvaluationResult{Status: engine.StatusNotSatisfied}},
		{Evaluation: engine.EvaluationResult{Status: engine.StatusError, Message: "boom"}},
	}
	agg := NewAggregatedResult("node-1", "batch-1", results, time.Second)

	want := "3 policies evaluated: 1 satisfied, 1 not applicable, 1 errors"
	if agg.Summary != want {
		t.Errorf("summary = %q, want %q", agg.Summary, want)
	}
	if agg.SatisfiedCount() != 1 || agg.ErrorCount() != 1 {
		t.Errorf("counts = %d satisfied, %d errors, want 1/1", agg.SatisfiedCount(), agg.ErrorCount())
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"low", PriorityLow},
		{"medium", PriorityMedium},
		{"high", PriorityHigh},
		{"critical", PriorityCritical},
		{"", PriorityMedium},
		{"bogus", PriorityMedium},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.MaxConcurrent = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero max_concurrent passed validation")
	}
}

func TestPriority_ZeroValueIsMedium(t *testing.T) {
	var rule OrchestrationRule
	if rule.Priority != PriorityMedium {
		t.Errorf("zero-value priority = %v, want %v", rule.Priority, PriorityMedium)
	}
	if got := rule.Priority.String(); got != "medium" {
		t.Errorf("zero-value priority name = %q, want %q", got, "medium")
	}
	if PriorityLow >= PriorityMedium || PriorityMedium >= PriorityHigh || PriorityHigh >= PriorityCritical {
		t.Error("priority ordering broken")
	}
}

// countingCacheMetrics records cache instrumentation calls.
type countingCacheMetrics struct {
	hits   int
	misses int
}

func (m *countingCacheMetrics) RecordCacheHit()  { m.hits++ }
func (m *countingCacheMetrics) RecordCacheMiss() { m.misses++ }

func TestOrchestrator_CacheMetricsRecorded(t *testing.T) {
	orch := newTestOrchestrator(DefaultConfig())
	recorder := &countingCacheMetrics{}
	orch.SetMetrics(recorder)

	batchID := orch.ScheduleEvaluation("node-1", nodeContext("cisco"),
		[]OrchestrationRule{assertRule("r1", "node.vendor", "cisco")})
	if _, err := orch.ExecutePendingBatches(context.Background(), nil); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if _, ok := orch.GetCachedResult("node-1", batchID); !ok {
		t.Fatal("expected cached result")
	}
	if _, ok := orch.GetCachedResult("node-1", "no-such-batch"); ok {
		t.Fatal("unexpected cache hit")
	}

	if recorder.hits != 1 {
		t.Errorf("cache hits = %d, want 1", recorder.hits)
	}
	if recorder.misses != 1 {
		t.Errorf("cache misses = %d, want 1", recorder.misses)
	}
}
