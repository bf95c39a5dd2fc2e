// Package orchestrator coordinates policy evaluation at scale: it batches
// rules per device, prioritizes execution within a batch, fans batches out
// across a bounded worker pool, and caches aggregated results with a TTL.
//
// Scheduling and execution are decoupled. ScheduleEvaluation only enqueues
// a batch; nothing runs until ExecutePendingBatches is called, either
// directly or through the cron-driven FlushScheduler. A batch whose
// timeout has elapsed is not dropped, it simply runs at the next flush.
package orchestrator
