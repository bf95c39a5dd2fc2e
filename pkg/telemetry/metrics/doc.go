// Package metrics exposes Prometheus instrumentation for policy
// evaluation: per-rule evaluation counters and durations, compliance
// failures, batch throughput, and result cache effectiveness.
package metrics
