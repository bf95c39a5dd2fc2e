package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains metric naming configuration.
type Config struct {
	// Namespace prefixes every metric name. Default: "driftwatch".
	Namespace string `yaml:"namespace"`

	// Subsystem is the optional second name segment.
	Subsystem string `yaml:"subsystem"`

	// Enabled toggles metric collection.
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: "driftwatch",
		Enabled:   true,
	}
}

// PolicyMetrics tracks policy evaluation instrumentation.
//
// Metrics:
//   - driftwatch_policy_evaluations_total: evaluations by rule and status
//   - driftwatch_policy_evaluation_duration_seconds: per-batch durations
//   - driftwatch_policy_compliance_failures_total: failed assertions by rule
//   - driftwatch_policy_batches_total: executed batches
//   - driftwatch_policy_cache_hits_total / _misses_total: result cache
type PolicyMetrics struct {
	evaluationsTotal        *prometheus.CounterVec
	evaluationDuration      prometheus.Histogram
	complianceFailuresTotal *prometheus.CounterVec
	batchesTotal            prometheus.Counter
	cacheHitsTotal          prometheus.Counter
	cacheMissesTotal        prometheus.Counter
}

// NewPolicyMetrics creates and registers policy metrics with the registry.
func NewPolicyMetrics(cfg Config, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_evaluations_total",
				Help:      "Total number of policy rule evaluations",
			},
			[]string{"rule_id", "status"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_evaluation_duration_seconds",
				Help:      "Duration of batch evaluation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to 1.6s
			},
		),

		complianceFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_compliance_failures_total",
				Help:      "Total number of failed compliance assertions",
			},
			[]string{"rule_id"},
		),

		batchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_batches_total",
				Help:      "Total number of executed evaluation batches",
			},
		),

		cacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_cache_hits_total",
				Help:      "Total number of result cache hits",
			},
		),

		cacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "policy_cache_misses_total",
				Help:      "Total number of result cache misses",
			},
		),
	}

	registry.MustRegister(
		pm.evaluationsTotal,
		pm.evaluationDuration,
		pm.complianceFailuresTotal,
		pm.batchesTotal,
		pm.cacheHitsTotal,
		pm.cacheMissesTotal,
	)

	return pm
}

// RecordEvaluation records one rule evaluation outcome. status is the
// evaluation status name ("satisfied", "not_satisfied", "error").
func (pm *PolicyMetrics) RecordEvaluation(ruleID, status string) {
	pm.evaluationsTotal.WithLabelValues(ruleID, status).Inc()
}

// RecordComplianceFailure records a failed assertion.
func (pm *PolicyMetrics) RecordComplianceFailure(ruleID string) {
	pm.complianceFailuresTotal.WithLabelValues(ruleID).Inc()
}

// RecordBatch records one executed batch and its duration.
func (pm *PolicyMetrics) RecordBatch(duration time.Duration) {
	pm.batchesTotal.Inc()
	pm.evaluationDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a result cache hit.
func (pm *PolicyMetrics) RecordCacheHit() {
	pm.cacheHitsTotal.Inc()
}

// RecordCacheMiss records a result cache miss.
func (pm *PolicyMetrics) RecordCacheMiss() {
	pm.cacheMissesTotal.Inc()
}
