package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"driftwatch-io/driftwatch/pkg/config"
	"driftwatch-io/driftwatch/pkg/inventory"
	"driftwatch-io/driftwatch/pkg/policy/engine"
	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
	"driftwatch-io/driftwatch/pkg/policy/source"
	"driftwatch-io/driftwatch/pkg/results"
	"driftwatch-io/driftwatch/pkg/telemetry/metrics"
)

var watchFlags struct {
	interval      time.Duration
	metricsListen string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the evaluation daemon",
	Long: `Run the evaluation daemon against the device inventory.

The daemon periodically sweeps the inventory, schedules an evaluation
batch per device, and flushes batches through the orchestrator. Results
are persisted to the configured result store. When policy watching is
enabled the rule directory is hot-reloaded on change.

Examples:
  # Run with default config
  driftwatch watch

  # Run with a custom sweep interval
  driftwatch watch --interval 5m --config /etc/driftwatch/config.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", time.Minute, "inventory sweep interval")
	watchCmd.Flags().StringVar(&watchFlags.metricsListen, "metrics-listen", "", "address for the Prometheus /metrics endpoint (empty disables)")
}

// ruleSet holds the currently loaded rules behind a mutex so the watcher
// can swap them while sweeps are running.
type ruleSet struct {
	mu    sync.RWMutex
	rules []orchestrator.OrchestrationRule
}

func (rs *ruleSet) set(rules []orchestrator.OrchestrationRule) {
	rs.mu.Lock()
	rs.rules = rules
	rs.mu.Unlock()
}

func (rs *ruleSet) get() []orchestrator.OrchestrationRule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.rules
}

// instrumentedSink records evaluation metrics before delegating to the
// underlying result store.
type instrumentedSink struct {
	inner   orchestrator.ResultSink
	metrics *metrics.PolicyMetrics
}

func (s *instrumentedSink) StoreResult(ctx context.Context, result *orchestrator.AggregatedResult) error {
	s.metrics.RecordBatch(result.Duration)
	for _, r := range result.Results {
		s.metrics.RecordEvaluation(r.Rule.ID, string(r.Evaluation.Status))
		if r.ComplianceFailed() {
			s.metrics.RecordComplianceFailure(r.Rule.ID)
		}
	}
	return s.inner.StoreResult(ctx, result)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	invStore, err := newInventoryStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open inventory store: %w", err)
	}
	defer invStore.Close()

	resultStore, err := newResultStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer resultStore.Close()

	var sink orchestrator.ResultSink = resultStore
	var policyMetrics *metrics.PolicyMetrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		policyMetrics = metrics.NewPolicyMetrics(cfg.Metrics, registry)
		sink = &instrumentedSink{inner: resultStore, metrics: policyMetrics}
		if watchFlags.metricsListen != "" {
			startMetricsServer(ctx, registry, watchFlags.metricsListen, logger)
		}
	}

	loader := source.NewDirectoryLoader(cfg.Policy.Dir, logger)
	rules := &ruleSet{}
	if err := reloadRules(ctx, loader, rules); err != nil {
		return err
	}

	if cfg.Policy.Watch {
		watcherCfg := source.DefaultWatcherConfig(cfg.Policy.Dir)
		if cfg.Policy.DebounceInterval > 0 {
			watcherCfg.DebounceInterval = cfg.Policy.DebounceInterval
		}
		watcher, err := source.NewWatcher(watcherCfg, logger)
		if err != nil {
			return fmt.Errorf("failed to start policy watcher: %w", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, func() error {
				return reloadRules(ctx, loader, rules)
			}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("policy watcher stopped", "error", err)
			}
		}()
	}

	executor := engine.NewExecutor(nil, logger)
	orch := orchestrator.New(cfg.Orchestrator, executor, logger)
	if policyMetrics != nil {
		orch.SetMetrics(policyMetrics)
	}

	// A configured cron schedule owns flushing; otherwise each sweep
	// flushes its own batches.
	flushInline := cfg.Orchestrator.FlushSchedule == ""
	if !flushInline {
		scheduler := orchestrator.NewFlushScheduler(orch, sink)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start flush scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	logger.Info("daemon started",
		"policy_dir", cfg.Policy.Dir,
		"interval", watchFlags.interval,
		"inventory_backend", cfg.Inventory.Backend,
		"results_backend", cfg.Results.Backend,
	)

	ticker := time.NewTicker(watchFlags.interval)
	defer ticker.Stop()

	sweep(ctx, invStore, orch, rules, logger)
	if flushInline {
		flush(ctx, orch, sink, logger)
	}

	for {
		select {
		case <-ctx.Done():
			// Final flush so scheduled batches are not lost on shutdown.
			flush(context.Background(), orch, sink, logger)
			logger.Info("daemon stopped")
			return nil
		case <-ticker.C:
			sweep(ctx, invStore, orch, rules, logger)
			if flushInline {
				flush(ctx, orch, sink, logger)
			}
		}
	}
}

// reloadRules loads the policy directory and swaps the active rule set.
// Files that fail to parse are logged and skipped.
func reloadRules(ctx context.Context, loader *source.DirectoryLoader, rules *ruleSet) error {
	loaded, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	all := loaded.AllRules()
	orchRules := make([]orchestrator.OrchestrationRule, 0, len(all))
	for i, r := range all {
		orchRules = append(orchRules, orchestrator.OrchestrationRule{
			Rule:     r,
			Priority: orchestrator.PriorityMedium,
			Order:    i,
		})
	}
	rules.set(orchRules)
	return nil
}

// sweep schedules one evaluation batch per inventory node.
func sweep(ctx context.Context, store inventory.Store, orch *orchestrator.Orchestrator, rules *ruleSet, logger *slog.Logger) {
	active := rules.get()
	if len(active) == 0 {
		logger.Info("sweep skipped: no rules loaded")
		return
	}

	nodes, err := store.ListNodes(ctx, inventory.ListOptions{})
	if err != nil {
		logger.Error("inventory sweep failed", "error", err)
		return
	}

	for _, node := range nodes {
		status, err := store.GetNodeStatus(ctx, node.ID)
		if err != nil {
			var nf *inventory.NotFoundError
			if !errors.As(err, &nf) {
				logger.Error("failed to load node status", "node_id", node.ID, "error", err)
				continue
			}
			status = nil
		}
		interfaces, err := store.GetNodeInterfaces(ctx, node.ID)
		if err != nil {
			var nf *inventory.NotFoundError
			if !errors.As(err, &nf) {
				logger.Error("failed to load node interfaces", "node_id", node.ID, "error", err)
				continue
			}
			interfaces = nil
		}

		doc := inventory.NodeDocument(node, status, interfaces)
		orch.ScheduleEvaluation(node.ID, engine.NewEvaluationContext(doc), active)
	}

	logger.Info("sweep scheduled", "nodes", len(nodes), "rules", len(active))
}

func flush(ctx context.Context, orch *orchestrator.Orchestrator, sink orchestrator.ResultSink, logger *slog.Logger) {
	if _, err := orch.ExecutePendingBatches(ctx, sink); err != nil {
		logger.Error("flush interrupted", "error", err)
	}
}

func startMetricsServer(ctx context.Context, registry *prometheus.Registry, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func newInventoryStore(cfg *config.Config) (inventory.Store, error) {
	switch cfg.Inventory.Backend {
	case "memory":
		return inventory.NewMemoryStore(), nil
	default:
		sqlCfg := inventory.DefaultSQLiteConfig()
		sqlCfg.Path = cfg.Inventory.SQLitePath
		return inventory.NewSQLiteStore(sqlCfg)
	}
}

func newResultStore(cfg *config.Config) (results.Store, error) {
	switch cfg.Results.Backend {
	case "memory":
		return results.NewMemoryStore(), nil
	default:
		return results.NewSQLiteStore(cfg.Results.SQLitePath)
	}
}
