package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"driftwatch-io/driftwatch/pkg/policy/engine"
	"driftwatch-io/driftwatch/pkg/policy/orchestrator"
	"driftwatch-io/driftwatch/pkg/policy/source"
	"driftwatch-io/driftwatch/pkg/results"
)

var evaluateFlags struct {
	dir      string
	nodeData string
	nodeID   string
	priority string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate policies against a device document",
	Long: `Evaluate DCL policies against a single device document.

The device document is a JSON object, typically with a top-level "node"
field holding device attributes. Rules are loaded from the policy
directory, scheduled as one batch, and executed immediately.

Compliance failures (an ASSERT that found the device out of line) are
reported separately from evaluation errors (rules that could not run).

Examples:
  # Evaluate the configured policy directory against a device
  driftwatch evaluate --node-data device.json

  # Evaluate a specific directory
  driftwatch evaluate --dir policies/ --node-data device.json --node-id sw-core-01`,
	RunE: evaluateNode,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.dir, "dir", "d", "", "policy directory (defaults to the configured one)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.nodeData, "node-data", "", "JSON file with the device document (required)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.nodeID, "node-id", "", "device identifier for reporting")
	evaluateCmd.Flags().StringVar(&evaluateFlags.priority, "priority", "", "priority for all rules: low, medium, high, critical")

	if err := evaluateCmd.MarkFlagRequired("node-data"); err != nil {
		panic(err)
	}
}

func evaluateNode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	dir := evaluateFlags.dir
	if dir == "" {
		dir = cfg.Policy.Dir
	}

	ctx := cmd.Context()

	loader := source.NewDirectoryLoader(dir, logger)
	loaded, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	for _, le := range loaded.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", le)
	}

	rules := loaded.AllRules()
	if len(rules) == 0 {
		return fmt.Errorf("no rules found in %q", dir)
	}

	data, err := os.ReadFile(evaluateFlags.nodeData)
	if err != nil {
		return fmt.Errorf("failed to read device document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse device document: %w", err)
	}

	priority := orchestrator.ParsePriority(evaluateFlags.priority)
	orchRules := make([]orchestrator.OrchestrationRule, 0, len(rules))
	for i, r := range rules {
		orchRules = append(orchRules, orchestrator.OrchestrationRule{
			Rule:     r,
			Priority: priority,
			Order:    i,
		})
	}

	nodeID := evaluateFlags.nodeID
	if nodeID == "" {
		nodeID = "ad-hoc"
	}

	executor := engine.NewExecutor(nil, logger)
	orch := orchestrator.New(cfg.Orchestrator, executor, logger)

	batchID := orch.ScheduleEvaluation(nodeID, engine.NewEvaluationContext(doc), orchRules)
	sink := results.NewMemoryStore()
	defer sink.Close()

	aggregated, err := orch.ExecutePendingBatches(ctx, sink)
	if err != nil {
		return fmt.Errorf("evaluation interrupted: %w", err)
	}

	for _, agg := range aggregated {
		if agg.BatchID != batchID {
			continue
		}
		printAggregated(agg)
		if agg.ErrorCount() > 0 {
			return fmt.Errorf("%d rules failed to evaluate", agg.ErrorCount())
		}
	}
	return nil
}

func printAggregated(agg *orchestrator.AggregatedResult) {
	for _, r := range agg.Results {
		id := r.Rule.ID
		if id == "" {
			id = "<anonymous>"
		}

		switch {
		case r.IsError():
			fmt.Printf("✗ %s ERROR: %s\n", id, r.Evaluation.Message)
		case !r.Satisfied():
			fmt.Printf("- %s not applicable\n", id)
		case r.ComplianceFailed():
			fmt.Printf("! %s NON-COMPLIANT field=%s expected=%v actual=%v\n",
				id, r.Action.Result.Field, r.Action.Result.Expected, r.Action.Result.Actual)
		default:
			fmt.Printf("✓ %s %s\n", id, r.Action.Result.Status)
		}
	}

	fmt.Printf("\nNode %s: %s", agg.NodeID, agg.Summary)
	if n := agg.ComplianceFailureCount(); n > 0 {
		fmt.Printf(" (%d compliance failures)", n)
	}
	fmt.Println()
}
