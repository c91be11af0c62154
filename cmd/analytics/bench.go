package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"northwind-analytics/internal/runner"
	"northwind-analytics/internal/workloads"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a concurrent read workload against the loaded dataset",
	Long: `Available workloads:
  dashboard/filter_aggregate   - filter by criteria, then KPIs, monthly series and rankings
  segmentation/rfm_scoring     - RFM scoring and segment summary of every customer`,
	RunE: runBench,
}

var benchFlags struct {
	workload    string
	test        string
	concurrency int
	duration    time.Duration
}

func init() {
	benchCmd.Flags().StringVar(&benchFlags.workload, "workload", "dashboard", "Workload to run (dashboard or segmentation)")
	benchCmd.Flags().StringVar(&benchFlags.test, "test", "filter_aggregate", "Test to run")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 0, "Number of concurrent workers (default from config)")
	benchCmd.Flags().DurationVar(&benchFlags.duration, "duration", 0, "Duration of the test (default from config)")

	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	workload, ok := workloads.New()[benchFlags.workload][benchFlags.test]
	if !ok {
		return fmt.Errorf("unsupported workload/test: %s/%s", benchFlags.workload, benchFlags.test)
	}

	concurrency := benchFlags.concurrency
	if concurrency <= 0 {
		concurrency = cfg.BenchmarkSettings.DefaultConcurrency
	}
	duration := benchFlags.duration
	if duration <= 0 {
		duration = cfg.BenchmarkSettings.Duration()
	}

	ctx := context.Background()
	sess, err := loadSession(ctx)
	if err != nil {
		return err
	}

	logger.Infof("Running benchmark for %s/%s on %s...", benchFlags.workload, benchFlags.test, cfg.Source)
	result, err := runner.Run(ctx, sess, workload, concurrency, duration, logger)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	return printJSON(result)
}
