package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/config"
	"northwind-analytics/internal/report"
	"northwind-analytics/internal/view"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the analytics report for a filtered view",
	Long: `Filter the full dataset and run every analysis over the result:
KPIs, revenue per period, rankings, RFM segments, product performance,
trends, cohorts, discount impact and, with a model, customer clusters.

Granularities for --granularity:
  day, week, month, quarter, year`,
	RunE: runReport,
}

var reportFlags struct {
	start       string
	end         string
	countries   []string
	categories  []string
	granularity string
	export      bool
	noModel     bool
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.start, "start", "", "First order date to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFlags.end, "end", "", "Last order date to include (YYYY-MM-DD)")
	reportCmd.Flags().StringSliceVar(&reportFlags.countries, "country", nil, "Countries to include (repeatable)")
	reportCmd.Flags().StringSliceVar(&reportFlags.categories, "category", nil, "Categories to include (repeatable)")
	reportCmd.Flags().StringVar(&reportFlags.granularity, "granularity", string(aggregate.Month), "Bucket size for revenue per period")
	reportCmd.Flags().BoolVar(&reportFlags.export, "export", false, "Write JSON and XLSX exports to the export dir")
	reportCmd.Flags().BoolVar(&reportFlags.noModel, "no-model", false, "Skip cluster predictions")

	rootCmd.AddCommand(reportCmd)
}

func parseCriteria() (view.Criteria, error) {
	c := view.Criteria{Countries: reportFlags.countries, Categories: reportFlags.categories}
	for _, d := range []struct {
		raw    string
		target **time.Time
	}{{reportFlags.start, &c.Start}, {reportFlags.end, &c.End}} {
		if d.raw == "" {
			continue
		}
		t, err := view.ParseDate(d.raw)
		if err != nil {
			return c, err
		}
		*d.target = &t
	}
	return c, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	criteria, err := parseCriteria()
	if err != nil {
		return err
	}
	granularity, err := aggregate.ParseGranularity(reportFlags.granularity)
	if err != nil {
		return err
	}

	sess, err := loadSession(ctx)
	if err != nil {
		return err
	}

	opts := report.Options{
		TopN:             cfg.Analytics.TopN,
		RecentWindowDays: cfg.Analytics.RecentWindowDays,
		Granularity:      granularity,
	}
	if !reportFlags.noModel {
		model, err := loadModel()
		if err != nil {
			return err
		}
		if model != nil {
			opts.Classifier = model
		}
	}

	cache := report.NewCache(cfg.Cache)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		config.LogError(logger, "main", "runReport", "cache ping", cfg.Cache.Addr, err)
		cache = nil
	}

	r, err := report.NewGenerator(sess, cache, opts, logger).Generate(ctx, criteria)
	if err != nil {
		return err
	}

	if reportFlags.export {
		jsonPath, xlsxPath, err := report.Export(cfg.Export.Dir, r)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.WithField("json", jsonPath).WithField("xlsx", xlsxPath).Info("report exported")
	}
	return printJSON(r)
}
