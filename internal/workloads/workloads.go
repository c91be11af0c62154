// Package workloads names the load-runner workloads.
package workloads

import (
	"northwind-analytics/internal/runner"
	"northwind-analytics/internal/workloads/dashboard"
	"northwind-analytics/internal/workloads/segmentation"
)

// New returns a fresh registry: workload group, then test name.
func New() map[string]map[string]runner.Workload {
	return map[string]map[string]runner.Workload{
		"dashboard": {
			"filter_aggregate": &dashboard.FilterAggregateTest{},
		},
		"segmentation": {
			"rfm_scoring": &segmentation.RFMScoringTest{},
		},
	}
}
