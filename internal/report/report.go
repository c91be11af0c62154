// Package report bundles every analysis over one filtered view, caches the
// bundle in Redis and exports it as flat tables.
package report

import (
	"errors"
	"sort"
	"time"

	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/segment"
	"northwind-analytics/internal/view"
)

const topCustomers = 5

// Classifier is a segment.Classifier that also names its clusters.
type Classifier interface {
	segment.Classifier
	Label(cluster int) string
	Recommendation(cluster int) []string
}

type Options struct {
	TopN             int
	RecentWindowDays int
	// Granularity buckets Report.Periods; it defaults to months.
	Granularity      aggregate.Granularity
	// Classifier is optional; without one the report has no predictions.
	Classifier       Classifier
}

type Prediction struct {
	CustomerID string `json:"customer_id"`
	Cluster    int    `json:"cluster"`
	Label      string `json:"label"`
}

type ClusterSummary struct {
	Cluster         int             `json:"cluster"`
	Label           string          `json:"label"`
	Profile         segment.Profile `json:"profile"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

type Report struct {
	DatasetID    string                   `json:"dataset_id"`
	Criteria     view.Criteria            `json:"criteria"`
	GeneratedAt  time.Time                `json:"generated_at"`
	KPIs         aggregate.KPI            `json:"kpis"`
	Granularity  aggregate.Granularity    `json:"granularity"`
	Periods      []aggregate.PeriodTotal  `json:"periods"`
	TopProducts  []aggregate.Ranked       `json:"top_products"`
	Countries    []aggregate.CountryStat  `json:"countries"`
	Categories   []aggregate.CategoryStat `json:"categories"`
	TopCustomers []aggregate.CustomerStat `json:"top_customers"`
	RFM          []segment.CustomerRFM    `json:"rfm"`
	Segments     []segment.SegmentStat    `json:"segments"`
	Products     []segment.ProductStat    `json:"products"`
	Trends       segment.Trends           `json:"trends"`
	Cohorts      *segment.CohortMatrix    `json:"cohorts"`
	Discounts    []segment.DiscountBand   `json:"discounts"`
	Predictions  []Prediction             `json:"predictions,omitempty"`
	Clusters     []ClusterSummary         `json:"clusters,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

func (o Options) granularity() aggregate.Granularity {
	if o.Granularity == "" {
		return aggregate.Month
	}
	return o.Granularity
}

// Build runs every analysis over v. Non-fatal problems (an empty view, a
// failed prediction) are returned alongside the report and also listed in
// its Warnings.
func Build(v view.View, opts Options) (*Report, []error) {
	var warnings []error
	if err := v.EmptyWarning(); err != nil {
		warnings = append(warnings, err)
	}

	n := opts.TopN
	if n <= 0 {
		n = 10
	}

	r := &Report{
		GeneratedAt: time.Now().UTC(),
		KPIs:        aggregate.KPISummary(v),
		Granularity: opts.granularity(),
		Periods:     aggregate.SumByPeriod(v, opts.granularity()),
		Countries:   aggregate.ByCountry(v),
		Categories:  aggregate.ByCategory(v),
		Products:    segment.ProductPerformance(v),
		Trends:      segment.BuildTrends(v),
		Cohorts:     segment.Cohorts(v),
		Discounts:   segment.DiscountImpact(v),
	}

	// the key and metric are constants, so TopN cannot fail here
	r.TopProducts, _ = aggregate.TopN(v, aggregate.KeyProduct, aggregate.MetricLineTotal, n)

	customers := aggregate.ByCustomer(v)
	r.TopCustomers = customers[:min(topCustomers, len(customers))]

	r.RFM = segment.RFM(v)
	r.Segments = segment.SegmentSummary(r.RFM)

	if opts.Classifier != nil {
		features := segment.Features(v, segment.FeatureOptions{RecentWindowDays: opts.RecentWindowDays})
		preds, errs := segment.PredictAll(opts.Classifier, features)
		warnings = append(warnings, errs...)
		r.Predictions, r.Clusters = clusters(v, opts.Classifier, preds)
	}

	for _, w := range warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	return r, warnings
}

func clusters(v view.View, c Classifier, preds []segment.Prediction) ([]Prediction, []ClusterSummary) {
	members := map[int][]string{}
	out := make([]Prediction, len(preds))
	for i, p := range preds {
		out[i] = Prediction{CustomerID: p.CustomerID, Cluster: p.Cluster, Label: c.Label(p.Cluster)}
		members[p.Cluster] = append(members[p.Cluster], p.CustomerID)
	}

	ids := make([]int, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	summaries := make([]ClusterSummary, len(ids))
	for i, id := range ids {
		summaries[i] = ClusterSummary{
			Cluster:         id,
			Label:           c.Label(id),
			Profile:         segment.ClusterProfile(v, members[id]),
			Recommendations: c.Recommendation(id),
		}
	}
	return out, summaries
}

// IsEmpty reports whether err is the empty-view warning.
func IsEmpty(err error) bool {
	var w *view.EmptyResultWarning
	return errors.As(err, &w)
}
