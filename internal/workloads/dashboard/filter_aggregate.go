package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/runner"
	"northwind-analytics/internal/session"
	"northwind-analytics/internal/view"
)

// FilterAggregateTest replays dashboard interactions: each pass filters the
// full view by one criteria set and computes the KPI strip, the monthly
// series and the country ranking.
type FilterAggregateTest struct {
	criteria []view.Criteria
	baseline []float64
}

// Setup derives one criteria set per country and per category, one half-year
// window, and the unfiltered view, then records each set's revenue.
func (t *FilterAggregateTest) Setup(ctx context.Context, ds *session.Dataset, logger *logrus.Logger) error {
	logger.Println("Setting up FilterAggregateTest...")
	full := ds.Full()
	opts := view.Options(full)

	t.criteria = []view.Criteria{{}}
	for _, c := range opts.Countries {
		t.criteria = append(t.criteria, view.Criteria{Countries: []string{c}})
	}
	for _, c := range opts.Categories {
		t.criteria = append(t.criteria, view.Criteria{Categories: []string{c}})
	}
	if opts.MinDate != nil {
		start := *opts.MinDate
		end := start.AddDate(0, 6, 0)
		t.criteria = append(t.criteria, view.Criteria{Start: &start, End: &end})
	}

	t.baseline = make([]float64, len(t.criteria))
	for i, c := range t.criteria {
		t.baseline[i] = aggregate.KPISummary(view.Filter(full, c)).Revenue
	}
	return nil
}

func (t *FilterAggregateTest) Run(ctx context.Context, ds *session.Dataset, concurrency int, duration time.Duration, logger *logrus.Logger) (*runner.Result, error) {
	if len(t.criteria) == 0 {
		return nil, errors.New("dashboard: Setup was not run")
	}
	full := ds.Full()

	result := runner.Measure(ctx, concurrency, duration, func(ctx context.Context, worker, i int) (bool, error) {
		k := (worker + i) % len(t.criteria)
		v := view.Filter(full, t.criteria[k])
		kpi := aggregate.KPISummary(v)
		aggregate.SumByPeriod(v, aggregate.Month)
		if _, err := aggregate.TopN(v, aggregate.KeyCountry, aggregate.MetricLineTotal, 10); err != nil {
			return false, err
		}
		return kpi.Revenue == t.baseline[k], nil
	})
	return result, nil
}

func (t *FilterAggregateTest) Teardown(ctx context.Context, logger *logrus.Logger) error {
	t.criteria, t.baseline = nil, nil
	return nil
}
