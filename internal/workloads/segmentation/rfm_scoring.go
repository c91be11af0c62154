package segmentation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/runner"
	"northwind-analytics/internal/segment"
	"northwind-analytics/internal/session"
)

// RFMScoringTest re-scores every customer on each pass and checks that the
// segment summary still accounts for the same revenue and customers.
type RFMScoringTest struct {
	revenue   float64
	customers int
	ready     bool
}

func (t *RFMScoringTest) Setup(ctx context.Context, ds *session.Dataset, logger *logrus.Logger) error {
	logger.Println("Setting up RFMScoringTest...")
	t.revenue, t.customers = summarize(segment.SegmentSummary(segment.RFM(ds.Full())))
	t.ready = true
	return nil
}

func summarize(stats []segment.SegmentStat) (revenue float64, customers int) {
	for _, s := range stats {
		revenue += s.Revenue
		customers += s.Customers
	}
	return revenue, customers
}

func (t *RFMScoringTest) Run(ctx context.Context, ds *session.Dataset, concurrency int, duration time.Duration, logger *logrus.Logger) (*runner.Result, error) {
	if !t.ready {
		return nil, errors.New("segmentation: Setup was not run")
	}
	full := ds.Full()

	result := runner.Measure(ctx, concurrency, duration, func(ctx context.Context, worker, i int) (bool, error) {
		revenue, customers := summarize(segment.SegmentSummary(segment.RFM(full)))
		segment.DiscountImpact(full)
		return revenue == t.revenue && customers == t.customers, nil
	})
	return result, nil
}

func (t *RFMScoringTest) Teardown(ctx context.Context, logger *logrus.Logger) error {
	t.ready = false
	return nil
}
