package dashboard

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/sample"
	"northwind-analytics/internal/session"
)

func dataset(t *testing.T) *session.Dataset {
	t.Helper()
	opts := sample.DefaultOptions()
	opts.Customers, opts.Products, opts.Orders = 15, 20, 120
	ds, err := session.NewDataset(sample.Generate(opts))
	if err != nil {
		t.Fatalf("NewDataset() error = %v", err)
	}
	return ds
}

func TestFilterAggregateTest(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ds := dataset(t)

	w := &FilterAggregateTest{}
	if _, err := w.Run(context.Background(), ds, 1, time.Millisecond, logger); err == nil {
		t.Fatal("Run() before Setup should fail")
	}
	if err := w.Setup(context.Background(), ds, logger); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	// unfiltered, 12 countries at most, 8 categories at most, one date window
	if len(w.criteria) < 3 || len(w.criteria) != len(w.baseline) {
		t.Fatalf("criteria = %d, baseline = %d", len(w.criteria), len(w.baseline))
	}
	for i := 1; i < len(w.baseline); i++ {
		if w.baseline[i] > w.baseline[0] {
			t.Errorf("criteria %d revenue %.2f exceeds unfiltered %.2f", i, w.baseline[i], w.baseline[0])
		}
	}

	result, err := w.Run(context.Background(), ds, 3, 50*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Operations == 0 || !result.DataIntegrity {
		t.Errorf("result = %+v", result)
	}

	if err := w.Teardown(context.Background(), logger); err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}
	if w.criteria != nil {
		t.Error("Teardown() kept the criteria")
	}
}
