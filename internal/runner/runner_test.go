package runner_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/runner"
	"northwind-analytics/internal/sample"
	"northwind-analytics/internal/session"
	"northwind-analytics/internal/workloads"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func loadedSession(tb testing.TB) *session.Session {
	tb.Helper()
	opts := sample.DefaultOptions()
	opts.Orders = 200
	s := session.New(quietLogger())
	if _, err := s.Reload(context.Background(), sample.Source{Options: opts}); err != nil {
		tb.Fatalf("Reload() error = %v", err)
	}
	return s
}

func TestMeasure(t *testing.T) {
	result := runner.Measure(context.Background(), 4, 50*time.Millisecond, func(ctx context.Context, worker, i int) (bool, error) {
		if i%5 == 4 {
			return false, errors.New("boom")
		}
		return true, nil
	})

	if result.Operations == 0 {
		t.Fatal("no operations recorded")
	}
	if result.Errors == 0 || result.ErrorRate <= 0 || result.ErrorRate >= 1 {
		t.Errorf("Errors = %d, ErrorRate = %f", result.Errors, result.ErrorRate)
	}
	if !result.DataIntegrity {
		t.Error("DataIntegrity = false, want true")
	}
	if result.P99Latency < result.P95Latency {
		t.Errorf("P99 %v < P95 %v", result.P99Latency, result.P95Latency)
	}
}

func TestMeasure_BrokenPass(t *testing.T) {
	result := runner.Measure(context.Background(), 2, 20*time.Millisecond, func(ctx context.Context, worker, i int) (bool, error) {
		return !(worker == 1 && i == 0), nil
	})
	if result.DataIntegrity {
		t.Error("DataIntegrity = true after a broken pass")
	}
}

func TestMeasure_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := runner.Measure(ctx, 3, time.Hour, func(ctx context.Context, worker, i int) (bool, error) {
		return true, nil
	})
	if result.Operations != 0 {
		t.Errorf("Operations = %d after cancel, want 0", result.Operations)
	}
}

func TestRun_Workloads(t *testing.T) {
	sess := loadedSession(t)
	for group, tests := range workloads.New() {
		for name, w := range tests {
			t.Run(group+"/"+name, func(t *testing.T) {
				result, err := runner.Run(context.Background(), sess, w, 4, 100*time.Millisecond, quietLogger())
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if result.Operations == 0 {
					t.Error("no operations recorded")
				}
				if result.Errors != 0 {
					t.Errorf("Errors = %d", result.Errors)
				}
				if !result.DataIntegrity {
					t.Error("a pass disagreed with the baseline")
				}
			})
		}
	}
}

func TestRun_NoDataset(t *testing.T) {
	w := workloads.New()["dashboard"]["filter_aggregate"]
	if _, err := runner.Run(context.Background(), session.New(quietLogger()), w, 1, time.Millisecond, quietLogger()); !errors.Is(err, session.ErrNotLoaded) {
		t.Errorf("Run() error = %v, want ErrNotLoaded", err)
	}
}

func BenchmarkRunner(b *testing.B) {
	sess := loadedSession(b)
	for group, tests := range workloads.New() {
		for name, w := range tests {
			b.Run(fmt.Sprintf("%s/%s", group, name), func(b *testing.B) {
				result, err := runner.Run(context.Background(), sess, w, 8, time.Second, quietLogger())
				if err != nil {
					b.Fatalf("Benchmark failed: %v", err)
				}
				b.Logf("Result: %+v", result)
			})
		}
	}
}
