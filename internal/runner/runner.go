// Package runner drives concurrent read workloads against one immutable
// dataset and reports latency percentiles.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/config"
	"northwind-analytics/internal/session"
)

type Workload interface {
	Setup(ctx context.Context, ds *session.Dataset, logger *logrus.Logger) error
	Run(ctx context.Context, ds *session.Dataset, concurrency int, duration time.Duration, logger *logrus.Logger) (*Result, error)
	Teardown(ctx context.Context, logger *logrus.Logger) error
}

type Result struct {
	Operations     int64
	Errors         int64
	Throughput     float64
	P95Latency     time.Duration
	P99Latency     time.Duration
	AverageLatency time.Duration
	ErrorRate      float64
	TotalTime      time.Duration
	// DataIntegrity is false if any pass disagreed with the baseline.
	DataIntegrity  bool
}

func Run(ctx context.Context, sess *session.Session, workload Workload, concurrency int, duration time.Duration, logger *logrus.Logger) (*Result, error) {
	ds, err := sess.Current()
	if err != nil {
		return nil, err
	}

	if err := workload.Setup(ctx, ds, logger); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	defer func() {
		if err := workload.Teardown(ctx, logger); err != nil {
			config.LogError(logger, "runner", "Run", "teardown", nil, err)
		}
	}()

	result, err := workload.Run(ctx, ds, concurrency, duration, logger)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"dataset":    ds.ID.String(),
		"operations": result.Operations,
		"errors":     result.Errors,
		"p99":        result.P99Latency.String(),
		"integrity":  result.DataIntegrity,
	}).Info("workload finished")
	return result, nil
}

// Op is one pass of a workload. intact reports whether the pass reproduced
// the workload's baseline.
type Op func(ctx context.Context, worker, iteration int) (intact bool, err error)

// Measure runs op on concurrency goroutines until duration elapses or ctx is
// done. Each worker keeps its own histogram; they are merged at the end.
func Measure(ctx context.Context, concurrency int, duration time.Duration, op Op) *Result {
	concurrency = max(concurrency, 1)

	var (
		wg         sync.WaitGroup
		operations atomic.Int64
		errs       atomic.Int64
		broken     atomic.Int64
	)
	// Max latency of 10 seconds in microseconds, 3 significant figures
	histograms := make([]*hdrhistogram.Histogram, concurrency)
	totalStartTime := time.Now()

	for w := 0; w < concurrency; w++ {
		histograms[w] = hdrhistogram.New(1, 10000000000, 3)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; time.Since(totalStartTime) < duration && ctx.Err() == nil; i++ {
				opStartTime := time.Now()
				intact, err := op(ctx, w, i)
				if err != nil {
					errs.Add(1)
					continue
				}
				operations.Add(1)
				histograms[w].RecordValue(time.Since(opStartTime).Microseconds())
				if !intact {
					broken.Add(1)
				}
			}
		}(w)
	}

	wg.Wait()

	histogram := hdrhistogram.New(1, 10000000000, 3)
	for _, h := range histograms {
		histogram.Merge(h)
	}

	result := &Result{
		Operations:    operations.Load(),
		Errors:        errs.Load(),
		TotalTime:     time.Since(totalStartTime),
		DataIntegrity: broken.Load() == 0,
	}
	if secs := result.TotalTime.Seconds(); secs > 0 {
		result.Throughput = float64(result.Operations) / secs
	}
	if attempts := result.Operations + result.Errors; attempts > 0 {
		result.ErrorRate = float64(result.Errors) / float64(attempts)
	}
	result.AverageLatency = time.Duration(histogram.Mean()) * time.Microsecond
	result.P95Latency = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
	result.P99Latency = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
	return result
}
