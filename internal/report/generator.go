package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/config"
	"northwind-analytics/internal/session"
	"northwind-analytics/internal/view"
)

// Generator serves reports for the session's current dataset.
type Generator struct {
	sess   *session.Session
	cache  *Cache
	opts   Options
	logger *logrus.Logger
}

func NewGenerator(sess *session.Session, cache *Cache, opts Options, logger *logrus.Logger) *Generator {
	if cache == nil {
		cache = &Cache{}
	}
	return &Generator{sess: sess, cache: cache, opts: opts, logger: logger}
}

// Generate filters the current dataset by c and builds its report. Cache
// failures are logged and otherwise ignored.
func (g *Generator) Generate(ctx context.Context, c view.Criteria) (*Report, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	ds, err := g.sess.Current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	key := cacheKey(ds.ID, g.opts.granularity(), c)
	var cached Report
	ok, err := cacheGet(ctx, g.cache, key, &cached)
	if err != nil {
		config.LogError(g.logger, "report", "Generate", "cache get", key, err)
	}
	if ok {
		g.logger.WithFields(logrus.Fields{"key": key}).Debug("report cache hit")
		return &cached, nil
	}

	r, warnings := Build(view.Filter(ds.Full(), c), g.opts)
	r.DatasetID = ds.ID.String()
	r.Criteria = c
	for _, w := range warnings {
		g.logger.WithFields(logrus.Fields{"dataset": r.DatasetID}).Warn(w.Error())
	}

	if err := g.cache.set(ctx, key, r); err != nil {
		config.LogError(g.logger, "report", "Generate", "cache set", key, err)
	}
	g.logger.WithFields(logrus.Fields{
		"dataset":  r.DatasetID,
		"orders":   r.KPIs.Orders,
		"warnings": len(warnings),
		"ms":       time.Since(start).Milliseconds(),
	}).Info("report generated")
	return r, nil
}
