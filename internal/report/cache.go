package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"northwind-analytics/internal/aggregate"
	"northwind-analytics/internal/config"
	"northwind-analytics/internal/view"
)

// Cache stores finished reports in Redis. A Cache without a client is a
// no-op: every get misses and every set succeeds.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(c config.Cache) *Cache {
	if !c.Enabled {
		return &Cache{}
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
			PoolSize: 100,
		}),
		ttl: ttl,
	}
}

func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func cacheGet[T any](ctx context.Context, c *Cache, key string, dest *T) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, obj any) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// cacheKey identifies a report by dataset snapshot, period granularity and
// criteria, so a reload never serves a stale report.
func cacheKey(datasetID uuid.UUID, g aggregate.Granularity, criteria view.Criteria) string {
	b, _ := json.Marshal(criteria)
	sum := sha256.Sum256(b)
	return fmt.Sprintf("report:northwind:%s:%s:%s", datasetID, g, hex.EncodeToString(sum[:8]))
}
