package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"commerce-be/pkg/logger"
	"commerce-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Report cache TTL policy. Views churn faster than sales aggregates, so their
// reports go stale sooner; keep views < sales if tuning these.
const (
	TTLViewsReport = 2 * time.Minute
	TTLSalesReport = 5 * time.Minute
)

// ReportCache memoizes report payloads in Redis under the cache namespace.
// The cache key must be a pure function of every request parameter that
// affects the report body; collisions are the caller's bug.
type ReportCache struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewReportCache creates a new report cache on top of the shared Redis client
func NewReportCache(redisClient *redis.Client, logger *logger.Logger) *ReportCache {
	return &ReportCache{
		redis:  redisClient,
		logger: logger,
	}
}

// Put serializes value to JSON and stores it under the cache key with the
// given TTL, unconditionally overwriting any previous entry and its expiry.
func (c *ReportCache) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize report for caching: %w", err)
	}

	cacheKey := c.redis.Keys.Cache(key)
	if err := c.redis.Set(ctx, cacheKey, string(payload), ttl); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	c.logger.Debug("Report cached", zap.String("cache_key", key), zap.Duration("ttl", ttl))
	return nil
}

// Get reads a cached report into dest. Returns false on a missing key and
// also on a corrupt payload; a broken cache entry must never fail the report.
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cacheKey := c.redis.Keys.Cache(key)

	payload, err := c.redis.Get(ctx, cacheKey)
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read report cache: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		c.logger.Warn("Corrupt cache entry, treating as miss",
			zap.String("cache_key", key),
			zap.Error(err))
		return false, nil
	}

	return true, nil
}

// Invalidate deletes every key matching pattern and returns the count deleted.
// An empty pattern means "all report-cache entries". Concurrent writers may
// repopulate keys immediately afterwards; this is a flush, not a barrier.
func (c *ReportCache) Invalidate(ctx context.Context, pattern string) (int64, error) {
	if pattern == "" {
		pattern = c.redis.Keys.CachePattern()
	}

	keys, err := c.redis.ScanKeys(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := c.redis.Delete(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache keys: %w", err)
	}

	c.logger.Info("Report cache invalidated",
		zap.String("pattern", pattern),
		zap.Int64("deleted", deleted))
	return deleted, nil
}
