package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps the go-redis client with the command surface the analytics
// service needs, plus per-command logging.
type Client struct {
	rdb  *redis.Client
	Keys *Keys
	log  *zap.Logger
}

// NewClient creates a new Redis client for the given URL. The namespace is the
// fixed literal prefix shared by every key this service writes.
func NewClient(redisURL string, namespace string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, Keys: NewKeys(namespace), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	dur := time.Since(start)
	if err != nil && err != redis.Nil {
		c.log.Info("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return err
}

// Incr increments an integer counter
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	v, err := c.rdb.Incr(ctx, key).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_incr",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_incr",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Int64("value", v),
			zap.Duration("duration", dur))
	}
	return v, err
}

// IncrByFloat increments a floating-point accumulator
func (c *Client) IncrByFloat(ctx context.Context, key string, value float64) (float64, error) {
	start := time.Now()
	v, err := c.rdb.IncrByFloat(ctx, key, value).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_incrbyfloat",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_incrbyfloat",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Float64("value", v),
			zap.Duration("duration", dur))
	}
	return v, err
}

// SAdd adds members to a set
func (c *Client) SAdd(ctx context.Context, key string, members ...interface{}) error {
	start := time.Now()
	err := c.rdb.SAdd(ctx, key, members...).Err()
	dur := time.Since(start)
	c.log.Debug("redis_sadd",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Int("members", len(members)),
		zap.Duration("duration", dur),
		zap.Error(err))
	return err
}

// SCard returns the cardinality of a set
func (c *Client) SCard(ctx context.Context, key string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.SCard(ctx, key).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_scard",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_scard",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Int64("result", n),
			zap.Duration("duration", dur))
	}
	return n, err
}

// ZIncrBy increments a member's score in a sorted set
func (c *Client) ZIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error) {
	start := time.Now()
	score, err := c.rdb.ZIncrBy(ctx, key, increment, member).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_zincrby",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_zincrby",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Float64("score", score),
			zap.Duration("duration", dur))
	}
	return score, err
}

// ZRevRangeByScoreWithScores reads a descending score range from a sorted set
func (c *Client) ZRevRangeByScoreWithScores(ctx context.Context, key string, opt *redis.ZRangeBy) ([]redis.Z, error) {
	start := time.Now()
	entries, err := c.rdb.ZRevRangeByScoreWithScores(ctx, key, opt).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_zrevrangebyscore",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_zrevrangebyscore",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Int("entries", len(entries)),
			zap.Duration("duration", dur))
	}
	return entries, err
}

// Expire sets a TTL on a key
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Expire(ctx, key, ttl).Err()
	dur := time.Since(start)
	c.log.Debug("redis_expire",
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur),
		zap.Error(err))
	return err
}

// TTL returns the remaining time-to-live of a key
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

// ScanKeys returns all keys matching a pattern. Backed by KEYS, so reserve it
// for admin-triggered invalidation, never the request hot path.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	start := time.Now()
	keys, err := c.rdb.Keys(ctx, pattern).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_keys",
			zap.String("pattern", pattern),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_keys",
			zap.String("pattern", pattern),
			zap.Int("matched", len(keys)),
			zap.Duration("duration", dur))
	}
	return keys, err
}

// Delete removes keys from Redis and returns the number actually deleted
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Del(ctx, keys...).Result()
	dur := time.Since(start)
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Int64("deleted", n),
		zap.Duration("duration", dur),
		zap.Error(err))
	return n, err
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_ping",
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_ping", zap.Duration("duration", dur))
	}
	return err
}

// Pipeline creates a new pipeline for batch operations
func (c *Client) Pipeline() redis.Pipeliner {
	return c.rdb.Pipeline()
}

// prefixForLog returns a safe prefix of a key to keep log lines bounded
func prefixForLog(key string) string {
	if len(key) <= 32 {
		return key
	}
	return key[:32] + "…"
}
