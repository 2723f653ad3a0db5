// Package cache stores analysis results and rate-limit counters in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is implemented by RedisCache and by in-memory fakes in tests.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get reports found=false, with a nil error, for a missing key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error

	// InvalidateStudent drops every cached analysis of the student and
	// returns how many entries were removed.
	InvalidateStudent(ctx context.Context, studentID string) (int64, error)

	// IncrWithExpiry increments a counter. The expiry is set when the counter
	// is created and never extended.
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

const scanBatch = 100

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache parses a redis:// or rediss:// URL. It does not dial; call Ping.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) InvalidateStudent(ctx context.Context, studentID string) (int64, error) {
	var (
		deleted int64
		batch   []string
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, StudentAnalysisPattern(studentID), scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("redis unlink: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("redis unlink: %w", err)
	}
	return deleted, nil
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
