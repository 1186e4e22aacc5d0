package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	// Prefix namespaces the counter keys. Defaults to "tgr".
	Prefix string
	// MaxFailures is how many failures an identifier may record per window before
	// Allow starts returning ErrRateLimited.
	MaxFailures int
	// Window is the lifetime of a counter, measured from its first failure.
	Window time.Duration
}

// Limiter counts failures per identifier in Redis.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "tgr"
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow reports whether id is still within its failure budget. It does not count
// anything itself.
func (l *Limiter) Allow(ctx context.Context, id string) error {
	count, err := l.Failures(ctx, id)
	if err != nil {
		return err
	}
	if count >= l.config.MaxFailures {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure counts one failure for id and returns ErrRateLimited when that
// failure exhausted the budget.
func (l *Limiter) RecordFailure(ctx context.Context, id string) error {
	count, err := l.incrementWithTTL(ctx, l.key(id), l.config.Window)
	if err != nil {
		return err
	}
	if count >= int64(l.config.MaxFailures) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for id.
func (l *Limiter) Reset(ctx context.Context, id string) error {
	if err := l.redis.Del(ctx, l.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Failures returns the failures recorded for id in the current window.
func (l *Limiter) Failures(ctx context.Context, id string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(id string) string {
	return l.config.Prefix + ":" + id
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: only the first hit sets the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
