package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hearthgate/hearthgate/internal/logging"
)

// Redis is a Cache backed by a shared redis instance, for deployments where
// several gateway processes should agree on cached decisions. Redis handles
// expiry natively, so no lazy eviction is needed here.
//
// A cache must never fail its caller: redis errors are logged and reported
// as misses.
type Redis struct {
	client *redis.Client
	logger logging.Logger
}

func NewRedis(client *redis.Client, logger logging.Logger) *Redis {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Redis{client: client, logger: logger}
}

// Dial connects to addr and verifies the connection with a short ping.
func Dial(ctx context.Context, addr string, logger logging.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return NewRedis(client, logger), nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn(ctx, "cache get failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn(ctx, "cache set failed", "key", key, "error", err)
	}
}
