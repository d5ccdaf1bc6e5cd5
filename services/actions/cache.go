package actions

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisVerificationCache implements VerificationCache over the shared Redis
// cache client. Cache misses and Redis outages degrade to direct lookups.
type RedisVerificationCache struct {
	Client *redis.Client
	Logger *zap.Logger
}

func (c *RedisVerificationCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.Logger.Warn("verification cache read failed", zap.Error(err))
		return "", false
	}
	return val, true
}

func (c *RedisVerificationCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := c.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.Logger.Warn("verification cache write failed", zap.Error(err))
	}
}
