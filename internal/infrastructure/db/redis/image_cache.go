package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const imageTTL = 10 * time.Minute

// ImageCache caches the bytes served by the public avatar and task-image
// endpoints. Every operation is best-effort: a Redis failure is logged and
// degrades to a cache miss.
type ImageCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewImageCache creates an ImageCache wrapping the given Redis client.
func NewImageCache(client *redis.Client, logger zerolog.Logger) *ImageCache {
	return &ImageCache{client: client, logger: logger}
}

func (c *ImageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("image cache get failed")
		}
		return nil, false
	}
	return data, true
}

func (c *ImageCache) Set(ctx context.Context, key string, data []byte) {
	if err := c.client.Set(ctx, key, data, imageTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("image cache set failed")
	}
}

func (c *ImageCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("image cache invalidate failed")
	}
}
