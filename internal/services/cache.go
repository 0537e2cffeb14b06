package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moviweb/internal/models"
	"github.com/desertthunder/moviweb/internal/shared"
	"github.com/redis/go-redis/v9"
)

const titleCachePrefix = "omdb:title:"

// RedisCache implements [MetadataCache] on a Redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// OpenRedisCache connects to the server described by the [cache] config section and pings it.
func OpenRedisCache(ctx context.Context, cfg shared.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisCache(client), nil
}

// CacheKey returns the Redis key for title.
func CacheKey(title string) string {
	return titleCachePrefix + shared.NormalizeTitle(title)
}

func (c *RedisCache) Get(ctx context.Context, title string) (*models.MovieMetadata, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(title)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	var meta models.MovieMetadata
	if err := shared.UnmarshalJSON(data, &meta); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached entry: %w", err)
	}
	return &meta, true, nil
}

func (c *RedisCache) Set(ctx context.Context, title string, meta *models.MovieMetadata, ttl time.Duration) error {
	data, err := shared.MarshalJSON(meta, false)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(title), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
