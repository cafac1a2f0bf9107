package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache stores each prediction as a hash whose expiry is managed by
// Redis itself, so Cleanup has nothing to do
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache connects to the Redis server at url
func NewRedisCache(url, prefix string, logger *zap.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, prefix: prefix, logger: logger}, nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get retrieves a live prediction for key
func (c *RedisCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	fields, err := c.client.HGetAll(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	if len(fields) == 0 {
		return nil, core.ErrCacheMiss
	}

	entry, err := decodeEntry(key, fields)
	if err != nil {
		c.logger.Warn("Dropping malformed cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, c.key(key))
		return nil, core.ErrCacheMiss
	}
	if !time.Now().Before(entry.ExpiresAt) {
		return nil, core.ErrCacheMiss
	}
	return entry, nil
}

// Set stores a cache entry with a TTL matching its expiry
func (c *RedisCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	k := c.key(entry.Key)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, k,
		"is_phishing", strconv.FormatBool(entry.IsPhishing),
		"confidence_phishing", strconv.FormatFloat(entry.ConfidencePhishing, 'g', -1, 64),
		"confidence_legitimate", strconv.FormatFloat(entry.ConfidenceLegitimate, 'g', -1, 64),
		"model_version", entry.ModelVersion,
		"created_at", entry.CreatedAt.UnixMilli(),
		"expires_at", entry.ExpiresAt.UnixMilli(),
	)
	pipe.PExpire(ctx, k, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys on its own
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection pool
func (c *RedisCache) Stop() error {
	return c.client.Close()
}

func decodeEntry(key string, fields map[string]string) (*core.CacheEntry, error) {
	entry := &core.CacheEntry{Key: key, ModelVersion: fields["model_version"]}
	var err error
	if entry.IsPhishing, err = strconv.ParseBool(fields["is_phishing"]); err != nil {
		return nil, err
	}
	if entry.ConfidencePhishing, err = strconv.ParseFloat(fields["confidence_phishing"], 64); err != nil {
		return nil, err
	}
	if entry.ConfidenceLegitimate, err = strconv.ParseFloat(fields["confidence_legitimate"], 64); err != nil {
		return nil, err
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = time.UnixMilli(created)
	entry.ExpiresAt = time.UnixMilli(expires)
	return entry, nil
}
