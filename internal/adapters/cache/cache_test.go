package cache

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repository interface {
	core.CacheRepository
	Stop() error
}

func newEntry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:                  key,
		IsPhishing:           true,
		ConfidencePhishing:   0.87,
		ConfidenceLegitimate: 0.13,
		ModelVersion:         "rf-test",
		CreatedAt:            now,
		ExpiresAt:            now.Add(ttl),
	}
}

func exerciseRepository(t *testing.T, repo repository) {
	ctx := context.Background()
	defer repo.Stop()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, newEntry("live", time.Hour)))
	got, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.True(t, got.IsPhishing)
	assert.Equal(t, 0.87, got.ConfidencePhishing)
	assert.Equal(t, 0.13, got.ConfidenceLegitimate)
	assert.Equal(t, "rf-test", got.ModelVersion)
	assert.Equal(t, "live", got.Key)

	replacement := newEntry("live", time.Hour)
	replacement.IsPhishing = false
	require.NoError(t, repo.Set(ctx, replacement))
	got, err = repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.False(t, got.IsPhishing)

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Get(ctx, "live")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, repo.Cleanup(ctx))
}

func TestMemoryCache(t *testing.T) {
	exerciseRepository(t, NewMemoryCache(zap.NewNop(), time.Hour))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, newEntry("old", -time.Minute)))
	require.NoError(t, c.Set(ctx, newEntry("new", time.Hour)))

	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Millisecond)
	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Stop())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache", "phish.db"), zap.NewNop(), time.Hour)
	require.NoError(t, err)
	exerciseRepository(t, c)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "phish.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, newEntry("old", -time.Minute)))
	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, c.Cleanup(ctx))
	var n int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM prediction_cache`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PHISH_DETECTOR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PHISH_DETECTOR_TEST_REDIS_URL not set, skipping Redis test")
	}
	c, err := NewRedisCache(url, "phish:test:"+strconv.FormatInt(time.Now().UnixNano(), 10), zap.NewNop())
	require.NoError(t, err)
	exerciseRepository(t, c)
}

func TestPostgresCache(t *testing.T) {
	dsn := os.Getenv("PHISH_DETECTOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PHISH_DETECTOR_TEST_POSTGRES_DSN not set, skipping PostgreSQL test")
	}
	c, err := NewPostgresCache(dsn, zap.NewNop(), 0)
	require.NoError(t, err)
	exerciseRepository(t, c)
}

func TestDialectBind(t *testing.T) {
	q := `DELETE FROM prediction_cache WHERE cache_key = ? AND expires_at <= ?`
	assert.Equal(t, q, sqliteDialect.bind(q))
	assert.Equal(t, `DELETE FROM prediction_cache WHERE cache_key = $1 AND expires_at <= $2`, postgresDialect.bind(q))
}

func TestDecodeEntry(t *testing.T) {
	entry, err := decodeEntry("k", map[string]string{
		"is_phishing":           "true",
		"confidence_phishing":   "0.75",
		"confidence_legitimate": "0.25",
		"model_version":         "v1",
		"created_at":            "1700000000000",
		"expires_at":            "1700000060000",
	})
	require.NoError(t, err)
	assert.True(t, entry.IsPhishing)
	assert.Equal(t, time.Minute, entry.ExpiresAt.Sub(entry.CreatedAt))

	_, err = decodeEntry("k", map[string]string{"is_phishing": "maybe"})
	assert.Error(t, err)
}
