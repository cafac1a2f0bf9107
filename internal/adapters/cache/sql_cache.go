package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name   string
	schema []string
	upsert string
	// numbered backends take $1, $2... instead of ? placeholders
	numbered bool
}

// bind rewrites ? placeholders for backends that number them
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlCache stores predictions in a prediction_cache table. Timestamps are
// unix milliseconds so expiry checks do not depend on database time zones.
type sqlCache struct {
	db       *sql.DB
	dialect  dialect
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSQLCache(db *sql.DB, d dialect, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create %s cache schema: %w", d.name, err)
		}
	}

	cache := &sqlCache{
		db:      db,
		dialect: d,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go runCleanup(cache, logger, cleanupFreq, cache.stopCh)
	}
	return cache, nil
}

// Get retrieves a live prediction for key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	entry := core.CacheEntry{Key: key}
	var createdAt, expiresAt int64

	err := c.db.QueryRowContext(ctx, c.dialect.bind(`
		SELECT is_phishing, confidence_phishing, confidence_legitimate, model_version, created_at, expires_at
		FROM prediction_cache
		WHERE cache_key = ? AND expires_at > ?
	`), key, time.Now().UnixMilli()).Scan(
		&entry.IsPhishing,
		&entry.ConfidencePhishing,
		&entry.ConfidenceLegitimate,
		&entry.ModelVersion,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.CreatedAt = time.UnixMilli(createdAt)
	entry.ExpiresAt = time.UnixMilli(expiresAt)
	return &entry, nil
}

// Set stores a cache entry, replacing any previous one for the same key
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, c.dialect.bind(c.dialect.upsert),
		entry.Key,
		entry.IsPhishing,
		entry.ConfidencePhishing,
		entry.ConfidenceLegitimate,
		entry.ModelVersion,
		entry.CreatedAt.UnixMilli(),
		entry.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, c.dialect.bind(`DELETE FROM prediction_cache WHERE cache_key = ?`), key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, c.dialect.bind(`DELETE FROM prediction_cache WHERE expires_at <= ?`), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err = c.db.Close(); err != nil {
			c.logger.Error("Failed to close cache database", zap.String("dialect", c.dialect.name), zap.Error(err))
		}
	})
	return err
}
