package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

var postgresDialect = dialect{
	name: "postgres",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS prediction_cache (
			cache_key CHAR(64) PRIMARY KEY,
			is_phishing BOOLEAN NOT NULL,
			confidence_phishing DOUBLE PRECISION NOT NULL,
			confidence_legitimate DOUBLE PRECISION NOT NULL,
			model_version VARCHAR(64) NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_cache_expires_at ON prediction_cache(expires_at)`,
	},
	upsert: `INSERT INTO prediction_cache
		(cache_key, is_phishing, confidence_phishing, confidence_legitimate, model_version, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			is_phishing = EXCLUDED.is_phishing,
			confidence_phishing = EXCLUDED.confidence_phishing,
			confidence_legitimate = EXCLUDED.confidence_legitimate,
			model_version = EXCLUDED.model_version,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
	numbered: true,
}

// PostgresCache is a PostgreSQL implementation of the CacheRepository interface
type PostgresCache struct {
	*sqlCache
}

// NewPostgresCache creates a new PostgreSQL cache through the pgx driver
func NewPostgresCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*PostgresCache, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	base, err := newSQLCache(db, postgresDialect, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}
	return &PostgresCache{base}, nil
}
