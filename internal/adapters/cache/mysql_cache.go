package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS prediction_cache (
			cache_key CHAR(64) PRIMARY KEY,
			is_phishing BOOLEAN NOT NULL,
			confidence_phishing DOUBLE NOT NULL,
			confidence_legitimate DOUBLE NOT NULL,
			model_version VARCHAR(64) NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_prediction_cache_expires_at (expires_at)
		)`,
	},
	upsert: `INSERT INTO prediction_cache
		(cache_key, is_phishing, confidence_phishing, confidence_legitimate, model_version, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			is_phishing = VALUES(is_phishing),
			confidence_phishing = VALUES(confidence_phishing),
			confidence_legitimate = VALUES(confidence_legitimate),
			model_version = VALUES(model_version),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)`,
}

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	base, err := newSQLCache(db, mysqlDialect, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}
	return &MySQLCache{base}, nil
}
