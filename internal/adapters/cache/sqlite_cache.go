package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS prediction_cache (
			cache_key TEXT PRIMARY KEY,
			is_phishing BOOLEAN NOT NULL,
			confidence_phishing REAL NOT NULL,
			confidence_legitimate REAL NOT NULL,
			model_version TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_cache_expires_at ON prediction_cache(expires_at)`,
	},
	upsert: `INSERT OR REPLACE INTO prediction_cache
		(cache_key, is_phishing, confidence_phishing, confidence_legitimate, model_version, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
}

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache creates a new SQLite cache, creating the database file's
// directory when needed
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	base, err := newSQLCache(db, sqliteDialect, logger, cleanupFreq)
	if err != nil {
		return nil, err
	}
	return &SQLiteCache{base}, nil
}
