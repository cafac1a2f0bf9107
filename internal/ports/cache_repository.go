package ports

import (
	"github.com/mikey/phish-detector/internal/core"
)

// ManagedCache is a prediction cache that owns background work or
// connections and must be stopped on shutdown
type ManagedCache interface {
	core.CacheRepository

	// Stop releases the cache's resources
	Stop() error
}
