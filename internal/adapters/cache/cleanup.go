package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type cleaner interface {
	Cleanup(ctx context.Context) error
}

// runCleanup periodically removes expired entries until stopCh is closed
func runCleanup(c cleaner, logger *zap.Logger, every time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
