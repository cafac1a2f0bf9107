package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/di"
	"github.com/mikey/phish-detector/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if err := container.Invoke(func(l *zap.Logger) { logger = l }); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Run the application; a model that cannot be loaded stops startup here
	if err := container.Invoke(run); err != nil {
		logger.Fatal("Application error", zap.Error(dig.RootCause(err)))
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	frontend ports.Frontend,
	cacheRepo ports.ManagedCache,
) error {
	serverCfg, err := cfg.GetServer()
	if err != nil {
		return err
	}

	// Start the frontend
	errCh := make(chan error, 1)
	go func() {
		errCh <- frontend.Start()
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Frontend stopped unexpectedly", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := frontend.Stop(ctx); err != nil {
		logger.Error("Failed to stop frontend", zap.Error(err))
	}

	// Stop the cache if needed
	if cacheRepo != nil {
		if err := cacheRepo.Stop(); err != nil {
			logger.Error("Failed to stop cache", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
