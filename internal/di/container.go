package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/factory"
	"github.com/mikey/phish-detector/internal/logging"
	"github.com/mikey/phish-detector/internal/metrics"
	"github.com/mikey/phish-detector/internal/model"
	"github.com/mikey/phish-detector/internal/ports"
	"github.com/mikey/phish-detector/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildContainer creates and configures a dependency injection container
// for the detection server
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (ports.ManagedCache, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry, m *model.Model) (*metrics.Recorder, error) {
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return nil, err
		}
		rec.SetModel(m.Version(), m.Schema().Len())
		return rec, nil
	}); err != nil {
		return nil, err
	}

	// Register detection service
	if err := container.Provide(func(
		m *model.Model,
		tp *utils.TextProcessor,
		cacheRepo ports.ManagedCache,
		rec *metrics.Recorder,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.DetectionService, error) {
		cacheCfg, err := cfg.GetCache()
		if err != nil {
			return nil, err
		}
		var repo core.CacheRepository
		if cacheRepo != nil {
			repo = cacheRepo
		}
		return core.NewDetectionService(m, m, tp, repo, rec, logger, core.ServiceOptions{
			CacheEnabled:   cacheCfg.Enabled,
			CacheTTL:       cacheCfg.TTL,
			WordcloudTerms: cfg.GetFeatures().WordcloudTerms,
		}), nil
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideDetection registers the factories, model and text processor
// shared by the server and the CLI
func provideDetection(container *dig.Container) error {
	for _, ctor := range []interface{}{
		factory.NewModelFactory,
		factory.NewCacheFactory,
		factory.NewTextProcessorFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	// Register model
	if err := container.Provide(func(f *factory.ModelFactory) (*model.Model, error) {
		return f.LoadModel()
	}); err != nil {
		return err
	}

	// Register text processor
	return container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	})
}
