package factory

import (
	"fmt"

	"github.com/mikey/phish-detector/internal/adapters/httpapi"
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/model"
	"github.com/mikey/phish-detector/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// FrontendFactory creates the serving frontend based on configuration
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.DetectionService
	model    *model.Model
	gatherer prometheus.Gatherer
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.DetectionService,
	m *model.Model,
	registry *prometheus.Registry,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		model:    m,
		gatherer: registry,
	}
}

// CreateFrontend creates the frontend named by server.frontend
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	switch serverCfg.Frontend {
	case "http":
		meta := f.model.Metadata()
		info := httpapi.ModelInfo{
			Version:      meta.Version,
			Schema:       features.SchemaVersion,
			Features:     f.model.Schema().Len(),
			TrainedAt:    meta.TrainedAt,
			Samples:      meta.Samples,
			TestAccuracy: meta.TestAccuracy,
		}
		return httpapi.NewServer(f.service, info, f.gatherer, httpapi.Options{
			ListenAddress:  serverCfg.ListenAddress,
			MaxRequestSize: serverCfg.MaxRequestSize,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported frontend: %s", serverCfg.Frontend)
	}
}
