package factory

import (
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/model"
	"go.uber.org/zap"
)

// ModelFactory loads the trained model artifact
type ModelFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg *config.Config, logger *zap.Logger) *ModelFactory {
	return &ModelFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// LoadModel reads and validates the artifact at model.path
func (f *ModelFactory) LoadModel() (*model.Model, error) {
	path := f.cfg.GetModel().Path
	m, err := model.Load(path)
	if err != nil {
		return nil, err
	}

	meta := m.Metadata()
	f.logger.Info("Loaded model",
		zap.String("path", path),
		zap.String("version", meta.Version),
		zap.Int("features", m.Schema().Len()),
		zap.Time("trained_at", meta.TrainedAt))
	return m, nil
}
