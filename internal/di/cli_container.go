package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-detector/internal/adapters/cli"
	"github.com/mikey/phish-detector/internal/config"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/logging"
	"github.com/mikey/phish-detector/internal/model"
	"github.com/mikey/phish-detector/internal/training"
	"github.com/mikey/phish-detector/internal/utils"
)

// CLIFlags contains the global command line flags of the CLI application
type CLIFlags struct {
	ConfigFile string
	ModelPath  string
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI application. The model is only loaded by commands that need it.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration, letting flags override the file
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		if flags.ModelPath != "" {
			cfg.GetViper().Set("model.path", flags.ModelPath)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}

	// Register detection service with no cache or metrics
	if err := container.Provide(func(
		m *model.Model,
		tp *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.DetectionService {
		return core.NewDetectionService(m, m, tp, nil, nil, logger, core.ServiceOptions{
			WordcloudTerms: cfg.GetFeatures().WordcloudTerms,
		})
	}); err != nil {
		return nil, err
	}

	// Register scanner
	if err := container.Provide(func(
		service *core.DetectionService,
		flags *CLIFlags,
		logger *zap.Logger,
	) *cli.Scanner {
		return cli.NewScanner(service, os.Stdout, logger, flags.Verbose, flags.JSONOutput)
	}); err != nil {
		return nil, err
	}

	// Register trainer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *training.Trainer {
		return training.NewTrainer(training.OptionsFromConfig(cfg.GetTraining()), logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
