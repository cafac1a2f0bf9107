package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mikey/phish-detector/internal/adapters/cli"
	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/ports"
	"github.com/mikey/phish-detector/internal/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

func trainModel(t *testing.T, path string) {
	t.Helper()
	container, err := BuildCLIContainer(&CLIFlags{ModelPath: path})
	require.NoError(t, err)

	require.NoError(t, container.Invoke(func(trainer *training.Trainer) error {
		m, _, err := trainer.Train(context.Background(), training.SampleDataset())
		if err != nil {
			return err
		}
		return m.Save(path)
	}))
}

func TestCLIContainerScansWithTrainedModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	trainModel(t, path)

	container, err := BuildCLIContainer(&CLIFlags{ModelPath: path})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.DetectionService, scanner *cli.Scanner) {
		result, err := service.Predict(context.Background(), "Click here to claim your prize now!")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, result.ConfidencePhishing+result.ConfidenceLegitimate, 1e-9)
		assert.NotNil(t, scanner)
	})
	require.NoError(t, err)
}

func TestCLIContainerMissingModel(t *testing.T) {
	container, err := BuildCLIContainer(&CLIFlags{ModelPath: filepath.Join(t.TempDir(), "none.json")})
	require.NoError(t, err)

	err = container.Invoke(func(*core.DetectionService) {})
	require.Error(t, err)
	assert.ErrorIs(t, dig.RootCause(err), core.ErrModelLoad)
}

func TestServerContainerCachesPredictions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	trainModel(t, path)

	t.Setenv("PHISH_DETECTOR_MODEL_PATH", path)
	t.Setenv("PHISH_DETECTOR_CACHE_TYPE", "sqlite")
	t.Setenv("PHISH_DETECTOR_CACHE_SQLITE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("PHISH_DETECTOR_SERVER_LISTEN_ADDRESS", "127.0.0.1:0")

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(service *core.DetectionService, frontend ports.Frontend) {
		assert.NotNil(t, frontend)
		ctx := context.Background()
		first, err := service.Predict(ctx, "Your invoice is attached")
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := service.Predict(ctx, "Your invoice is attached")
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.ConfidencePhishing, second.ConfidencePhishing)
	})
	require.NoError(t, err)
}
