package core

import (
	"context"
	"time"

	"github.com/mikey/phish-detector/internal/features"
)

// FeatureExtractor turns email text into the classifier's input vector
type FeatureExtractor interface {
	// Extract computes the feature vector; it never fails, even on empty text
	Extract(text string) features.FeatureVector
}

// Classifier scores feature vectors with a loaded model
type Classifier interface {
	// Predict returns class probabilities for a vector of the model's schema
	Predict(vector features.FeatureVector) (*PredictionResult, error)

	// Version identifies the loaded model
	Version() string
}

// TextNormalizer prepares raw input before extraction
type TextNormalizer interface {
	ProcessText(text string) string
}

// CacheRepository defines the interface for caching predictions
type CacheRepository interface {
	// Get retrieves a cached entry, returning ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// MetricsRecorder receives per-request observations
type MetricsRecorder interface {
	ObservePrediction(label Label, cached bool, elapsed time.Duration)
	ObserveFailure(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObservePrediction(Label, bool, time.Duration) {}
func (nopRecorder) ObserveFailure(string)                        {}
