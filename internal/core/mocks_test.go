package core

import (
	"context"
	"time"

	"github.com/mikey/phish-detector/internal/features"
	"github.com/stretchr/testify/mock"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(text string) features.FeatureVector {
	args := m.Called(text)
	return args.Get(0).(features.FeatureVector)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(vector features.FeatureVector) (*PredictionResult, error) {
	args := m.Called(vector)
	if r := args.Get(0); r != nil {
		return r.(*PredictionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClassifier) Version() string {
	return m.Called().String(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	args := m.Called(ctx, key)
	if e := args.Get(0); e != nil {
		return e.(*CacheEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, entry *CacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) Cleanup(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) ObservePrediction(label Label, cached bool, elapsed time.Duration) {
	m.Called(label, cached, elapsed)
}

func (m *mockRecorder) ObserveFailure(reason string) {
	m.Called(reason)
}

type identityNormalizer struct{}

func (identityNormalizer) ProcessText(text string) string { return text }
