package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/phish-detector/internal/features"
	"go.uber.org/zap"
)

// ServiceOptions holds the tunables of DetectionService
type ServiceOptions struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	WordcloudTerms int
}

// DetectionService is the core service for phishing detection. All of its
// collaborators are read-only after construction, so one instance serves
// concurrent requests.
type DetectionService struct {
	extractor  FeatureExtractor
	classifier Classifier
	normalizer TextNormalizer
	cache      CacheRepository
	metrics    MetricsRecorder
	logger     *zap.Logger
	opts       ServiceOptions
}

// NewDetectionService creates a new detection service. cache and metrics may be nil.
func NewDetectionService(
	extractor FeatureExtractor,
	classifier Classifier,
	normalizer TextNormalizer,
	cache CacheRepository,
	metrics MetricsRecorder,
	logger *zap.Logger,
	opts ServiceOptions,
) *DetectionService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if cache == nil {
		opts.CacheEnabled = false
	}
	return &DetectionService{
		extractor:  extractor,
		classifier: classifier,
		normalizer: normalizer,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// ModelVersion returns the version of the loaded model
func (s *DetectionService) ModelVersion() string {
	return s.classifier.Version()
}

// Analyze classifies an email and summarizes its content
func (s *DetectionService) Analyze(ctx context.Context, text string) (*Analysis, error) {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		s.metrics.ObserveFailure("invalid_input")
		return nil, ErrInvalidInput
	}

	processed := s.normalizer.ProcessText(text)
	processingID := uuid.NewString()
	key := s.cacheKey(processed)

	result := s.lookup(ctx, key)
	if result == nil {
		var err error
		result, err = s.classifier.Predict(s.extractor.Extract(processed))
		if err != nil {
			reason := "prediction"
			if errors.Is(err, ErrSchemaMismatch) {
				reason = "schema_mismatch"
			}
			s.metrics.ObserveFailure(reason)
			s.logger.Error("Failed to classify email",
				zap.String("processing_id", processingID),
				zap.Error(err))
			return nil, fmt.Errorf("classify email: %w", err)
		}
		s.store(ctx, key, result)
	}
	result.ProcessingID = processingID

	elapsed := time.Since(start)
	s.metrics.ObservePrediction(result.Label, result.Cached, elapsed)
	s.logger.Info("Email classified",
		zap.String("processing_id", processingID),
		zap.String("prediction", string(result.Label)),
		zap.Float64("confidence_phishing", result.ConfidencePhishing),
		zap.Bool("cached", result.Cached),
		zap.Duration("elapsed", elapsed))

	return &Analysis{
		Result:    result,
		Wordcloud: features.TopTerms(processed, s.opts.WordcloudTerms),
	}, nil
}

// Predict classifies an email without building the word-cloud summary
func (s *DetectionService) Predict(ctx context.Context, text string) (*PredictionResult, error) {
	analysis, err := s.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return analysis.Result, nil
}

func (s *DetectionService) cacheKey(text string) string {
	h := sha256.New()
	h.Write([]byte(s.classifier.Version()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// lookup returns a cached prediction or nil. Cache failures are logged and
// treated as misses.
func (s *DetectionService) lookup(ctx context.Context, key string) *PredictionResult {
	if !s.opts.CacheEnabled {
		return nil
	}
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Failed to read prediction cache", zap.Error(err))
		}
		return nil
	}
	if entry.ModelVersion != s.classifier.Version() {
		return nil
	}
	s.logger.Debug("Cache hit", zap.String("key", key))
	return entry.Result()
}

func (s *DetectionService) store(ctx context.Context, key string, result *PredictionResult) {
	if !s.opts.CacheEnabled {
		return
	}
	now := time.Now()
	entry := &CacheEntry{
		Key:                  key,
		IsPhishing:           result.IsPhishing,
		ConfidencePhishing:   result.ConfidencePhishing,
		ConfidenceLegitimate: result.ConfidenceLegitimate,
		ModelVersion:         result.ModelVersion,
		CreatedAt:            now,
		ExpiresAt:            now.Add(s.opts.CacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to update cache", zap.Error(err))
	}
}
