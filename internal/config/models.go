package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the configuration for the frontend
type ServerConfig struct {
	Frontend        string
	ListenAddress   string
	ShutdownTimeout time.Duration
	MaxRequestSize  string
}

// ModelConfig represents the location of the trained model artifact
type ModelConfig struct {
	Path string
}

// FeatureConfig represents the feature extraction limits
type FeatureConfig struct {
	MaxTextSize    int
	WordcloudTerms int
}

// TrainingConfig represents the configuration for offline training
type TrainingConfig struct {
	DatasetPath     string
	MaxFeatures     int
	TestSize        float64
	CVFolds         int
	Seed            int64
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
}

// CacheConfig represents the configuration for the prediction cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
	RedisURL         string
	RedisPrefix      string
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server shutdown timeout: %w", err)
	}
	return ServerConfig{
		Frontend:        c.GetString("server.frontend"),
		ListenAddress:   c.GetString("server.listen_address"),
		ShutdownTimeout: timeout,
		MaxRequestSize:  c.GetString("server.max_request_size"),
	}, nil
}

// GetModel returns the model configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Path: c.GetString("model.path"),
	}
}

// GetFeatures returns the feature extraction configuration
func (c *Config) GetFeatures() FeatureConfig {
	return FeatureConfig{
		MaxTextSize:    c.GetInt("features.max_text_size"),
		WordcloudTerms: c.GetInt("features.wordcloud_terms"),
	}
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		DatasetPath:     c.GetString("training.dataset_path"),
		MaxFeatures:     c.GetInt("training.max_features"),
		TestSize:        c.GetFloat64("training.test_size"),
		CVFolds:         c.GetInt("training.cv_folds"),
		Seed:            c.GetInt64("training.seed"),
		Trees:           c.GetInt("training.trees"),
		MaxDepth:        c.GetInt("training.max_depth"),
		MinSamplesSplit: c.GetInt("training.min_samples_split"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		PostgresDSN:      c.GetString("cache.postgres_dsn"),
		RedisURL:         c.GetString("cache.redis_url"),
		RedisPrefix:      c.GetString("cache.redis_prefix"),
	}, nil
}
