package core

import "errors"

var (
	// ErrInvalidInput is returned for missing or empty email text
	ErrInvalidInput = errors.New("email text is required")
	// ErrSchemaMismatch is returned when a feature vector does not match the
	// layout the model was trained on
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	// ErrModelLoad is returned when the model artifact is missing, corrupt or incompatible
	ErrModelLoad = errors.New("failed to load model")
	// ErrCacheMiss is returned by cache repositories when no live entry exists
	ErrCacheMiss = errors.New("cache entry not found")
)
