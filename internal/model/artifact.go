// Package model holds the trained phishing classifier: the fitted TF-IDF
// vocabulary, the feature scaler and the random forest, persisted together
// as one JSON artifact.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/forest"
)

// Metadata describes how and when a model was trained
type Metadata struct {
	Version      string        `json:"version"`
	TrainedAt    time.Time     `json:"trained_at"`
	Samples      int           `json:"samples"`
	TestAccuracy float64       `json:"test_accuracy"`
	CVMean       float64       `json:"cv_mean"`
	CVStd        float64       `json:"cv_std"`
	Params       forest.Params `json:"params"`
}

// Artifact is the on-disk form of a Model
type Artifact struct {
	Schema     features.Schema          `json:"schema"`
	Vectorizer features.VectorizerState `json:"vectorizer"`
	Scaler     Scaler                   `json:"scaler"`
	Forest     forest.Forest            `json:"forest"`
	Metadata   Metadata                 `json:"metadata"`
}

// Load reads and validates a model artifact. Every failure wraps
// core.ErrModelLoad.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrModelLoad, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", core.ErrModelLoad, path, err)
	}
	m, err := fromArtifact(&a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrModelLoad, path, err)
	}
	return m, nil
}

// Save writes the model as JSON. The file is replaced atomically so a
// running server never reads a partial artifact.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m.artifact())
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}

func (m *Model) artifact() *Artifact {
	return &Artifact{
		Schema:     m.extractor.Schema(),
		Vectorizer: m.vectorizer.State(),
		Scaler:     *m.scaler,
		Forest:     *m.forest,
		Metadata:   m.meta,
	}
}

func fromArtifact(a *Artifact) (*Model, error) {
	vectorizer, err := features.NewVectorizer(a.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	scaler := a.Scaler
	f := a.Forest
	m, err := New(vectorizer, &scaler, &f, a.Metadata)
	if err != nil {
		return nil, err
	}
	if err := m.extractor.Schema().Validate(a.Schema); err != nil {
		return nil, err
	}
	return m, nil
}
