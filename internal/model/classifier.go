package model

import (
	"fmt"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/forest"
)

// Model is a trained classifier bound to the vocabulary it was trained
// with. It is read-only after construction and safe for concurrent use.
type Model struct {
	vectorizer *features.Vectorizer
	extractor  *features.Extractor
	scaler     *Scaler
	forest     *forest.Forest
	meta       Metadata
}

// New assembles a model from fitted parts, checking that their dimensions agree
func New(vectorizer *features.Vectorizer, scaler *Scaler, f *forest.Forest, meta Metadata) (*Model, error) {
	extractor := features.NewExtractor(vectorizer)
	width := extractor.Schema().Len()

	if err := scaler.validate(); err != nil {
		return nil, err
	}
	if scaler.Len() != width {
		return nil, fmt.Errorf("scaler has %d features, schema has %d", scaler.Len(), width)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Features != width {
		return nil, fmt.Errorf("forest has %d features, schema has %d", f.Features, width)
	}
	if f.Classes != 2 {
		return nil, fmt.Errorf("forest has %d classes, expected 2", f.Classes)
	}
	if meta.Version == "" {
		meta.Version = features.SchemaVersion
	}

	return &Model{
		vectorizer: vectorizer,
		extractor:  extractor,
		scaler:     scaler,
		forest:     f,
		meta:       meta,
	}, nil
}

// Extract computes the feature vector for text using the model's vocabulary
func (m *Model) Extract(text string) features.FeatureVector {
	return m.extractor.Extract(text)
}

// Schema returns the feature layout the model expects
func (m *Model) Schema() features.Schema {
	return m.extractor.Schema()
}

// Metadata returns the training metadata
func (m *Model) Metadata() Metadata {
	return m.meta
}

// WithMetadata returns a copy of the model carrying meta
func (m *Model) WithMetadata(meta Metadata) (*Model, error) {
	return New(m.vectorizer, m.scaler, m.forest, meta)
}

// Version identifies the model
func (m *Model) Version() string {
	return m.meta.Version
}

// Predict scores a feature vector. Vectors of the wrong length are rejected
// rather than padded or truncated.
func (m *Model) Predict(vector features.FeatureVector) (*core.PredictionResult, error) {
	if vector.Len() != m.forest.Features {
		return nil, fmt.Errorf("%w: vector has %d features, model expects %d",
			core.ErrSchemaMismatch, vector.Len(), m.forest.Features)
	}
	proba, err := m.forest.PredictProba(m.scaler.Transform(vector.Values()))
	if err != nil {
		return nil, err
	}
	result := core.NewPredictionResult(proba[core.ClassPhishing], proba[core.ClassLegitimate])
	result.ModelVersion = m.meta.Version
	return result, nil
}
