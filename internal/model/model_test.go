package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/mikey/phish-detector/internal/features"
	"github.com/mikey/phish-detector/internal/forest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	phishingDocs = []string{
		"URGENT: verify your account now or it will be suspended. Click here http://bad.example/login",
		"Your password expires today! Confirm your identity immediately at http://secure-login.example",
		"Winner! Claim your prize now, act now, limited time offer. Click here!",
		"Security alert: unusual activity detected. Verify your account within 24 hours.",
	}
	legitimateDocs = []string{
		"Hi team, the quarterly meeting is moved to Thursday at 3pm in the main room.",
		"Thanks for your order. Your package has shipped and will arrive next week.",
		"Please find attached the minutes from yesterday's planning session.",
		"Reminder: the library will be closed on Monday for the public holiday.",
	}
)

func trainTiny(t *testing.T) *Model {
	t.Helper()
	texts := append(append([]string{}, phishingDocs...), legitimateDocs...)
	labels := []int{1, 1, 1, 1, 0, 0, 0, 0}

	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = features.Terms(features.StripHTML(text))
	}
	vectorizer := features.FitVectorizer(docs, 50)
	extractor := features.NewExtractor(vectorizer)

	x := make([][]float64, len(texts))
	for i, text := range texts {
		x[i] = extractor.Extract(text).Values()
	}
	scaler, err := FitScaler(x)
	require.NoError(t, err)

	params := forest.DefaultParams()
	params.Trees = 15
	params.MinSamplesSplit = 2
	f, err := forest.Fit(scaler.TransformAll(x), labels, 2, params)
	require.NoError(t, err)

	m, err := New(vectorizer, scaler, f, Metadata{Version: "test-1", Samples: len(texts)})
	require.NoError(t, err)
	return m
}

func TestFitScaler(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale)
	assert.Equal(t, []float64{-1, 0}, s.Transform([]float64{1, 5}))
}

func TestFitScalerRejectsRaggedRows(t *testing.T) {
	_, err := FitScaler([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestPredictProbabilities(t *testing.T) {
	m := trainTiny(t)

	for _, text := range append(append([]string{}, phishingDocs...), legitimateDocs...) {
		r, err := m.Predict(m.Extract(text))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, r.ConfidencePhishing+r.ConfidenceLegitimate, 1e-9)
		assert.GreaterOrEqual(t, r.ConfidencePhishing, 0.0)
		assert.LessOrEqual(t, r.ConfidencePhishing, 1.0)
		assert.Equal(t, "test-1", r.ModelVersion)
	}

	empty, err := m.Predict(m.Extract(""))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, empty.ConfidencePhishing+empty.ConfidenceLegitimate, 1e-9)
}

func TestPredictRejectsWrongLength(t *testing.T) {
	m := trainTiny(t)

	vector := m.Extract("hello there")
	vector.TFIDF = vector.TFIDF[:len(vector.TFIDF)-1]

	_, err := m.Predict(vector)
	assert.ErrorIs(t, err, core.ErrSchemaMismatch)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := trainTiny(t)
	path := filepath.Join(t.TempDir(), "models", "model.json")

	require.NoError(t, m.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, m.Version(), loaded.Version())
	assert.Equal(t, m.Schema(), loaded.Schema())
	for _, text := range phishingDocs {
		want, err := m.Predict(m.Extract(text))
		require.NoError(t, err)
		got, err := loaded.Predict(loaded.Extract(text))
		require.NoError(t, err)
		assert.Equal(t, want.ConfidencePhishing, got.ConfidencePhishing)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, core.ErrModelLoad)
}

func TestLoadRejectsCorruptArtifacts(t *testing.T) {
	m := trainTiny(t)

	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"schema version", func(a *Artifact) { a.Schema.Version = "phish-features/1" }},
		{"schema names", func(a *Artifact) { a.Schema.Names[0] = "renamed" }},
		{"scaler length", func(a *Artifact) { a.Scaler.Mean = a.Scaler.Mean[1:]; a.Scaler.Scale = a.Scaler.Scale[1:] }},
		{"zero scale", func(a *Artifact) { a.Scaler.Scale[0] = 0 }},
		{"forest width", func(a *Artifact) { a.Forest.Features++ }},
		{"vocabulary order", func(a *Artifact) {
			v := a.Vectorizer.Vocabulary
			v[0], v[1] = v[1], v[0]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(m.artifact())
			require.NoError(t, err)
			var a Artifact
			require.NoError(t, json.Unmarshal(data, &a))
			tt.mutate(&a)

			path := filepath.Join(t.TempDir(), "model.json")
			data, err = json.Marshal(&a)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			_, err = Load(path)
			assert.ErrorIs(t, err, core.ErrModelLoad)
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrModelLoad)
}
