package core

import (
	"time"

	"github.com/mikey/phish-detector/internal/features"
)

// Label is the class assigned to an email
type Label string

const (
	LabelLegitimate Label = "Legitimate"
	LabelPhishing   Label = "Phishing"
)

// Class indices used by the classifier
const (
	ClassLegitimate = 0
	ClassPhishing   = 1
)

// PredictionResult represents the outcome of classifying one email
type PredictionResult struct {
	Label                Label     `json:"prediction"`
	ConfidencePhishing   float64   `json:"confidence_phishing"`
	ConfidenceLegitimate float64   `json:"confidence_legitimate"`
	IsPhishing           bool      `json:"is_phishing"`
	ModelVersion         string    `json:"model_version"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
	ProcessingID         string    `json:"processing_id"`
	Cached               bool      `json:"cached"`
}

// NewPredictionResult builds a result from the class probabilities; the label
// is the argmax, with ties going to Legitimate
func NewPredictionResult(phishing, legitimate float64) *PredictionResult {
	isPhishing := phishing > legitimate
	label := LabelLegitimate
	if isPhishing {
		label = LabelPhishing
	}
	return &PredictionResult{
		Label:                label,
		ConfidencePhishing:   phishing,
		ConfidenceLegitimate: legitimate,
		IsPhishing:           isPhishing,
		AnalyzedAt:           time.Now(),
	}
}

// Analysis bundles a prediction with the word-cloud summary of the email
type Analysis struct {
	Result    *PredictionResult
	Wordcloud []features.Term
}

// CacheEntry is a stored prediction keyed by text and model version
type CacheEntry struct {
	Key                  string
	IsPhishing           bool
	ConfidencePhishing   float64
	ConfidenceLegitimate float64
	ModelVersion         string
	CreatedAt            time.Time
	ExpiresAt            time.Time
}

// Result rebuilds a prediction from the cached probabilities
func (e *CacheEntry) Result() *PredictionResult {
	r := NewPredictionResult(e.ConfidencePhishing, e.ConfidenceLegitimate)
	r.ModelVersion = e.ModelVersion
	r.Cached = true
	return r
}
