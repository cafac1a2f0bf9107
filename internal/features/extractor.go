package features

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extractor converts email text into a FeatureVector using a vocabulary
// fixed at training time. It holds no mutable state and is safe for
// concurrent use.
type Extractor struct {
	vectorizer *Vectorizer
	schema     Schema
}

// NewExtractor creates an extractor bound to a fitted vectorizer
func NewExtractor(vectorizer *Vectorizer) *Extractor {
	return &Extractor{
		vectorizer: vectorizer,
		schema:     NewSchema(vectorizer.Vocabulary()),
	}
}

// Schema returns the layout of the vectors this extractor produces
func (e *Extractor) Schema() Schema {
	return e.schema
}

// Extract computes the feature vector for text. Empty text yields a zero vector.
func (e *Extractor) Extract(text string) FeatureVector {
	visible := StripHTML(text)
	return FeatureVector{
		Stats: ComputeStats(visible),
		TFIDF: e.vectorizer.Transform(Terms(visible)),
	}
}

// ComputeStats computes the hand-picked statistics of already-stripped text
func ComputeStats(text string) Stats {
	if text == "" {
		return Stats{}
	}

	var stats Stats
	total := utf8.RuneCountInString(text)
	stats.CharCount = float64(total)

	var upper, punct int
	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsPunct(r):
			punct++
		}
		switch r {
		case '!':
			stats.ExclamationCount++
		case '?':
			stats.QuestionCount++
		}
	}
	stats.UppercaseRatio = float64(upper) / float64(total)
	stats.PunctuationRatio = float64(punct) / float64(total)

	words := strings.Fields(text)
	stats.WordCount = float64(len(words))
	if len(words) > 0 {
		letters := 0
		for _, w := range words {
			letters += utf8.RuneCountInString(w)
		}
		stats.AvgWordLength = float64(letters) / float64(len(words))
	}

	stats.SentenceCount = float64(len(Sentences(text)))
	if stats.SentenceCount > 0 {
		stats.AvgSentenceLength = stats.WordCount / stats.SentenceCount
	}

	stats.URLCount = float64(CountURLs(text))
	stats.EmailAddressCount = float64(CountEmailAddresses(text))
	stats.SuspiciousWordCount = float64(CountSuspicious(text))

	return stats
}
