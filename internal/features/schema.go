package features

import (
	"fmt"
)

// SchemaVersion identifies the layout of FeatureVector. Bump it whenever a
// statistic is added, removed or reordered, or the term analyzer changes.
const SchemaVersion = "phish-features/2"

// TermPrefix prefixes TF-IDF feature names in the schema
const TermPrefix = "tfidf:"

// statNames lists the statistic names in vector order; it must match Stats.values.
var statNames = []string{
	"char_count",
	"word_count",
	"url_count",
	"email_address_count",
	"suspicious_word_count",
	"uppercase_ratio",
	"punctuation_ratio",
	"exclamation_count",
	"question_count",
	"avg_word_length",
	"sentence_count",
	"avg_sentence_length",
}

// StatCount is the number of hand-picked statistics preceding the TF-IDF block
var StatCount = len(statNames)

// Stats holds the hand-picked statistics of one email
type Stats struct {
	CharCount           float64 `json:"char_count"`
	WordCount           float64 `json:"word_count"`
	URLCount            float64 `json:"url_count"`
	EmailAddressCount   float64 `json:"email_address_count"`
	SuspiciousWordCount float64 `json:"suspicious_word_count"`
	UppercaseRatio      float64 `json:"uppercase_ratio"`
	PunctuationRatio    float64 `json:"punctuation_ratio"`
	ExclamationCount    float64 `json:"exclamation_count"`
	QuestionCount       float64 `json:"question_count"`
	AvgWordLength       float64 `json:"avg_word_length"`
	SentenceCount       float64 `json:"sentence_count"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
}

func (s Stats) values() []float64 {
	return []float64{
		s.CharCount,
		s.WordCount,
		s.URLCount,
		s.EmailAddressCount,
		s.SuspiciousWordCount,
		s.UppercaseRatio,
		s.PunctuationRatio,
		s.ExclamationCount,
		s.QuestionCount,
		s.AvgWordLength,
		s.SentenceCount,
		s.AvgSentenceLength,
	}
}

// FeatureVector is the fixed-order classifier input: statistics then TF-IDF weights
type FeatureVector struct {
	Stats
	TFIDF []float64 `json:"tfidf"`
}

// Len returns the number of values in the vector
func (v FeatureVector) Len() int {
	return StatCount + len(v.TFIDF)
}

// Values flattens the vector in schema order
func (v FeatureVector) Values() []float64 {
	out := make([]float64, 0, v.Len())
	out = append(out, v.Stats.values()...)
	return append(out, v.TFIDF...)
}

// Schema names every position of a FeatureVector
type Schema struct {
	Version string   `json:"version"`
	Names   []string `json:"names"`
}

// NewSchema builds the schema for the given fitted vocabulary
func NewSchema(vocabulary []string) Schema {
	names := make([]string, 0, len(statNames)+len(vocabulary))
	names = append(names, statNames...)
	for _, term := range vocabulary {
		names = append(names, TermPrefix+term)
	}
	return Schema{Version: SchemaVersion, Names: names}
}

// Len returns the number of features described by the schema
func (s Schema) Len() int {
	return len(s.Names)
}

// Validate reports whether other describes exactly the same layout
func (s Schema) Validate(other Schema) error {
	if s.Version != other.Version {
		return fmt.Errorf("schema version %q does not match %q", other.Version, s.Version)
	}
	if len(s.Names) != len(other.Names) {
		return fmt.Errorf("schema has %d features, expected %d", len(other.Names), len(s.Names))
	}
	for i, name := range s.Names {
		if other.Names[i] != name {
			return fmt.Errorf("feature %d is %q, expected %q", i, other.Names[i], name)
		}
	}
	return nil
}
