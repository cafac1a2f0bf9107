package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// VectorizerState is the serializable form of a fitted Vectorizer
type VectorizerState struct {
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
	Documents  int       `json:"documents"`
}

// Vectorizer maps analyzed terms to L2-normalized TF-IDF weights over a
// vocabulary fixed at fit time. It is read-only after construction.
type Vectorizer struct {
	state VectorizerState
	index map[string]int
}

// FitVectorizer learns the vocabulary and idf weights from analyzed documents.
// The vocabulary keeps the maxFeatures most frequent terms (ties broken
// alphabetically) and is stored in alphabetical order.
func FitVectorizer(docs [][]string, maxFeatures int) *Vectorizer {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			termFreq[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	vocab := make([]string, 0, len(termFreq))
	for term := range termFreq {
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if termFreq[vocab[i]] != termFreq[vocab[j]] {
			return termFreq[vocab[i]] > termFreq[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if maxFeatures > 0 && len(vocab) > maxFeatures {
		vocab = vocab[:maxFeatures]
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v, _ := NewVectorizer(VectorizerState{Vocabulary: vocab, IDF: idf, Documents: len(docs)})
	return v
}

// NewVectorizer restores a fitted vectorizer, validating its state
func NewVectorizer(state VectorizerState) (*Vectorizer, error) {
	if len(state.Vocabulary) != len(state.IDF) {
		return nil, fmt.Errorf("vocabulary has %d terms but %d idf weights", len(state.Vocabulary), len(state.IDF))
	}
	index := make(map[string]int, len(state.Vocabulary))
	for i, term := range state.Vocabulary {
		if i > 0 && state.Vocabulary[i-1] >= term {
			return nil, errors.New("vocabulary must be sorted and unique")
		}
		if state.IDF[i] <= 0 || math.IsNaN(state.IDF[i]) || math.IsInf(state.IDF[i], 0) {
			return nil, fmt.Errorf("invalid idf weight %v for term %q", state.IDF[i], term)
		}
		index[term] = i
	}
	return &Vectorizer{state: state, index: index}, nil
}

// Len returns the vocabulary size
func (v *Vectorizer) Len() int {
	return len(v.state.Vocabulary)
}

// Vocabulary returns a copy of the fitted vocabulary
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.state.Vocabulary...)
}

// State returns the serializable state
func (v *Vectorizer) State() VectorizerState {
	return v.state
}

// Transform weights terms against the fixed vocabulary. Unknown terms are ignored.
func (v *Vectorizer) Transform(terms []string) []float64 {
	out := make([]float64, len(v.state.Vocabulary))
	for _, term := range terms {
		if i, ok := v.index[term]; ok {
			out[i]++
		}
	}

	var norm float64
	for i, tf := range out {
		if tf == 0 {
			continue
		}
		out[i] = tf * v.state.IDF[i]
		norm += out[i] * out[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range out {
			out[i] /= norm
		}
	}
	return out
}
