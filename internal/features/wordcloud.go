package features

import (
	"sort"
)

// Term is one word of the word-cloud summary, weighted relative to the most
// frequent word
type Term struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// TopTerms returns up to n content words of text ordered by frequency.
// Words are lowercased and stop words removed but not stemmed, so they read
// naturally in a cloud.
func TopTerms(text string, n int) []Term {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, w := range tokenize(StripHTML(text), false) {
		counts[w]++
	}
	if len(counts) == 0 {
		return []Term{}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}

	top := float64(counts[words[0]])
	terms := make([]Term, len(words))
	for i, w := range words {
		terms[i] = Term{Word: w, Weight: float64(counts[w]) / top}
	}
	return terms
}
