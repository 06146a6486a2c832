package analytics

import (
	"sort"
	"strings"

	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// DescriptionText joins the cleaned descriptions of records with spaces.
func DescriptionText(records []tender.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		if r.Description != "" {
			parts = append(parts, r.Description)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount is a term with its frequency.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordCounter accumulates term frequencies across documents.
type WordCounter struct {
	counts map[string]int
	docs   int
}

// NewWordCounter creates an empty counter.
func NewWordCounter() *WordCounter {
	return &WordCounter{counts: make(map[string]int)}
}

// Process consumes one document's tokens.
func (w *WordCounter) Process(tokens []string) {
	w.docs++
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		w.counts[tok]++
	}
}

// Docs returns the number of processed documents.
func (w *WordCounter) Docs() int {
	return w.docs
}

// Top returns the most frequent terms, ties broken alphabetically.
func (w *WordCounter) Top(limit int) []WordCount {
	out := make([]WordCount, 0, len(w.counts))
	for word, n := range w.counts {
		out = append(out, WordCount{Word: word, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return head(out, limit)
}

// WordFrequencies counts the whitespace-separated terms of text.
func WordFrequencies(text string, limit int) []WordCount {
	wc := NewWordCounter()
	wc.Process(strings.Fields(text))
	return wc.Top(limit)
}
