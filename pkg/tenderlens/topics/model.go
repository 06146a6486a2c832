// Package topics fits topic models over tender descriptions on demand.
package topics

import (
	"context"
)

// NoTopic is assigned to documents with no usable vocabulary.
const NoTopic = -1

// Keyword is one representative word of a topic.
type Keyword struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// Result is the raw output of one model fit.
type Result struct {
	// Assignments holds one topic id per input document.
	Assignments []int
	// Keywords is indexed by topic id. A topic may have no keywords.
	Keywords [][]Keyword
}

// Model fits a fresh topic model to docs. Implementations must not keep
// state between calls.
type Model interface {
	Fit(ctx context.Context, docs []string) (Result, error)
}
