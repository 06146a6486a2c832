package topics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/james-bowman/nlp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LDA defaults.
const (
	DefaultNumTopics  = 10
	DefaultTopWords   = 10
	DefaultIterations = 100
)

// LDA is a latent Dirichlet allocation topic model.
type LDA struct {
	NumTopics  int
	TopWords   int
	Iterations int
	// MaxTrainDocs caps the documents the model is fit on. Larger inputs
	// are fit on an evenly spaced sample and then every document is
	// transformed. Zero means no cap.
	MaxTrainDocs int
	// Seed fixes the sampler. Zero uses the clock.
	Seed uint64
	// Processes bounds the goroutines one fit uses. Zero uses GOMAXPROCS.
	Processes int
	StopWords []string
}

// NewLDA returns an LDA with default settings.
func NewLDA() *LDA {
	return &LDA{
		NumTopics:  DefaultNumTopics,
		TopWords:   DefaultTopWords,
		Iterations: DefaultIterations,
	}
}

func (l *LDA) Fit(ctx context.Context, docs []string) (Result, error) {
	if len(docs) == 0 {
		return Result{}, fmt.Errorf("lda: no documents")
	}

	train := sample(docs, l.MaxTrainDocs)
	vectoriser := nlp.NewCountVectoriser(l.StopWords...)
	trainCounts, err := vectoriser.FitTransform(train...)
	if err != nil {
		return Result{}, fmt.Errorf("lda: vectorise: %w", err)
	}
	vocabSize := len(vectoriser.Vocabulary)
	if vocabSize == 0 {
		return Result{}, fmt.Errorf("lda: empty vocabulary")
	}

	k := l.NumTopics
	if k <= 0 {
		k = DefaultNumTopics
	}
	if k > len(train) {
		k = len(train)
	}

	lda := nlp.NewLatentDirichletAllocation(k)
	if l.Iterations > 0 {
		lda.Iterations = l.Iterations
		lda.TransformationPasses = max(l.Iterations/2, 1)
	}
	if l.Processes > 0 {
		lda.Processes = l.Processes
	}
	seed := l.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	lda.Rnd = rand.New(rand.NewSource(seed))

	docsOverTopics, err := lda.FitTransform(trainCounts)
	if err != nil {
		return Result{}, fmt.Errorf("lda: fit: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	counts := trainCounts
	if len(train) != len(docs) {
		if counts, err = vectoriser.Transform(docs...); err != nil {
			return Result{}, fmt.Errorf("lda: vectorise all: %w", err)
		}
		if docsOverTopics, err = lda.Transform(counts); err != nil {
			return Result{}, fmt.Errorf("lda: transform all: %w", err)
		}
	}

	return Result{
		Assignments: dominantTopics(docsOverTopics, counts),
		Keywords:    topKeywords(lda.Components(), vectoriser.Vocabulary, l.topWords()),
	}, nil
}

func (l *LDA) topWords() int {
	if l.TopWords <= 0 {
		return DefaultTopWords
	}
	return l.TopWords
}

// sample picks n evenly spaced documents, keeping order.
func sample(docs []string, n int) []string {
	if n <= 0 || len(docs) <= n {
		return docs
	}
	out := make([]string, n)
	step := float64(len(docs)) / float64(n)
	for i := range out {
		out[i] = docs[int(float64(i)*step)]
	}
	return out
}

// dominantTopics returns the highest-weight topic per document, or NoTopic
// when the document has no vocabulary terms.
func dominantTopics(docsOverTopics, counts mat.Matrix) []int {
	topics, docs := docsOverTopics.Dims()
	out := make([]int, docs)
	for doc := 0; doc < docs; doc++ {
		if floats.Sum(mat.Col(nil, doc, counts)) == 0 {
			out[doc] = NoTopic
			continue
		}
		best, winner := -1.0, NoTopic
		for topic := 0; topic < topics; topic++ {
			if v := docsOverTopics.At(topic, doc); v > best {
				best, winner = v, topic
			}
		}
		out[doc] = winner
	}
	return out
}

// topKeywords returns the n heaviest words for each topic row, weights
// normalized to the row total.
func topKeywords(topicsOverWords mat.Matrix, vocabulary map[string]int, n int) [][]Keyword {
	rows, cols := topicsOverWords.Dims()
	vocab := make([]string, cols)
	for word, idx := range vocabulary {
		if idx < cols {
			vocab[idx] = word
		}
	}

	out := make([][]Keyword, rows)
	for topic := 0; topic < rows; topic++ {
		total := 0.0
		words := make([]Keyword, 0, cols)
		for idx := 0; idx < cols; idx++ {
			v := topicsOverWords.At(topic, idx)
			if v <= 0 || vocab[idx] == "" {
				continue
			}
			total += v
			words = append(words, Keyword{Word: vocab[idx], Weight: v})
		}
		sort.SliceStable(words, func(i, j int) bool {
			if words[i].Weight != words[j].Weight {
				return words[i].Weight > words[j].Weight
			}
			return words[i].Word < words[j].Word
		})
		if len(words) > n {
			words = words[:n]
		}
		for i := range words {
			words[i].Weight /= total
		}
		out[topic] = words
	}
	return out
}
