package embed

import (
	"context"
	"fmt"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LSA embeds texts locally with TF-IDF weighting reduced by truncated SVD.
// Vectors are L2-normalized so Euclidean distance tracks cosine distance.
type LSA struct {
	Dimensions int
	StopWords  []string
}

// NewLSA returns an LSA embedder producing vectors of at most dims components.
func NewLSA(dims int, stopWords ...string) *LSA {
	return &LSA{Dimensions: dims, StopWords: stopWords}
}

func (l *LSA) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectoriser := nlp.NewCountVectoriser(l.StopWords...)
	counts, err := vectoriser.FitTransform(texts...)
	if err != nil {
		return nil, fmt.Errorf("lsa: vectorise: %w", err)
	}
	terms := len(vectoriser.Vocabulary)
	if terms == 0 {
		return nil, fmt.Errorf("lsa: empty vocabulary")
	}

	weighted, err := nlp.NewTfidfTransformer().FitTransform(counts)
	if err != nil {
		return nil, fmt.Errorf("lsa: tfidf: %w", err)
	}

	dims := l.Dimensions
	if maxDims := min(terms, len(texts)); dims <= 0 || dims > maxDims {
		dims = maxDims
	}
	reduced, err := nlp.NewTruncatedSVD(dims).FitTransform(weighted)
	if err != nil {
		return nil, fmt.Errorf("lsa: svd: %w", err)
	}

	// reduced is dims x docs.
	r, c := reduced.Dims()
	out := make([][]float64, c)
	for j := 0; j < c; j++ {
		v := mat.Col(nil, j, reduced)
		if len(v) != r {
			return nil, fmt.Errorf("lsa: unexpected column length %d", len(v))
		}
		if norm := floats.Norm(v, 2); norm > 0 {
			floats.Scale(1/norm, v)
		}
		out[j] = v
	}
	return out, nil
}
