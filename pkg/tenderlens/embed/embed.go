// Package embed turns entity names into vectors for offline clustering.
package embed

import (
	"context"
)

// Embedder maps texts to fixed-length vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
