package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	kmeansMaxIterations = 300
	kmeansTolerance     = 1e-4
)

// KMeansResult is a flat partition of the input vectors.
type KMeansResult struct {
	Labels    []int
	Centroids [][]float64
	// Inertia is the within-cluster sum of squared distances.
	Inertia    float64
	Iterations int
}

// KMeans partitions vectors into k groups using k-means++ seeding.
// The same seed yields the same partition.
func KMeans(vectors [][]float64, k int, seed int64) (KMeansResult, error) {
	if err := checkInput(vectors, k); err != nil {
		return KMeansResult{}, err
	}
	rng := rand.New(rand.NewSource(seed))
	centroids := seedPlusPlus(vectors, k, rng)
	labels := make([]int, len(vectors))
	dim := len(vectors[0])

	var iter int
	for iter = 1; iter <= kmeansMaxIterations; iter++ {
		for i, v := range vectors {
			labels[i], _ = nearest(v, centroids)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for j := range next {
			next[j] = make([]float64, dim)
		}
		for i, v := range vectors {
			floats.Add(next[labels[i]], v)
			counts[labels[i]]++
		}
		for j := range next {
			if counts[j] == 0 {
				// Empty cluster keeps its previous centroid.
				copy(next[j], centroids[j])
				continue
			}
			floats.Scale(1/float64(counts[j]), next[j])
		}

		shift := 0.0
		for j := range centroids {
			shift = math.Max(shift, floats.Distance(centroids[j], next[j], 2))
		}
		centroids = next
		if shift <= kmeansTolerance {
			break
		}
	}

	res := KMeansResult{Labels: labels, Centroids: centroids, Iterations: iter}
	for i, v := range vectors {
		var d float64
		labels[i], d = nearest(v, centroids)
		res.Inertia += d
	}
	return res, nil
}

// Elbow returns the k-means inertia for k = 1..maxK, for picking k by eye.
func Elbow(vectors [][]float64, maxK int, seed int64) ([]float64, error) {
	if maxK > len(vectors) {
		maxK = len(vectors)
	}
	wcss := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		res, err := KMeans(vectors, k, seed)
		if err != nil {
			return nil, err
		}
		wcss = append(wcss, res.Inertia)
	}
	return wcss, nil
}

func seedPlusPlus(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(vectors[rng.Intn(len(vectors))]))

	dist := make([]float64, len(vectors))
	for len(centroids) < k {
		total := 0.0
		for i, v := range vectors {
			_, dist[i] = nearest(v, centroids)
			total += dist[i]
		}
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, clone(vectors[rng.Intn(len(vectors))]))
			continue
		}
		target := rng.Float64() * total
		pick := len(vectors) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, clone(vectors[pick]))
	}
	return centroids
}

// nearest returns the closest centroid and the squared distance to it.
func nearest(v []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		d := sqDist(v, c)
		if d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func checkInput(vectors [][]float64, k int) error {
	if len(vectors) == 0 {
		return fmt.Errorf("cluster: no vectors")
	}
	if k < 1 || k > len(vectors) {
		return fmt.Errorf("cluster: k=%d out of range for %d vectors", k, len(vectors))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("cluster: vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}
