package cluster

import (
	"math"
)

// Ward performs agglomerative clustering with Ward linkage and cuts the tree
// at exactly k groups. Labels are numbered by the smallest member index, so
// the group containing vectors[0] is 0.
func Ward(vectors [][]float64, k int) ([]int, error) {
	if err := checkInput(vectors, k); err != nil {
		return nil, err
	}
	n := len(vectors)

	// d[i][j] holds Ward distances between active clusters, kept in the
	// squared-Euclidean form the Lance-Williams update works on.
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			d[i][j] = sqDist(vectors[i], vectors[j])
			d[j][i] = d[i][j]
		}
	}
	size := make([]int, n)
	active := make([]bool, n)
	members := make([][]int, n)
	for i := range size {
		size[i] = 1
		active[i] = true
		members[i] = []int{i}
	}

	for groups := n; groups > k; groups-- {
		a, b := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && d[i][j] < best {
					best, a, b = d[i][j], i, j
				}
			}
		}

		// Merge b into a.
		na, nb := float64(size[a]), float64(size[b])
		for m := 0; m < n; m++ {
			if !active[m] || m == a || m == b {
				continue
			}
			nm := float64(size[m])
			t := na + nb + nm
			v := ((na+nm)*d[a][m] + (nb+nm)*d[b][m] - nm*d[a][b]) / t
			d[a][m], d[m][a] = v, v
		}
		size[a] += size[b]
		members[a] = append(members[a], members[b]...)
		active[b] = false
		members[b] = nil
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != -1 {
			continue
		}
		for c := 0; c < n; c++ {
			if !active[c] || !contains(members[c], i) {
				continue
			}
			for _, m := range members[c] {
				labels[m] = next
			}
			next++
			break
		}
	}
	return labels, nil
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
