package cluster

import (
	"testing"
)

// Three well separated blobs.
var blobs = [][]float64{
	{0, 0}, {0.1, 0.2}, {0.2, 0.1},
	{10, 10}, {10.1, 9.9}, {9.8, 10.2},
	{0, 10}, {0.2, 9.9},
}

func sameGroups(t *testing.T, labels []int) {
	t.Helper()
	groups := [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7}}
	seen := make(map[int]bool)
	for _, g := range groups {
		l := labels[g[0]]
		for _, i := range g[1:] {
			if labels[i] != l {
				t.Errorf("Points %d and %d should share a group: %v", g[0], i, labels)
			}
		}
		if seen[l] {
			t.Errorf("Distinct blobs share label %d: %v", l, labels)
		}
		seen[l] = true
	}
}

func TestWard(t *testing.T) {
	labels, err := Ward(blobs, 3)
	if err != nil {
		t.Fatalf("Ward: %v", err)
	}
	sameGroups(t, labels)
	if labels[0] != 0 || labels[3] != 1 || labels[6] != 2 {
		t.Errorf("Labels should be numbered by first member, got %v", labels)
	}
}

func TestWardSingleGroup(t *testing.T) {
	labels, err := Ward(blobs, 1)
	if err != nil {
		t.Fatalf("Ward: %v", err)
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("Point %d: expected label 0, got %d", i, l)
		}
	}
}

func TestKMeans(t *testing.T) {
	res, err := KMeans(blobs, 3, 42)
	if err != nil {
		t.Fatalf("KMeans: %v", err)
	}
	sameGroups(t, res.Labels)
	if res.Inertia > 1 {
		t.Errorf("Expected small inertia for separated blobs, got %f", res.Inertia)
	}

	again, _ := KMeans(blobs, 3, 42)
	for i := range res.Labels {
		if res.Labels[i] != again.Labels[i] {
			t.Fatalf("Same seed should give the same labels: %v vs %v", res.Labels, again.Labels)
		}
	}
}

func TestElbowDecreases(t *testing.T) {
	wcss, err := Elbow(blobs, 4, 7)
	if err != nil {
		t.Fatalf("Elbow: %v", err)
	}
	if len(wcss) != 4 {
		t.Fatalf("Expected 4 values, got %d", len(wcss))
	}
	if wcss[2] >= wcss[0] {
		t.Errorf("WCSS at k=3 should be below k=1: %v", wcss)
	}
}

func TestInvalidK(t *testing.T) {
	if _, err := Ward(blobs, 0); err == nil {
		t.Error("Should reject k=0")
	}
	if _, err := KMeans(blobs, len(blobs)+1, 1); err == nil {
		t.Error("Should reject k larger than input")
	}
	if _, err := Ward([][]float64{{1, 2}, {1}}, 1); err == nil {
		t.Error("Should reject ragged vectors")
	}
}
