package cluster

import (
	"math"
	"testing"
)

func TestAgglomerativeTwoObviousGroups(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
		{0.1, 0, 0.9},
	}
	labels, err := Agglomerative(vectors, 2)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if labels[0] != labels[1] {
		t.Fatalf("first group split: %v", labels)
	}
	if labels[2] != labels[3] {
		t.Fatalf("second group split: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Fatalf("groups merged: %v", labels)
	}
}

func TestAgglomerativeClampsSpeakerCount(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}}
	labels, err := Agglomerative(vectors, 10)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if got := distinct(labels); got > 2 {
		t.Fatalf("%d distinct labels for 2 points", got)
	}
}

func TestAgglomerativeLabelCountNeverExceedsTarget(t *testing.T) {
	vectors := [][]float64{
		{1, 0}, {0.8, 0.2}, {0, 1}, {0.2, 0.8}, {0.5, 0.5}, {0.4, 0.6},
	}
	for k := 1; k <= 6; k++ {
		labels, err := Agglomerative(vectors, k)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if got := distinct(labels); got > k {
			t.Fatalf("k=%d produced %d labels", k, got)
		}
	}
}

func TestAgglomerativeTooFewPoints(t *testing.T) {
	if _, err := Agglomerative([][]float64{{1, 2}}, 2); err != ErrTooFewPoints {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := Agglomerative(nil, 2); err != ErrTooFewPoints {
		t.Fatalf("expected ErrTooFewPoints for nil input, got %v", err)
	}
}

func TestAgglomerativeDeterministic(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0}, {0.7, 0.3, 0}, {0, 1, 0}, {0, 0.6, 0.4}, {0, 0, 1},
	}
	a, err := Agglomerative(vectors, 3)
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	b, _ := Agglomerative(vectors, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("labels differ between runs: %v vs %v", a, b)
		}
	}
}

func TestCosineDistance(t *testing.T) {
	cases := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{1, 0}, []float64{1, 0}, 0},
		{[]float64{1, 0}, []float64{0, 1}, 1},
		{[]float64{1, 0}, []float64{-1, 0}, 2},
		{[]float64{0, 0}, []float64{1, 0}, 1},
	}
	for _, c := range cases {
		if got := cosineDistance(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("cosineDistance(%v, %v) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}

func distinct(labels []int) int {
	seen := map[int]bool{}
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}
