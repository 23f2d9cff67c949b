// Package cluster groups voice embeddings into speakers with bottom-up
// agglomerative clustering.
package cluster

import (
	"errors"
	"math"
)

// ErrTooFewPoints is returned when fewer than two embeddings are supplied;
// one point cannot be split into speakers.
var ErrTooFewPoints = errors.New("cluster: need at least 2 embeddings")

// Agglomerative merges the closest pair of clusters (average linkage over
// cosine distance) until exactly k clusters remain, then returns one label
// per input vector. k greater than len(vectors) is clamped down; k < 1 is
// treated as 1.
//
// Labels are assigned by order of each cluster's first member, which makes
// the output deterministic for identical input. They still carry no speaker
// identity: label 0 in one run has no relation to label 0 in another.
func Agglomerative(vectors [][]float64, k int) ([]int, error) {
	n := len(vectors)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	// Pairwise point distances, computed once.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := cosineDistance(vectors[i], vectors[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > k {
		bi, bj := 0, 1
		best := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := linkage(clusters[i], clusters[j], dist); d < best {
					best = d
					bi, bj = i, j
				}
			}
		}
		clusters[bi] = append(clusters[bi], clusters[bj]...)
		clusters = append(clusters[:bj], clusters[bj+1:]...)
	}

	// Order labels by first member index so runs on identical input agree.
	firsts := make([]int, len(clusters))
	for i, c := range clusters {
		first := c[0]
		for _, p := range c {
			if p < first {
				first = p
			}
		}
		firsts[i] = first
	}
	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if firsts[order[j]] < firsts[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	labels := make([]int, n)
	for rank, ci := range order {
		for _, p := range clusters[ci] {
			labels[p] = rank
		}
	}
	return labels, nil
}

// linkage is the unweighted average of pairwise distances between two
// clusters.
func linkage(a, b []int, dist [][]float64) float64 {
	sum := 0.0
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// cosineDistance is 1 - cosine similarity, in [0, 2]. Zero vectors are
// treated as maximally dissimilar from everything.
func cosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1.0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim
}
