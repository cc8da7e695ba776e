// Package cluster implements the vector clustering algorithms behind search result grouping.
//
// Every algorithm takes a slice of equal-length vectors and returns one label per vector,
// aligned with the input order. Labels are small non-negative integers; DBSCAN additionally
// uses Noise for points that belong to no cluster.
package cluster

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/chriscorrea/clump/internal/similarity"
)

// DefaultMaxIterations bounds k-means refinement when no limit is given.
const DefaultMaxIterations = 100

// convergenceTolerance is the largest per-coordinate centroid movement treated as converged
const convergenceTolerance = 1e-6

// KMeans partitions vectors into k clusters by iterative centroid refinement.
//
// Centroids start at uniform random coordinates in [0,1) drawn from rng, not from the
// input data. Each iteration assigns every vector to its nearest centroid (Euclidean;
// ties go to the lower index) and moves each centroid to the mean of its members. A
// centroid without members stays where it is. Iteration stops after maxIterations or
// once no centroid coordinate moved by more than 1e-6.
//
// Centroids take the length of vectors[0]. A vector of any other length is infinitely
// far from every centroid, so it is labelled 0 and never moves a centroid.
//
// Parameters:
//   - vectors: equal-length input vectors
//   - k: number of clusters (values below 1 are treated as 1)
//   - maxIterations: refinement limit (values below 1 use DefaultMaxIterations)
//   - rng: random source for centroid initialization (nil uses an unseeded generator)
//
// Returns one label in [0,k) per input vector; an empty input yields an empty slice.
func KMeans(vectors [][]float64, k int, maxIterations int, rng *rand.Rand) []int {
	n := len(vectors)
	if n == 0 {
		return []int{}
	}
	if k < 1 {
		k = 1
	}
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	dim := len(vectors[0])
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
		for d := range centroids[c] {
			centroids[c][d] = rng.Float64()
		}
	}

	assignments := make([]int, n)
	iterations := 0
	for iter := 0; iter < maxIterations; iter++ {
		iterations++
		assignNearest(vectors, centroids, assignments)

		next := recomputeCentroids(vectors, assignments, centroids)
		converged := hasConverged(centroids, next)
		centroids = next

		if converged {
			break
		}
	}

	slog.Debug("K-means completed", "vectors", n, "k", k, "iterations", iterations)
	return assignments
}

// assignNearest sets each vector's label to the index of its closest centroid.
func assignNearest(vectors, centroids [][]float64, assignments []int) {
	for i, v := range vectors {
		best := 0
		bestDist := math.Inf(1)
		for c, centroid := range centroids {
			if dist := similarity.Euclidean(v, centroid); dist < bestDist {
				bestDist = dist
				best = c
			}
		}
		assignments[i] = best
	}
}

// recomputeCentroids returns the coordinate-wise mean of each cluster's members.
// Clusters without members keep their previous centroid.
func recomputeCentroids(vectors [][]float64, assignments []int, previous [][]float64) [][]float64 {
	k := len(previous)
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, len(previous[c]))
	}

	for i, v := range vectors {
		c := assignments[i]
		if len(v) != len(sums[c]) {
			continue
		}
		counts[c]++
		for d, val := range v {
			sums[c][d] += val
		}
	}

	for c := range sums {
		if counts[c] == 0 {
			copy(sums[c], previous[c])
			continue
		}
		for d := range sums[c] {
			sums[c][d] /= float64(counts[c])
		}
	}

	return sums
}

// hasConverged reports whether no centroid coordinate moved by more than the tolerance.
func hasConverged(previous, next [][]float64) bool {
	for c := range previous {
		for d := range previous[c] {
			if math.Abs(previous[c][d]-next[c][d]) > convergenceTolerance {
				return false
			}
		}
	}
	return true
}
