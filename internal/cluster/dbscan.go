package cluster

import (
	"log/slog"
)

// Noise labels a vector that DBSCAN left outside every cluster.
const Noise = -1

// DBSCAN groups vectors by density over cosine similarity.
//
// Two vectors are neighbours when their cosine similarity is at least minSimilarity
// (a cosine distance of at most 1 - minSimilarity). A vector with at least minPoints
// neighbours, itself included, is a core point; clusters grow outward from core points
// through their neighbourhoods. Vectors reachable from no core point are labelled Noise.
//
// Labels are assigned in input order of the first core point discovered, so the result
// is deterministic.
func DBSCAN(vectors [][]float64, minSimilarity float64, minPoints int) []int {
	n := len(vectors)
	if n == 0 {
		return []int{}
	}
	if minPoints < 1 {
		minPoints = 1
	}

	sims := similarityMatrix(vectors)
	neighbours := func(i int) []int {
		var out []int
		for j := 0; j < n; j++ {
			if sims[i][j] >= minSimilarity {
				out = append(out, j)
			}
		}
		return out
	}

	const unvisited = -2
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}

		seeds := neighbours(i)
		if len(seeds) < minPoints {
			labels[i] = Noise
			continue
		}

		label := next
		next++
		labels[i] = label

		for q := 0; q < len(seeds); q++ {
			p := seeds[q]
			if labels[p] == Noise {
				// border point previously taken for noise
				labels[p] = label
			}
			if labels[p] != unvisited {
				continue
			}
			labels[p] = label

			if expansion := neighbours(p); len(expansion) >= minPoints {
				seeds = append(seeds, expansion...)
			}
		}
	}

	noise := 0
	for _, l := range labels {
		if l == Noise {
			noise++
		}
	}
	slog.Debug("DBSCAN completed", "vectors", n, "clusters", next, "noise", noise, "minSimilarity", minSimilarity, "minPoints", minPoints)
	return labels
}
