package cluster

import (
	"log/slog"

	"github.com/chriscorrea/clump/internal/similarity"
)

// Hierarchical groups vectors by greedy average-linkage agglomeration.
//
// Every vector starts as its own cluster. Each round merges the pair of clusters with
// the highest mean cross-pair cosine similarity, as long as that similarity is at least
// threshold; the merged cluster takes the lower of the two positions. Only the final
// flat partition is returned, one label per vector.
//
// Cost is O(n²) for the similarity matrix and up to O(n³) across merge rounds, which
// suits a page of search results rather than a whole corpus.
func Hierarchical(vectors [][]float64, threshold float64) []int {
	n := len(vectors)
	if n == 0 {
		return []int{}
	}

	sims := similarityMatrix(vectors)

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	merges := 0
	for len(clusters) > 1 {
		bestI, bestJ := -1, -1
		bestSim := 0.0
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				sim := averageLinkage(sims, clusters[i], clusters[j])
				if bestI < 0 || sim > bestSim {
					bestI, bestJ, bestSim = i, j, sim
				}
			}
		}

		if bestSim < threshold {
			break
		}

		merged := make([]int, 0, len(clusters[bestI])+len(clusters[bestJ]))
		merged = append(merged, clusters[bestI]...)
		merged = append(merged, clusters[bestJ]...)
		clusters[bestI] = merged
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
		merges++
	}

	assignments := make([]int, n)
	for label, members := range clusters {
		for _, idx := range members {
			assignments[idx] = label
		}
	}

	slog.Debug("Hierarchical clustering completed", "vectors", n, "merges", merges, "clusters", len(clusters), "threshold", threshold)
	return assignments
}

// similarityMatrix computes pairwise cosine similarity; the diagonal is 1.
func similarityMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	sims := make([][]float64, n)
	for i := range sims {
		sims[i] = make([]float64, n)
		sims[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := similarity.Cosine(vectors[i], vectors[j])
			sims[i][j] = s
			sims[j][i] = s
		}
	}
	return sims
}

// averageLinkage is the mean similarity over all cross pairs of two clusters.
func averageLinkage(sims [][]float64, a, b []int) float64 {
	total := 0.0
	for _, i := range a {
		for _, j := range b {
			total += sims[i][j]
		}
	}
	return total / float64(len(a)*len(b))
}
