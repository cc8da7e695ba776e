package clustering

import (
	"log/slog"
	"sort"

	"github.com/chriscorrea/clump/internal/similarity"
)

const (
	// StatisticsKeywordCount is the number of top keywords reported by Statistics
	StatisticsKeywordCount = 10
	// MergedKeywordLimit caps the keyword list of a merged cluster
	MergedKeywordLimit = 20
)

// Stats summarizes a set of clusters.
type Stats struct {
	Count       int      `json:"count"`
	AvgSize     float64  `json:"avgSize"`
	MaxSize     int      `json:"maxSize"`
	MinSize     int      `json:"minSize"`
	AvgCohesion float64  `json:"avgCohesion"`
	TopKeywords []string `json:"topKeywords"`
}

// Statistics reports count, size range, mean size and cohesion, and the keywords
// found in the most clusters (each cluster counts once per keyword, whatever its size).
// An empty cluster list yields zero values.
func Statistics(clusters []Cluster) Stats {
	if len(clusters) == 0 {
		return Stats{TopKeywords: []string{}}
	}

	stats := Stats{
		Count:   len(clusters),
		MaxSize: clusters[0].Size,
		MinSize: clusters[0].Size,
	}

	totalSize := 0
	totalCohesion := 0.0
	counts := make(map[string]int)
	var order []string
	for _, c := range clusters {
		totalSize += c.Size
		totalCohesion += c.Cohesion
		stats.MaxSize = max(stats.MaxSize, c.Size)
		stats.MinSize = min(stats.MinSize, c.Size)

		for _, kw := range c.Keywords {
			if _, ok := counts[kw]; !ok {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	stats.AvgSize = float64(totalSize) / float64(len(clusters))
	stats.AvgCohesion = totalCohesion / float64(len(clusters))

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > StatisticsKeywordCount {
		order = order[:StatisticsKeywordCount]
	}
	stats.TopKeywords = append([]string{}, order...)

	return stats
}

// Representatives returns, per cluster ID, up to count member documents ranked by
// richness (number of categories plus tags, descending; ties keep documents order).
// Member IDs missing from documents are skipped.
func Representatives(clusters []Cluster, documents []Document, count int) map[string][]Document {
	count = max(count, 0)
	out := make(map[string][]Document, len(clusters))
	for _, c := range clusters {
		members := make(map[string]struct{}, len(c.Results))
		for _, id := range c.Results {
			members[id] = struct{}{}
		}

		var docs []Document
		for _, doc := range documents {
			if _, ok := members[doc.ID]; ok {
				docs = append(docs, doc)
			}
		}

		sort.SliceStable(docs, func(i, j int) bool {
			return richness(docs[i]) > richness(docs[j])
		})

		if len(docs) > count {
			docs = docs[:count]
		}
		out[c.ID] = docs
	}
	return out
}

func richness(doc Document) int {
	return len(doc.Categories) + len(doc.Tags)
}

// MergeSimilar folds together clusters whose keyword sets overlap.
//
// In one pass, each cluster not yet absorbed takes in every later unabsorbed cluster
// whose keyword Jaccard similarity with it (computed on the original keyword sets) is
// at least threshold. Absorbing concatenates results, sums sizes, unions keywords
// (capped at MergedKeywordLimit) and sets cohesion to the mean of the running value
// and the absorbed cluster's value. That averaging is sequential, so for merges of
// three or more clusters the result depends on order and is not size-weighted.
// Merged clusters are not re-checked against each other.
func MergeSimilar(clusters []Cluster, threshold float64) []Cluster {
	absorbed := make([]bool, len(clusters))
	out := make([]Cluster, 0, len(clusters))

	for i := range clusters {
		if absorbed[i] {
			continue
		}

		current := copyCluster(clusters[i])
		for j := i + 1; j < len(clusters); j++ {
			if absorbed[j] {
				continue
			}
			sim := similarity.JaccardSets(clusters[i].Keywords, clusters[j].Keywords)
			if sim < threshold {
				continue
			}

			other := clusters[j]
			current.Results = append(current.Results, other.Results...)
			current.Size += other.Size
			current.Keywords = unionKeywords(current.Keywords, other.Keywords, MergedKeywordLimit)
			current.Cohesion = (current.Cohesion + other.Cohesion) / 2
			absorbed[j] = true

			slog.Debug("Merged clusters", "into", current.ID, "from", other.ID, "similarity", sim)
		}

		out = append(out, current)
	}

	return out
}

func copyCluster(c Cluster) Cluster {
	c.Results = append([]string{}, c.Results...)
	c.Keywords = append([]string{}, c.Keywords...)
	return c
}

// unionKeywords appends the unseen keywords of b to a, keeping at most limit entries.
func unionKeywords(a, b []string, limit int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, min(limit, len(a)+len(b)))
	for _, list := range [][]string{a, b} {
		for _, kw := range list {
			if len(out) == limit {
				return out
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// FeedbackAction is the kind of change a user asks for on a cluster.
type FeedbackAction string

const (
	FeedbackMerge  FeedbackAction = "merge"
	FeedbackSplit  FeedbackAction = "split"
	FeedbackRename FeedbackAction = "rename"
	FeedbackMove   FeedbackAction = "move"
)

// Feedback is a user's correction to a clustering.
type Feedback struct {
	ClusterID       string         `json:"clusterId"`
	Action          FeedbackAction `json:"action"`
	TargetClusterID string         `json:"targetClusterId,omitempty"`
	DocumentID      string         `json:"documentId,omitempty"`
	Name            string         `json:"name,omitempty"`
}

// Reorganize accepts user feedback on clusters. Feedback is not applied yet; the
// clusters are returned unchanged.
func Reorganize(clusters []Cluster, feedback []Feedback) []Cluster {
	slog.Debug("Cluster feedback ignored", "clusters", len(clusters), "feedback", len(feedback))
	return clusters
}
