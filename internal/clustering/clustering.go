// Package clustering groups search results into labelled clusters.
//
// ClusterResults is the entry point: it runs the configured algorithm over the
// documents' pre-computed vectors, groups the documents by label, drops undersized
// groups and describes each remaining group with keywords, a cohesion score and a
// representative. The package also offers post-processing over the produced clusters
// (statistics, representatives, merging).
//
// Vectors are supplied by the caller, typically from internal/embed; this package never
// computes them. All operations are synchronous and share no state between calls.
package clustering

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/chriscorrea/clump/internal/cluster"
	"github.com/chriscorrea/clump/internal/keywords"
	"github.com/chriscorrea/clump/internal/similarity"
	"github.com/chriscorrea/clump/internal/topic"
)

const (
	// ClusterKeywordCount is the number of keywords describing each cluster
	ClusterKeywordCount = 10
	// documentsPerCluster sizes the k-means target: ceil(documents / documentsPerCluster)
	documentsPerCluster = 3
)

// Document is one search result to be clustered. The core never modifies it.
type Document struct {
	ID         string         `json:"id" yaml:"id"`
	Title      string         `json:"title" yaml:"title"`
	Content    string         `json:"content" yaml:"content"`
	Vector     []float64      `json:"vector,omitempty" yaml:"vector,omitempty"`
	Categories []string       `json:"categories,omitempty" yaml:"categories,omitempty"`
	Tags       []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Cluster is a group of documents produced by one clustering run.
type Cluster struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TopicID  string   `json:"topicId,omitempty"` // reserved; topics are not linked to clusters
	Results  []string `json:"results"`           // member document IDs
	Size     int      `json:"size"`
	Cohesion float64  `json:"cohesion"` // mean pairwise Jaccard similarity of member content
	Keywords []string `json:"keywords"`

	// RepresentativeResult is the first member in input order. It is not a
	// centroid-nearest choice.
	RepresentativeResult string `json:"representativeResult"`
}

// Result is the output of ClusterResults.
type Result struct {
	Clusters []Cluster    `json:"clusters"`
	Topics   []topic.Topic `json:"topics,omitempty"`
}

// ClusterResults clusters documents according to cfg.
//
// Processing Pipeline:
// 1. label every document with the configured algorithm
// 2. group documents by label in order of first appearance
// 3. drop groups smaller than MinClusterSize (their documents are not reassigned)
// 4. describe each remaining group (keywords, cohesion, representative)
// 5. optionally generate topics over the full input
//
// An empty document list returns an empty Result without topics. Unknown algorithm
// names put every document into a single cluster and log a warning.
func ClusterResults(documents []Document, cfg Config) (Result, error) {
	if len(documents) == 0 {
		slog.Debug("No documents to cluster")
		return Result{Clusters: []Cluster{}}, nil
	}

	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	// one stream per run: k-means draws centroids first, topics continue from there
	rng := cfg.random()

	labels, err := assignLabels(documents, cfg, rng)
	if err != nil {
		return Result{}, err
	}

	clusters := buildClusters(documents, labels, cfg.MinClusterSize)
	slog.Debug("Clustering completed", "algorithm", cfg.Algorithm, "documents", len(documents), "clusters", len(clusters))

	result := Result{Clusters: clusters}
	if cfg.EnableTopicModeling {
		contents := make([]string, len(documents))
		for i, doc := range documents {
			contents[i] = doc.Content
		}
		result.Topics = topic.Generate(contents, cfg.TopicCount, rng)
	}

	return result, nil
}

// TargetClusterCount is the k-means cluster count for n documents:
// min(maxClusters, ceil(n/3)).
func TargetClusterCount(n, maxClusters int) int {
	k := int(math.Ceil(float64(n) / documentsPerCluster))
	return min(maxClusters, k)
}

// assignLabels runs the configured algorithm and returns one label per document.
func assignLabels(documents []Document, cfg Config, rng *rand.Rand) ([]int, error) {
	switch cfg.Algorithm {
	case KMeans:
		vectors, err := vectorsOf(documents)
		if err != nil {
			return nil, err
		}
		k := TargetClusterCount(len(documents), cfg.MaxClusters)
		return cluster.KMeans(vectors, k, cfg.MaxIterations, rng), nil

	case Hierarchical:
		vectors, err := vectorsOf(documents)
		if err != nil {
			return nil, err
		}
		return cluster.Hierarchical(vectors, cfg.SimilarityThreshold), nil

	case DBSCAN:
		vectors, err := vectorsOf(documents)
		if err != nil {
			return nil, err
		}
		return cluster.DBSCAN(vectors, cfg.SimilarityThreshold, max(cfg.MinClusterSize, 1)), nil

	default:
		slog.Warn("Unknown clustering algorithm, placing all documents in one cluster", "algorithm", cfg.Algorithm)
		return make([]int, len(documents)), nil
	}
}

// vectorsOf collects document vectors, requiring a single dimensionality.
func vectorsOf(documents []Document) ([][]float64, error) {
	vectors := make([][]float64, len(documents))
	dim := len(documents[0].Vector)
	for i, doc := range documents {
		if len(doc.Vector) != dim {
			return nil, fmt.Errorf("%w: document %q has %d dimensions, expected %d",
				ErrDimensionMismatch, doc.ID, len(doc.Vector), dim)
		}
		vectors[i] = doc.Vector
	}
	return vectors, nil
}

// buildClusters groups documents by label and describes every group of at least minSize.
// Documents labelled cluster.Noise are never grouped.
func buildClusters(documents []Document, labels []int, minSize int) []Cluster {
	var order []int
	groups := make(map[int][]Document)
	for i, label := range labels {
		if label == cluster.Noise {
			continue
		}
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], documents[i])
	}

	clusters := []Cluster{}
	for _, label := range order {
		members := groups[label]
		if len(members) < minSize {
			slog.Debug("Dropping undersized group", "label", label, "size", len(members), "minSize", minSize)
			continue
		}
		clusters = append(clusters, describeGroup(len(clusters), members))
	}

	return clusters
}

// describeGroup builds the Cluster record for one group of documents.
func describeGroup(index int, members []Document) Cluster {
	ids := make([]string, len(members))
	contents := make([]string, len(members))
	for i, doc := range members {
		ids[i] = doc.ID
		contents[i] = doc.Content
	}

	kws := keywords.Extract(strings.Join(contents, " "), ClusterKeywordCount)

	return Cluster{
		ID:                   fmt.Sprintf("cluster-%d", index),
		Name:                 clusterName(index, kws),
		Results:              ids,
		Size:                 len(ids),
		Cohesion:             Cohesion(contents),
		Keywords:             kws,
		RepresentativeResult: ids[0],
	}
}

// Cohesion is the mean Jaccard similarity over all unordered pairs of contents.
// Fewer than two contents have no pairs and score 0.
func Cohesion(contents []string) float64 {
	pairs := 0
	total := 0.0
	for i := 0; i < len(contents); i++ {
		for j := i + 1; j < len(contents); j++ {
			total += similarity.Jaccard(contents[i], contents[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func clusterName(index int, kws []string) string {
	if len(kws) == 0 {
		return fmt.Sprintf("Cluster %d", index+1)
	}
	return strings.Join(kws[:min(3, len(kws))], " / ")
}
