package clustering

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	// ErrInvalidConfig reports clustering parameters outside their valid ranges.
	ErrInvalidConfig = errors.New("invalid clustering config")
	// ErrUnsupportedAlgorithm reports an algorithm that is declared but not implemented.
	ErrUnsupportedAlgorithm = errors.New("unsupported clustering algorithm")
	// ErrDimensionMismatch reports documents whose vectors differ in length.
	ErrDimensionMismatch = errors.New("inconsistent vector dimensions")
)

// Algorithm selects the clustering strategy.
type Algorithm string

const (
	// KMeans partitions vectors around randomly initialized centroids (default)
	KMeans Algorithm = "kmeans"
	// Hierarchical merges the most similar clusters until none exceed the threshold
	Hierarchical Algorithm = "hierarchical"
	// DBSCAN groups dense neighbourhoods of cosine-similar vectors
	DBSCAN Algorithm = "dbscan"
	// LDA is reserved for statistical topic modeling and is not implemented
	LDA Algorithm = "lda"
)

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	return string(a)
}

// Known reports whether a names one of the declared algorithms.
func (a Algorithm) Known() bool {
	switch a {
	case KMeans, Hierarchical, DBSCAN, LDA:
		return true
	default:
		return false
	}
}

// ParseAlgorithm normalizes a user-supplied algorithm name.
// Unknown names are returned as-is; ClusterResults treats them as a single cluster.
func ParseAlgorithm(name string) Algorithm {
	return Algorithm(strings.ToLower(strings.TrimSpace(name)))
}

// Config holds the parameters of one clustering run.
type Config struct {
	Algorithm           Algorithm `yaml:"algorithm"`
	MaxClusters         int       `yaml:"max_clusters"`          // upper bound on k-means cluster count
	MinClusterSize      int       `yaml:"min_cluster_size"`      // smaller groups are dropped from the output
	SimilarityThreshold float64   `yaml:"similarity_threshold"`  // hierarchical stop / DBSCAN neighbourhood, in [0,1]
	EnableTopicModeling bool      `yaml:"enable_topic_modeling"` // also generate placeholder topics
	TopicCount          int       `yaml:"topic_count"`
	MaxIterations       int       `yaml:"max_iterations"` // k-means refinement limit
	Seed                uint64    `yaml:"seed"`           // 0 = non-reproducible randomness

	// Rand overrides Seed with a caller-owned random source.
	Rand *rand.Rand `yaml:"-"`
}

// DefaultConfig provides the default clustering configuration
func DefaultConfig() Config {
	return Config{
		Algorithm:           KMeans,
		MaxClusters:         10,
		MinClusterSize:      3,
		SimilarityThreshold: 0.6,
		EnableTopicModeling: true,
		TopicCount:          20,
		MaxIterations:       100,
	}
}

// Validate checks the configuration for correctness.
func (c Config) Validate() error {
	if c.MaxClusters < 1 {
		return fmt.Errorf("%w: max clusters must be at least 1, got %d", ErrInvalidConfig, c.MaxClusters)
	}
	if c.MinClusterSize < 0 {
		return fmt.Errorf("%w: min cluster size must not be negative, got %d", ErrInvalidConfig, c.MinClusterSize)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold must be between 0 and 1, got %g", ErrInvalidConfig, c.SimilarityThreshold)
	}
	if c.TopicCount < 0 {
		return fmt.Errorf("%w: topic count must not be negative, got %d", ErrInvalidConfig, c.TopicCount)
	}
	if c.Algorithm == LDA {
		return fmt.Errorf("%w: %q (use kmeans, hierarchical or dbscan)", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return nil
}

// random returns the run's random source: Rand, else a generator seeded from Seed.
func (c Config) random() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	if c.Seed != 0 {
		return rand.New(rand.NewPCG(c.Seed, c.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
