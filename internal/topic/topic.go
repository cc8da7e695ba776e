// Package topic fabricates labelled keyword bundles ("topics") for a set of documents.
//
// The generator is a placeholder for real topic modeling such as LDA: it pools the top
// keywords of every document and samples random subsets of that pool. Topics carry no
// statistical meaning, are not guaranteed to be distinct, and are not linked to clusters.
package topic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/chriscorrea/clump/internal/keywords"
)

const (
	// KeywordsPerDocument is how many keywords each document contributes to the pool
	KeywordsPerDocument = 20
	// KeywordsPerTopic is how many pooled keywords each topic samples
	KeywordsPerTopic = 5
)

// Topic is a labelled keyword bundle with a random importance weight.
type Topic struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Keywords    []string  `json:"keywords" yaml:"keywords"`
	Weight      float64   `json:"weight" yaml:"weight"`                         // in [0,1)
	Centroid    []float64 `json:"centroid,omitempty" yaml:"centroid,omitempty"` // never populated by Generate
}

// Generate returns count topics sampled from the keywords of contents.
//
// The pool is the union of each document's top KeywordsPerDocument keywords, in first-seen
// order. Each topic shuffles a copy of the pool with rng, keeps the first KeywordsPerTopic
// entries and draws a uniform weight. A nil rng uses an unseeded generator.
func Generate(contents []string, count int, rng *rand.Rand) []Topic {
	if count <= 0 {
		return []Topic{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	pool := keywordPool(contents)
	slog.Debug("Generating topics", "documents", len(contents), "pool", len(pool), "count", count)

	topics := make([]Topic, 0, count)
	for i := 0; i < count; i++ {
		shuffled := make([]string, len(pool))
		copy(shuffled, pool)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		n := min(KeywordsPerTopic, len(shuffled))
		selected := shuffled[:n:n]

		topics = append(topics, Topic{
			ID:          fmt.Sprintf("topic-%d", i),
			Name:        fmt.Sprintf("Topic %d", i+1),
			Description: describe(selected),
			Keywords:    selected,
			Weight:      rng.Float64(),
		})
	}

	return topics
}

// keywordPool collects the distinct top keywords of every document in first-seen order.
func keywordPool(contents []string) []string {
	seen := make(map[string]struct{})
	var pool []string
	for _, content := range contents {
		for _, kw := range keywords.Extract(content, KeywordsPerDocument) {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			pool = append(pool, kw)
		}
	}
	return pool
}

func describe(kws []string) string {
	if len(kws) == 0 {
		return "Topic without keywords"
	}
	return "Topic related to " + strings.Join(kws, ", ")
}
