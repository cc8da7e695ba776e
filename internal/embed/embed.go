// Package embed turns document text into vectors for clustering.
//
// Two vectorizers are provided: a local TF-IDF vectorizer built over the documents
// being clustered, and a remote embedding vectorizer for any OpenAI-compatible
// endpoint. Both satisfy Vectorizer, so the pipeline can swap them freely.
package embed

import (
	"context"
	"fmt"
)

// Vectorizer produces one vector per input text, all of the same length.
type Vectorizer interface {
	// Vectorize returns vectors aligned with texts.
	Vectorize(ctx context.Context, texts []string) ([][]float64, error)

	// Name returns a human-readable name for this vectorizer (for logging)
	Name() string
}

// Method represents the available vectorization strategies.
type Method int

const (
	// TFIDF builds a TF-IDF model over the texts being vectorized (default)
	TFIDF Method = iota
	// OpenAI requests embeddings from an OpenAI-compatible API
	OpenAI
)

// String returns the string representation of the method.
func (m Method) String() string {
	switch m {
	case TFIDF:
		return "tfidf"
	case OpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// ParseMethod converts a method name into a Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "tfidf":
		return TFIDF, nil
	case "openai":
		return OpenAI, nil
	default:
		return TFIDF, fmt.Errorf("unknown vectorizer %q (use tfidf or openai)", name)
	}
}

// NewVectorizer creates a Vectorizer for the specified method.
// OpenAI requires cfg.APIKey.
func NewVectorizer(method Method, cfg OpenAIConfig) (Vectorizer, error) {
	switch method {
	case TFIDF:
		return NewTFIDFVectorizer(), nil
	case OpenAI:
		return NewOpenAIVectorizer(cfg)
	default:
		return nil, fmt.Errorf("unsupported vectorizer method %d", method)
	}
}
