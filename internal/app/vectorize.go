package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/embed"
)

// precomputedVectorizer names runs where every document arrived with a vector.
const precomputedVectorizer = "precomputed"

// ensureVectors fills document vectors in place and returns the vectorizer used.
// When every document already carries a vector, nothing is computed. Otherwise all
// documents are vectorized together so their vectors share one space.
func ensureVectors(ctx context.Context, documents []clustering.Document, cfg Config) (string, error) {
	if len(documents) == 0 {
		return precomputedVectorizer, nil
	}

	missing := 0
	for _, doc := range documents {
		if len(doc.Vector) == 0 {
			missing++
		}
	}
	if missing == 0 {
		slog.Debug("All documents carry vectors; skipping vectorization", "documents", len(documents))
		return precomputedVectorizer, nil
	}
	if missing < len(documents) {
		slog.Debug("Replacing precomputed vectors to keep one vector space", "withVector", len(documents)-missing)
	}

	vectorizer, err := embed.NewVectorizer(cfg.Vectorizer, cfg.OpenAI)
	if err != nil {
		return "", fmt.Errorf("failed to create vectorizer: %w", err)
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = vectorText(doc)
	}

	vectors, err := vectorizer.Vectorize(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("failed to vectorize documents: %w", err)
	}
	if len(vectors) != len(documents) {
		return "", fmt.Errorf("vectorizer returned %d vectors for %d documents", len(vectors), len(documents))
	}

	for i := range documents {
		documents[i].Vector = vectors[i]
	}

	slog.Debug("Vectorized documents", "vectorizer", vectorizer.Name(), "documents", len(documents))
	return vectorizer.Name(), nil
}

// vectorText is the text embedded for a document: its title followed by its content.
func vectorText(doc clustering.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	return doc.Title + "\n\n" + doc.Content
}
