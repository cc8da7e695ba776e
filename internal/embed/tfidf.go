package embed

import (
	"context"
	"log/slog"

	"github.com/chriscorrea/clump/internal/tfidf"
)

// TFIDFVectorizer vectorizes texts against a TF-IDF model built from the same texts.
type TFIDFVectorizer struct{}

// NewTFIDFVectorizer creates a TFIDFVectorizer.
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{}
}

// Vectorize builds a model over texts and returns each text's TF-IDF vector.
func (v *TFIDFVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float64, error) {
	builder := tfidf.NewBuilder()
	for _, text := range texts {
		builder.AddDocument(text)
	}
	model := builder.Build()

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = model.Vectorize(text)
	}

	slog.Debug("TF-IDF vectors computed", "texts", len(texts), "dimensions", model.Dimensions())
	return vectors, nil
}

// Name returns the name of this vectorizer.
func (v *TFIDFVectorizer) Name() string {
	return "tfidf"
}
