package app

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/chriscorrea/clump/internal/classify"
	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/counter"
	"github.com/chriscorrea/clump/internal/extract"
	"github.com/chriscorrea/clump/internal/passage"
)

// prepareDocuments shapes loaded documents before vectorization.
//
// Transformation Pipeline:
// 1. split into passages (when PassageSize > 0)
// 2. drop boilerplate (unless IncludeAll)
// 3. rank against the query and keep one page
// 4. reduce Markdown content to plain text
// 5. truncate content to the budget (when ContentLimit > 0)
func prepareDocuments(documents []clustering.Document, cfg Config) ([]clustering.Document, error) {
	var err error

	if cfg.PassageSize > 0 {
		documents, err = splitPassages(documents, cfg.PassageSize)
		if err != nil {
			return nil, err
		}
	}

	if !cfg.IncludeAll {
		documents = filterBoilerplate(documents, classify.NewClassifierWithThreshold(cfg.BoilerplateThreshold), cfg.Quiet)
	}

	documents = selectPage(documents, cfg.Query, cfg.PageSize)
	documents = plainContent(documents)

	if cfg.ContentLimit > 0 {
		documents, err = truncateContent(documents, cfg.ContentLimit, cfg.CountingMethod)
		if err != nil {
			return nil, err
		}
	}

	return documents, nil
}

// splitPassages replaces each document with its passages. Passage IDs append "#pN" to
// the document ID. Documents carrying a vector are kept whole since the vector
// describes the full text.
func splitPassages(documents []clustering.Document, maxChars int) ([]clustering.Document, error) {
	out := make([]clustering.Document, 0, len(documents))

	for _, doc := range documents {
		if len(doc.Vector) > 0 {
			out = append(out, doc)
			continue
		}

		passages, err := passage.Split(doc.Content, maxChars)
		if err != nil {
			return nil, fmt.Errorf("failed to split %q into passages: %w", doc.ID, err)
		}
		if len(passages) <= 1 {
			out = append(out, doc)
			continue
		}

		for i, text := range passages {
			p := doc
			p.ID = fmt.Sprintf("%s#p%d", doc.ID, i+1)
			p.Content = text
			p.Metadata = maps.Clone(doc.Metadata)
			if p.Metadata == nil {
				p.Metadata = make(map[string]any)
			}
			p.Metadata["parent"] = doc.ID
			p.Metadata["passage"] = i + 1
			out = append(out, p)
		}
	}

	slog.Debug("Split documents into passages", "documents", len(documents), "passages", len(out), "maxChars", maxChars)
	return out, nil
}

// filterBoilerplate drops documents the classifier flags as extraneous. When every
// document would be dropped, the input is returned unchanged.
func filterBoilerplate(documents []clustering.Document, classifier *classify.Classifier, quiet bool) []clustering.Document {
	kept := make([]clustering.Document, 0, len(documents))
	for _, doc := range documents {
		if classifier.IsExtraneous(doc.Content) {
			slog.Debug("Dropping boilerplate document", "id", doc.ID, "ratio", classifier.StopwordRatio(doc.Content))
			continue
		}
		kept = append(kept, doc)
	}

	if len(kept) == 0 && len(documents) > 0 {
		if !quiet {
			fmt.Fprintf(os.Stderr, "Warning: every document looks like boilerplate; keeping all %d\n", len(documents))
		}
		return documents
	}
	return kept
}

// plainContent replaces Markdown content with the text it renders to, so link targets
// and markup never become keywords or vector dimensions. Plain-text sources are kept as
// loaded. Documents are copied.
func plainContent(documents []clustering.Document) []clustering.Document {
	out := make([]clustering.Document, len(documents))
	for i, doc := range documents {
		out[i] = doc
		if doc.Metadata["format"] != extract.Text.String() {
			out[i].Content = stripMarkdown(doc.Content)
		}
	}
	return out
}

// truncateContent cuts each document's content to maxUnits of the counting method.
// Documents are copied; the input slice is not modified.
func truncateContent(documents []clustering.Document, maxUnits int, method counter.CountingMethod) ([]clustering.Document, error) {
	textCounter, err := counter.NewCounter(method)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	out := make([]clustering.Document, len(documents))
	truncated := 0
	for i, doc := range documents {
		out[i] = doc
		out[i].Content = textCounter.Truncate(doc.Content, maxUnits)
		if len(out[i].Content) < len(doc.Content) {
			truncated++
		}
	}

	slog.Debug("Applied content budget", "maxUnits", maxUnits, "counter", textCounter.Name(), "truncated", truncated)
	return out, nil
}
