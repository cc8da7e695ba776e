package app

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/bm25md"

	"github.com/chriscorrea/clump/internal/clustering"
)

// DocumentScore represents a document with its BM25md score and original index.
type DocumentScore struct {
	Document clustering.Document
	Score    float64 // BM25md score (higher = more relevant)
	Index    int     // original index in the input
}

// rankDocuments scores documents against query using BM25md field-weighted ranking and
// sorts them best first. Ties keep input order.
func rankDocuments(documents []clustering.Document, query string) []DocumentScore {
	if len(documents) == 0 {
		return []DocumentScore{}
	}

	corpus := bm25md.NewCorpus()
	parser := bm25md.NewMarkdownFieldParser()
	for i, doc := range documents {
		text := rankingText(doc)
		corpus.AddDocument(bm25md.Document{
			ID:       i,
			Fields:   parser.ParseDocument(text),
			Original: text,
		})
	}

	scored := make([]DocumentScore, len(documents))
	for i, doc := range documents {
		scored[i] = DocumentScore{
			Document: doc,
			Score:    corpus.Score(query, i),
			Index:    i,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// rankingText renders a document as Markdown so its title is weighted as a heading and
// its tags as emphasized text.
func rankingText(doc clustering.Document) string {
	var b strings.Builder
	if doc.Title != "" {
		b.WriteString("# ")
		b.WriteString(doc.Title)
		b.WriteString("\n\n")
	}
	if labels := append(append([]string{}, doc.Categories...), doc.Tags...); len(labels) > 0 {
		b.WriteString("**")
		b.WriteString(strings.Join(labels, ", "))
		b.WriteString("**\n\n")
	}
	b.WriteString(doc.Content)
	return b.String()
}

// selectPage returns the page of documents to cluster. With a query, documents are
// ranked and those scoring zero are dropped; pageSize > 0 keeps only the best pageSize.
// Without a query the input order is kept.
func selectPage(documents []clustering.Document, query string, pageSize int) []clustering.Document {
	query = strings.TrimSpace(query)

	if query == "" {
		if pageSize > 0 && len(documents) > pageSize {
			return documents[:pageSize]
		}
		return documents
	}

	scored := rankDocuments(documents, query)
	page := make([]clustering.Document, 0, len(scored))
	for _, s := range scored {
		if s.Score <= 0 {
			break
		}
		if pageSize > 0 && len(page) == pageSize {
			break
		}
		page = append(page, s.Document)
	}

	slog.Debug("Selected result page", "query", query, "candidates", len(documents), "page", len(page))
	return page
}
