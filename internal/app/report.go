package app

import (
	"strings"
	"unicode/utf8"

	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/topic"
)

// snippetLength caps the plain-text excerpt shown for representative documents
const snippetLength = 160

// Report is the outcome of one clump run.
type Report struct {
	Query       string           `json:"query,omitempty"`
	Algorithm   string           `json:"algorithm"`
	Vectorizer  string           `json:"vectorizer"`
	Documents   int              `json:"documents"`
	Clusters    []ClusterReport  `json:"clusters"`
	Unclustered []string         `json:"unclustered,omitempty"` // IDs left out by noise or size filtering
	Topics      []topic.Topic    `json:"topics,omitempty"`
	Statistics  clustering.Stats `json:"statistics"`
}

// ClusterReport is a cluster together with its representative documents.
type ClusterReport struct {
	clustering.Cluster
	Representatives []DocumentSummary `json:"representatives,omitempty"`
}

// DocumentSummary is a short description of one document.
type DocumentSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// buildReport assembles the report from the clustering output.
func buildReport(cfg Config, vectorizer string, documents []clustering.Document, clusters []clustering.Cluster, result clustering.Result) Report {
	reps := clustering.Representatives(clusters, documents, cfg.Representatives)

	clustered := make(map[string]struct{})
	clusterReports := make([]ClusterReport, len(clusters))
	for i, c := range clusters {
		for _, id := range c.Results {
			clustered[id] = struct{}{}
		}

		summaries := make([]DocumentSummary, 0, len(reps[c.ID]))
		for _, doc := range reps[c.ID] {
			summaries = append(summaries, summarize(doc))
		}
		clusterReports[i] = ClusterReport{Cluster: c, Representatives: summaries}
	}

	var unclustered []string
	for _, doc := range documents {
		if _, ok := clustered[doc.ID]; !ok {
			unclustered = append(unclustered, doc.ID)
		}
	}

	return Report{
		Query:       strings.TrimSpace(cfg.Query),
		Algorithm:   cfg.Clustering.Algorithm.String(),
		Vectorizer:  vectorizer,
		Documents:   len(documents),
		Clusters:    clusterReports,
		Unclustered: unclustered,
		Topics:      result.Topics,
		Statistics:  clustering.Statistics(clusters),
	}
}

// summarize builds a DocumentSummary with a single-line plain-text snippet.
func summarize(doc clustering.Document) DocumentSummary {
	snippet := strings.Join(strings.Fields(stripMarkdown(doc.Content)), " ")
	if utf8.RuneCountInString(snippet) > snippetLength {
		runes := []rune(snippet)
		snippet = strings.TrimSpace(string(runes[:snippetLength])) + "…"
	}
	return DocumentSummary{ID: doc.ID, Title: doc.Title, Snippet: snippet}
}
