// Package app runs the clump pipeline: it turns sources into documents, clusters them
// and renders the result. It holds the application logic separated from CLI concerns.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/counter"
	"github.com/chriscorrea/clump/internal/embed"
	"github.com/chriscorrea/clump/internal/extract"
	"github.com/chriscorrea/clump/internal/fetch"
	"github.com/chriscorrea/clump/internal/spinner"
)

// pipelineStages is the number of progress steps shown by the spinner
const pipelineStages = 4

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// markdown output format (default)
	Markdown OutputFormat = iota
	// plaintext output format
	Text
	// JSON output format
	JSON
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseOutputFormat converts a format name into an OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(name) {
	case "", "markdown", "md":
		return Markdown, nil
	case "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Markdown, fmt.Errorf("unknown output format %q (use markdown, text or json)", name)
	}
}

// Config holds all configuration options for one clump run.
type Config struct {
	Sources  []string // files, directories, URLs, or "-" for stdin
	Selector string   // CSS selector for HTML sources

	Clustering clustering.Config

	Query           string // rank documents against this query before clustering
	PageSize        int    // documents kept after ranking (0 = all)
	PassageSize     int    // split documents into passages of ~N chars (0 = off)
	ContentLimit    int    // truncate each document to N units (0 = off)
	CountingMethod  counter.CountingMethod
	MergeThreshold  float64 // merge clusters whose keyword similarity reaches this (0 = off)
	Representatives int     // documents listed per cluster

	IncludeAll           bool    // skip readability and boilerplate filtering
	BoilerplateThreshold float64 // stopword ratio above which text is dropped (0 = default)

	Vectorizer embed.Method
	OpenAI     embed.OpenAIConfig

	OutputFormat OutputFormat
	Quiet        bool // suppress warnings and progress
	Debug        bool
}

// Run executes the clump pipeline with the given configuration and returns the
// rendered report.
//
// Processing Pipeline:
// 1. load documents from all sources (loadDocuments)
// 2. shape them: passages, boilerplate filter, query ranking, plain text, content budget (prepareDocuments)
// 3. vectorize documents that lack a vector (ensureVectors)
// 4. cluster, post-process and render
//
// ctx allows for cancellation of fetching and remote embedding.
func Run(ctx context.Context, cfg Config) (string, error) {
	report, err := Cluster(ctx, cfg)
	if err != nil {
		return "", err
	}
	return Render(report, cfg.OutputFormat)
}

// Cluster runs the pipeline up to, but not including, rendering.
func Cluster(ctx context.Context, cfg Config) (Report, error) {
	if len(cfg.Sources) == 0 {
		return Report{}, fmt.Errorf("no sources provided")
	}

	var sp *spinner.Spinner
	if !cfg.Quiet && spinner.IsTerminal(os.Stderr) {
		sp = spinner.New(ctx, os.Stderr, "Loading sources...")
		sp.Start()
		defer sp.Stop()
	}
	stage := func(step int, message string) {
		if sp != nil {
			sp.Stage(step, pipelineStages, message)
		}
	}

	// step 1: load
	stage(1, "Loading sources...")
	sources, err := fetch.Expand(cfg.Sources)
	if err != nil {
		return Report{}, err
	}
	documents, err := loadDocuments(ctx, sources, extract.Options{Selector: cfg.Selector, IncludeAll: cfg.IncludeAll}, cfg.Quiet)
	if err != nil {
		return Report{}, err
	}

	// step 2: shape
	documents, err = prepareDocuments(documents, cfg)
	if err != nil {
		return Report{}, err
	}

	// step 3: vectorize
	stage(2, fmt.Sprintf("Vectorizing %d documents...", len(documents)))
	vectorizerName, err := ensureVectors(ctx, documents, cfg)
	if err != nil {
		return Report{}, err
	}

	// step 4: cluster and post-process
	stage(3, "Clustering...")
	result, err := clustering.ClusterResults(documents, cfg.Clustering)
	if err != nil {
		return Report{}, fmt.Errorf("failed to cluster documents: %w", err)
	}

	clusters := result.Clusters
	if cfg.MergeThreshold > 0 {
		before := len(clusters)
		clusters = clustering.MergeSimilar(clusters, cfg.MergeThreshold)
		slog.Debug("Merged similar clusters", "threshold", cfg.MergeThreshold, "before", before, "after", len(clusters))
	}

	stage(4, "Summarizing...")
	return buildReport(cfg, vectorizerName, documents, clusters, result), nil
}

// loadDocuments reads every source; sources that fail are reported and skipped.
func loadDocuments(ctx context.Context, sources []string, opts extract.Options, quiet bool) ([]clustering.Document, error) {
	var documents []clustering.Document

	for _, source := range sources {
		docs, err := loadSource(ctx, source, opts)
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "Warning: failed to process source %q: %v\n", source, err)
			}
			continue
		}
		documents = append(documents, docs...)
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents extracted from any source")
	}

	slog.Debug("Loaded documents", "sources", len(sources), "documents", len(documents))
	return documents, nil
}

// loadSource fetches one source and extracts its documents
func loadSource(ctx context.Context, source string, opts extract.Options) ([]clustering.Document, error) {
	res, err := fetch.Open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer res.Close()

	docs, err := extract.Documents(res, source, res.ContentType, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}
	return docs, nil
}
