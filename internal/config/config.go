// Package config loads clump settings from a YAML file.
//
// Every setting also has a command-line flag; the file supplies defaults for a project
// and flags override it per run. Values may reference the environment as ${VAR} or
// ${VAR:-default}.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/counter"
	"github.com/chriscorrea/clump/internal/embed"
)

// APIKeyEnv is consulted when no embedding API key is configured.
const APIKeyEnv = "OPENAI_API_KEY"

// Config holds all clump settings.
type Config struct {
	Clustering clustering.Config `yaml:"clustering"`
	Pipeline   PipelineConfig    `yaml:"pipeline"`
	Embedding  EmbeddingConfig   `yaml:"embedding"`
}

// PipelineConfig controls how sources become documents and how results are printed.
type PipelineConfig struct {
	Query                string  `yaml:"query"`                 // rank documents against this query
	PageSize             int     `yaml:"page_size"`             // documents kept after ranking (0 = all)
	PassageSize          int     `yaml:"passage_size"`          // split documents into passages of ~N chars (0 = off)
	ContentLimit         int     `yaml:"content_limit"`         // truncate content to N units (0 = off)
	Count                string  `yaml:"count"`                 // tokens, words, characters
	IncludeAll           bool    `yaml:"include_all"`           // skip readability and boilerplate filtering
	Selector             string  `yaml:"selector"`              // CSS selector for HTML sources
	BoilerplateThreshold float64 `yaml:"boilerplate_threshold"` // stopword ratio above which text is dropped
	MergeThreshold       float64 `yaml:"merge_threshold"`       // merge clusters with keyword Jaccard >= threshold (0 = off)
	Representatives      int     `yaml:"representatives"`       // documents listed per cluster
	Format               string  `yaml:"format"`                // markdown, text, json
}

// EmbeddingConfig selects and configures the vectorizer.
type EmbeddingConfig struct {
	Vectorizer string             `yaml:"vectorizer"` // tfidf, openai
	OpenAI     embed.OpenAIConfig `yaml:"openai"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Clustering: clustering.DefaultConfig(),
		Pipeline: PipelineConfig{
			Count:           counter.Tokens.String(),
			Representatives: 3,
			Format:          "markdown",
		},
		Embedding: EmbeddingConfig{
			Vectorizer: embed.TFIDF.String(),
			OpenAI: embed.OpenAIConfig{
				Model:     embed.DefaultEmbeddingModel,
				BatchSize: embed.DefaultBatchSize,
			},
		},
	}
}

// Load reads path over the built-in defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data over the built-in defaults, then validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields that have no meaningful zero value.
func (c *Config) ApplyDefaults() {
	if c.Clustering.Algorithm == "" {
		c.Clustering.Algorithm = clustering.KMeans
	}
	c.Clustering.Algorithm = clustering.ParseAlgorithm(string(c.Clustering.Algorithm))
	if c.Clustering.MaxIterations <= 0 {
		c.Clustering.MaxIterations = clustering.DefaultConfig().MaxIterations
	}
	if c.Pipeline.Count == "" {
		c.Pipeline.Count = counter.Tokens.String()
	}
	if c.Pipeline.Format == "" {
		c.Pipeline.Format = "markdown"
	}
	if c.Embedding.Vectorizer == "" {
		c.Embedding.Vectorizer = embed.TFIDF.String()
	}
	if c.Embedding.OpenAI.APIKey == "" {
		c.Embedding.OpenAI.APIKey = os.Getenv(APIKeyEnv)
	}
	if c.Embedding.OpenAI.Model == "" {
		c.Embedding.OpenAI.Model = embed.DefaultEmbeddingModel
	}
	if c.Embedding.OpenAI.BatchSize <= 0 {
		c.Embedding.OpenAI.BatchSize = embed.DefaultBatchSize
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Clustering.Validate(); err != nil {
		return fmt.Errorf("clustering: %w", err)
	}

	p := c.Pipeline
	if p.PageSize < 0 {
		return fmt.Errorf("pipeline.page_size must not be negative, got %d", p.PageSize)
	}
	if p.PassageSize < 0 {
		return fmt.Errorf("pipeline.passage_size must not be negative, got %d", p.PassageSize)
	}
	if p.ContentLimit < 0 {
		return fmt.Errorf("pipeline.content_limit must not be negative, got %d", p.ContentLimit)
	}
	if p.Representatives < 0 {
		return fmt.Errorf("pipeline.representatives must not be negative, got %d", p.Representatives)
	}
	if p.MergeThreshold < 0 || p.MergeThreshold > 1 {
		return fmt.Errorf("pipeline.merge_threshold must be between 0 and 1, got %g", p.MergeThreshold)
	}
	if p.BoilerplateThreshold < 0 || p.BoilerplateThreshold > 1 {
		return fmt.Errorf("pipeline.boilerplate_threshold must be between 0 and 1, got %g", p.BoilerplateThreshold)
	}
	if _, err := counter.ParseCountingMethod(p.Count); err != nil {
		return fmt.Errorf("pipeline.count: %w", err)
	}
	switch strings.ToLower(p.Format) {
	case "markdown", "md", "text", "txt", "json":
	default:
		return fmt.Errorf("pipeline.format must be markdown, text or json, got %q", p.Format)
	}

	if _, err := embed.ParseMethod(c.Embedding.Vectorizer); err != nil {
		return fmt.Errorf("embedding.vectorizer: %w", err)
	}
	if c.Embedding.OpenAI.Dimensions < 0 {
		return fmt.Errorf("embedding.openai.dimensions must not be negative, got %d", c.Embedding.OpenAI.Dimensions)
	}
	return nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
