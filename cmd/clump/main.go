package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chriscorrea/clump/internal/app"
	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/config"
	"github.com/chriscorrea/clump/internal/counter"
	"github.com/chriscorrea/clump/internal/embed"
)

// loadSettings reads --config (or the built-in defaults) and applies the flags the
// user actually set on top of it.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	settings := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		settings = loaded
	}

	c := &settings.Clustering
	if flags.Changed("algorithm") {
		name, _ := flags.GetString("algorithm")
		c.Algorithm = clustering.ParseAlgorithm(name)
	}
	if flags.Changed("max-clusters") {
		c.MaxClusters, _ = flags.GetInt("max-clusters")
	}
	if flags.Changed("min-size") {
		c.MinClusterSize, _ = flags.GetInt("min-size")
	}
	if flags.Changed("threshold") {
		c.SimilarityThreshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("topics") {
		c.TopicCount, _ = flags.GetInt("topics")
		c.EnableTopicModeling = c.TopicCount > 0
	}
	if noTopics, _ := flags.GetBool("no-topics"); noTopics {
		c.EnableTopicModeling = false
	}
	if flags.Changed("seed") {
		c.Seed, _ = flags.GetUint64("seed")
	}

	p := &settings.Pipeline
	if flags.Changed("query") {
		p.Query, _ = flags.GetString("query")
	}
	if flags.Changed("page-size") {
		p.PageSize, _ = flags.GetInt("page-size")
	}
	if flags.Changed("passages") {
		p.PassageSize, _ = flags.GetInt("passages")
	}
	if flags.Changed("content-limit") {
		p.ContentLimit, _ = flags.GetInt("content-limit")
	}
	if flags.Changed("count") {
		p.Count, _ = flags.GetString("count")
	}
	if flags.Changed("merge") {
		p.MergeThreshold, _ = flags.GetFloat64("merge")
	}
	if flags.Changed("representatives") {
		p.Representatives, _ = flags.GetInt("representatives")
	}
	if flags.Changed("include-all") {
		p.IncludeAll, _ = flags.GetBool("include-all")
	}
	if flags.Changed("selector") {
		p.Selector, _ = flags.GetString("selector")
	}
	if flags.Changed("boilerplate-threshold") {
		p.BoilerplateThreshold, _ = flags.GetFloat64("boilerplate-threshold")
	}

	// output format flags are mutually exclusive
	for _, format := range []string{"md", "text", "json"} {
		if set, _ := flags.GetBool(format); set {
			p.Format = format
		}
	}

	e := &settings.Embedding
	if flags.Changed("vectorizer") {
		e.Vectorizer, _ = flags.GetString("vectorizer")
	}
	if flags.Changed("embedding-model") {
		e.OpenAI.Model, _ = flags.GetString("embedding-model")
	}
	if flags.Changed("embedding-base-url") {
		e.OpenAI.BaseURL, _ = flags.GetString("embedding-base-url")
	}

	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}
	return settings, nil
}

// buildConfig constructs an app.Config from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return app.Config{}, err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	countingMethod, err := counter.ParseCountingMethod(settings.Pipeline.Count)
	if err != nil {
		return app.Config{}, err
	}
	vectorizer, err := embed.ParseMethod(settings.Embedding.Vectorizer)
	if err != nil {
		return app.Config{}, err
	}
	outputFormat, err := app.ParseOutputFormat(settings.Pipeline.Format)
	if err != nil {
		return app.Config{}, err
	}

	// use positional arguments as sources; no arguments reads stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	p := settings.Pipeline
	return app.Config{
		Sources:              sources,
		Selector:             p.Selector,
		Clustering:           settings.Clustering,
		Query:                p.Query,
		PageSize:             p.PageSize,
		PassageSize:          p.PassageSize,
		ContentLimit:         p.ContentLimit,
		CountingMethod:       countingMethod,
		MergeThreshold:       p.MergeThreshold,
		Representatives:      p.Representatives,
		IncludeAll:           p.IncludeAll,
		BoilerplateThreshold: p.BoilerplateThreshold,
		Vectorizer:           vectorizer,
		OpenAI:               settings.Embedding.OpenAI,
		OutputFormat:         outputFormat,
		Quiet:                quiet,
		Debug:                debug,
	}, nil
}

// setupLogger configures the default slog logger based on debug and quiet modes
func setupLogger(debug, quiet bool) {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

var rootCmd = &cobra.Command{
	Use:   "clump [sources...]",
	Short: "A CLI tool for clustering search results and documents",
	Long: `Clump groups related documents into labeled clusters. Sources may include URLs,
local files, directories, JSON result sets, or standard input.

Examples:
  clump results.json
  clump --query "solar sail" --page-size 30 ./articles
  clump -a hierarchical --threshold 0.4 https://example.com/a https://example.com/b
  cat results.json | clump --json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// an .env file is optional; it may carry OPENAI_API_KEY
		_ = godotenv.Load()

		// build config from flags and arguments
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// configure logging pending debug flag
		setupLogger(cfg.Debug, cfg.Quiet)

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		result, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("clump failed: %w", err)
		}

		fmt.Print(result)
		return nil
	},
}

// registerFlags declares every clump flag on cmd
func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	defaults := clustering.DefaultConfig()

	// clustering
	flags.StringP("algorithm", "a", string(defaults.Algorithm), "Clustering algorithm: kmeans, hierarchical, dbscan")
	flags.Int("max-clusters", defaults.MaxClusters, "Upper bound on the number of k-means clusters")
	flags.Int("min-size", defaults.MinClusterSize, "Drop clusters with fewer documents")
	flags.Float64("threshold", defaults.SimilarityThreshold, "Similarity threshold for hierarchical and dbscan (0-1)")
	flags.Int("topics", defaults.TopicCount, "Number of topics to generate")
	flags.Bool("no-topics", false, "Skip topic generation")
	flags.Uint64("seed", 0, "Random seed for reproducible clustering (0 = random)")
	flags.Float64("merge", 0, "Merge clusters whose keyword overlap reaches this value (0-1, 0 = off)")
	flags.Int("representatives", 3, "Documents listed per cluster")

	// page selection
	flags.StringP("query", "q", "", "Rank documents against a query before clustering")
	flags.Int("page-size", 0, "Keep only the best N documents (0 = all)")

	// content shaping
	flags.Int("passages", 0, "Split documents into passages of about N characters (0 = off)")
	flags.Int("content-limit", 0, "Truncate each document to N units (0 = off)")
	flags.String("count", counter.Tokens.String(), "Unit for --content-limit: tokens, words, characters")
	flags.BoolP("include-all", "i", false, "Include all content without readability or boilerplate filtering")
	flags.StringP("selector", "s", "", "CSS selector for HTML sources")
	flags.Float64("boilerplate-threshold", 0, "Stopword ratio above which text is dropped (0 = default)")

	// vectorizer
	flags.String("vectorizer", embed.TFIDF.String(), "Vectorizer for documents without vectors: tfidf, openai")
	flags.String("embedding-model", embed.DefaultEmbeddingModel, "Embedding model for the openai vectorizer")
	flags.String("embedding-base-url", "", "Base URL of an OpenAI-compatible embedding API")

	flags.String("config", "", "YAML configuration file")

	// output format flags
	flags.Bool("md", false, "Output in Markdown format (default)")
	flags.Bool("text", false, "Output in plain text format")
	flags.Bool("json", false, "Output in JSON format")
	cmd.MarkFlagsMutuallyExclusive("md", "text", "json")
	cmd.MarkFlagsMutuallyExclusive("topics", "no-topics")

	// other flags
	flags.BoolP("quiet", "Q", false, "Suppress warnings and progress output")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")
}

func init() {
	registerFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
