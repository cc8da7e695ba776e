package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = "text-embedding-3-small"

// DefaultBatchSize bounds the number of texts sent in one embedding request.
const DefaultBatchSize = 64

// ErrEmbeddingProvider wraps every failure reported by the embedding API.
var ErrEmbeddingProvider = errors.New("embedding provider error")

// OpenAIConfig holds the embedding provider settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"` // empty uses the OpenAI default
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"` // 0 keeps the model's native size
	BatchSize  int    `yaml:"batch_size"`
}

// OpenAIVectorizer requests embeddings from an OpenAI-compatible API.
type OpenAIVectorizer struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	batchSize  int
}

// NewOpenAIVectorizer creates an OpenAIVectorizer from cfg.
func NewOpenAIVectorizer(cfg OpenAIConfig) (*OpenAIVectorizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &OpenAIVectorizer{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(model),
		dimensions: cfg.Dimensions,
		batchSize:  batchSize,
	}, nil
}

// Vectorize embeds texts in batches, preserving input order.
func (v *OpenAIVectorizer) Vectorize(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))

	for start := 0; start < len(texts); start += v.batchSize {
		end := min(start+v.batchSize, len(texts))

		req := openai.EmbeddingRequest{
			Input:          texts[start:end],
			Model:          v.model,
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		}
		if v.dimensions > 0 {
			req.Dimensions = v.dimensions
		}

		resp, err := v.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, parseAPIError(err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding response has %d vectors for %d texts: %w",
				len(resp.Data), end-start, ErrEmbeddingProvider)
		}

		for i, item := range resp.Data {
			idx := start + i
			if item.Index >= 0 && item.Index < end-start {
				idx = start + item.Index
			}
			vectors[idx] = toFloat64(item.Embedding)
		}

		slog.Debug("Embedding batch completed", "model", string(v.model), "texts", end-start, "totalTokens", resp.Usage.TotalTokens)
	}

	return vectors, nil
}

// Name returns the name of this vectorizer.
func (v *OpenAIVectorizer) Name() string {
	return "openai (" + string(v.model) + ")"
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, f := range in {
		out[i] = float64(f)
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), ErrEmbeddingProvider)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, ErrEmbeddingProvider)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, ErrEmbeddingProvider)
}
