package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingItem `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"", TFIDF, false},
		{"tfidf", TFIDF, false},
		{"openai", OpenAI, false},
		{"word2vec", TFIDF, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMethodString(t *testing.T) {
	tests := []struct {
		method   Method
		expected string
	}{
		{TFIDF, "tfidf"},
		{OpenAI, "openai"},
		{Method(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.method.String(); got != tt.expected {
				t.Errorf("Method(%d).String() = %q, want %q", int(tt.method), got, tt.expected)
			}
		})
	}
}

func TestTFIDFVectorizer(t *testing.T) {
	v := NewTFIDFVectorizer()
	texts := []string{"rocket launch orbit", "apple banana fruit", "rocket orbit"}

	vectors, err := v.Vectorize(context.Background(), texts)
	if err != nil {
		t.Fatalf("Vectorize() error = %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("Vectorize() count = %d, want %d", len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) != len(vectors[0]) {
			t.Errorf("vector %d length = %d, want %d", i, len(vec), len(vectors[0]))
		}
	}
	if v.Name() != "tfidf" {
		t.Errorf("Name() = %q, want %q", v.Name(), "tfidf")
	}
}

func TestTFIDFVectorizerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTFIDFVectorizer().Vectorize(ctx, []string{"rocket"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Vectorize() error = %v, want context.Canceled", err)
	}
}

func TestNewOpenAIVectorizerRequiresKey(t *testing.T) {
	if _, err := NewOpenAIVectorizer(OpenAIConfig{}); err == nil {
		t.Error("NewOpenAIVectorizer() without key: expected error, got nil")
	}
}

func TestOpenAIVectorizer(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("request model = %q, want %q", req.Model, "test-model")
		}

		// answer in reverse order to check index handling
		resp := embeddingResponse{Object: "list", Model: req.Model}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingItem{
				Object:    "embedding",
				Embedding: []float32{float32(len(req.Input[i])), 1},
				Index:     i,
			})
		}
		resp.Usage.TotalTokens = 3

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	v, err := NewOpenAIVectorizer(OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "test-model",
		BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("NewOpenAIVectorizer() error = %v", err)
	}

	texts := []string{"a", "bb", "ccc"}
	vectors, err := v.Vectorize(context.Background(), texts)
	if err != nil {
		t.Fatalf("Vectorize() error = %v", err)
	}

	if requests != 2 {
		t.Errorf("requests = %d, want 2 batches", requests)
	}
	for i, text := range texts {
		if len(vectors[i]) != 2 || vectors[i][0] != float64(len(text)) {
			t.Errorf("vector %d = %v, want [%d 1]", i, vectors[i], len(text))
		}
	}
}

func TestOpenAIVectorizerAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	v, err := NewOpenAIVectorizer(OpenAIConfig{APIKey: "bad", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAIVectorizer() error = %v", err)
	}

	_, err = v.Vectorize(context.Background(), []string{"rocket"})
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("Vectorize() error = %v, want ErrEmbeddingProvider", err)
	}
}
