package counter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter implements token counting using tiktoken w/ cl100k_base encoding.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex // protects encoding access for thread safety
}

// NewTokenCounter creates a new TokenCounter w/ cl100k_base encoding
func NewTokenCounter() (Counter, error) {
	slog.Debug("Initializing TokenCounter with cl100k_base encoding")

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cl100k_base encoding: %w", err)
	}

	return &TokenCounter{
		encoding: encoding,
	}, nil
}

// Count returns the number of tokens in the given text using cl100k_base encoding.
// This can be called concurrently
func (tc *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.RLock()
	defer tc.mu.RUnlock()

	return len(tc.encoding.Encode(text, nil, nil))
}

// Truncate decodes the first maxUnits tokens of text and drops a trailing partial word.
func (tc *TokenCounter) Truncate(text string, maxUnits int) string {
	if maxUnits <= 0 || text == "" {
		return text
	}

	tc.mu.RLock()
	tokens := tc.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxUnits {
		tc.mu.RUnlock()
		return text
	}
	partial := tc.encoding.Decode(tokens[:maxUnits])
	tc.mu.RUnlock()

	// the cut usually lands inside a word; back off to the last boundary when there is one
	if strings.HasPrefix(text, partial) && !isSpace(rune(text[len(partial)])) {
		if cut := strings.LastIndexFunc(partial, isSpace); cut > 0 {
			partial = partial[:cut]
		}
	}

	slog.Debug("Truncated by tokens", "originalTokens", len(tokens), "maxTokens", maxUnits)
	return strings.TrimRightFunc(partial, isSpace)
}

// Name returns the name of this counting method (for logging and debugging).
func (tc *TokenCounter) Name() string {
	return "tokens (cl100k_base)"
}
