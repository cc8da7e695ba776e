// Package counter measures and trims document content against a size budget.
//
// Three strategies are available: token counting with tiktoken's cl100k_base encoding
// (the default, matching what remote embedding models are billed on), word counting, and
// character counting. Every Counter can also truncate text to a budget, which the
// pipeline uses to cap long articles before vectorization.
//
// Usage Example:
//
//	c, _ := counter.NewCounter(counter.Tokens)
//	short := c.Truncate(article, 512)
package counter

import "fmt"

// Counter defines the interface for different text counting strategies.
type Counter interface {
	// Count returns the number of units (tokens, words, or characters) in given text.
	Count(text string) int

	// Truncate returns the longest prefix of text that fits within maxUnits.
	// A non-positive maxUnits returns text unchanged.
	Truncate(text string, maxUnits int) string

	// Name returns a human-readable name for this counting method (for logging)
	Name() string
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// Tokens uses tiktoken with cl100k_base encoding (default)
	Tokens CountingMethod = iota
	// Words counts words using whitespace splitting
	Words
	// Characters counts individual characters including whitespace
	Characters
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// ParseCountingMethod converts a method name into a CountingMethod.
// The empty string selects Tokens.
func ParseCountingMethod(name string) (CountingMethod, error) {
	switch name {
	case "", "tokens":
		return Tokens, nil
	case "words":
		return Words, nil
	case "characters", "chars":
		return Characters, nil
	default:
		return Tokens, fmt.Errorf("unknown counting method %q (use tokens, words or characters)", name)
	}
}

// NewCounter creates a new Counter instance based on the specified method.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Tokens:
		return NewTokenCounter()
	case Words:
		return NewWordCounter(), nil
	case Characters:
		return NewCharCounter(), nil
	default:
		return NewTokenCounter() // fallback to default
	}
}
