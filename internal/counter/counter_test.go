package counter

import (
	"strings"
	"testing"
)

func TestWordCounter(t *testing.T) {
	counter := NewWordCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty string", "", 0},
		{"single word", "hello", 1},
		{"multiple words", "hello world test", 3},
		{"whitespace handling", "  hello   world  ", 2},
		{"unicode words", "café naïve résumé", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := counter.Count(tt.text)
			if result != tt.expected {
				t.Errorf("WordCounter.Count(%q) = %d, want %d", tt.text, result, tt.expected)
			}
		})
	}

	if counter.Name() != "words" {
		t.Errorf("WordCounter.Name() = %q, want %q", counter.Name(), "words")
	}
}

func TestCharCounter(t *testing.T) {
	counter := NewCharCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty string", "", 0},
		{"single char", "a", 1},
		{"multiple chars", "hello", 5},
		{"unicode chars", "café", 4},
		{"whitespace included", "a b", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := counter.Count(tt.text)
			if result != tt.expected {
				t.Errorf("CharCounter.Count(%q) = %d, want %d", tt.text, result, tt.expected)
			}
		})
	}

	if counter.Name() != "characters" {
		t.Errorf("CharCounter.Name() = %q, want %q", counter.Name(), "characters")
	}
}

func TestTokenCounter(t *testing.T) {
	counter, err := NewTokenCounter()
	if err != nil {
		t.Fatalf("Failed to create TokenCounter: %v", err)
	}

	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"simple text", "hello world"},
		{"punctuation", "Hello, world!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := counter.Count(tt.text)
			// exact token counts can vary with encoding versions
			if tt.text == "" {
				if result != 0 {
					t.Errorf("TokenCounter.Count(%q) = %d, want 0 for empty string", tt.text, result)
				}
			} else if result <= 0 {
				t.Errorf("TokenCounter.Count(%q) = %d, want positive number for non-empty text", tt.text, result)
			}
		})
	}

	if counter.Name() != "tokens (cl100k_base)" {
		t.Errorf("TokenCounter.Name() = %q, want %q", counter.Name(), "tokens (cl100k_base)")
	}
}

func TestWordCounterTruncate(t *testing.T) {
	counter := NewWordCounter()

	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"no limit", "one two three", 0, "one two three"},
		{"fits", "one two three", 5, "one two three"},
		{"cut", "one two three four", 2, "one two"},
		{"keeps line breaks", "one\ntwo\n\nthree", 2, "one\ntwo"},
		{"leading space kept", "  one two", 1, "  one"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.Truncate(tt.text, tt.max); got != tt.expected {
				t.Errorf("WordCounter.Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.expected)
			}
		})
	}
}

func TestCharCounterTruncate(t *testing.T) {
	counter := NewCharCounter()

	tests := []struct {
		name     string
		text     string
		max      int
		expected string
	}{
		{"fits", "hello world", 20, "hello world"},
		{"word boundary", "hello world", 8, "hello"},
		{"exact", "hello world", 11, "hello world"},
		{"single long word", "supercalifragilistic", 5, "super"},
		{"unicode", "café crème", 6, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.Truncate(tt.text, tt.max); got != tt.expected {
				t.Errorf("CharCounter.Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTokenCounterTruncate(t *testing.T) {
	counter, err := NewTokenCounter()
	if err != nil {
		t.Fatalf("Failed to create TokenCounter: %v", err)
	}

	text := strings.Repeat("The rocket reached orbit after a long climb. ", 20)

	if got := counter.Truncate("short text", 100); got != "short text" {
		t.Errorf("Truncate() within budget = %q, want unchanged", got)
	}
	if got := counter.Truncate(text, 0); got != text {
		t.Error("Truncate() with zero budget should return text unchanged")
	}

	got := counter.Truncate(text, 10)
	if counter.Count(got) > 10 {
		t.Errorf("Truncate() result has %d tokens, want <= 10", counter.Count(got))
	}
	if !strings.HasPrefix(text, got) {
		t.Errorf("Truncate() = %q, want a prefix of the input", got)
	}
	if got == "" {
		t.Error("Truncate() returned empty result")
	}
}

func TestNewCounter(t *testing.T) {
	tests := []struct {
		name         string
		method       CountingMethod
		expectedName string
	}{
		{"tokens", Tokens, "tokens (cl100k_base)"},
		{"words", Words, "words"},
		{"characters", Characters, "characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := NewCounter(tt.method)
			if err != nil {
				t.Fatalf("NewCounter(%v) unexpected error: %v", tt.method, err)
			}
			if counter.Name() != tt.expectedName {
				t.Errorf("NewCounter(%v).Name() = %q, want %q", tt.method, counter.Name(), tt.expectedName)
			}
		})
	}
}

func TestParseCountingMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    CountingMethod
		wantErr bool
	}{
		{"", Tokens, false},
		{"tokens", Tokens, false},
		{"words", Words, false},
		{"characters", Characters, false},
		{"chars", Characters, false},
		{"bytes", Tokens, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCountingMethod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCountingMethod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCountingMethod(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCountingMethodString(t *testing.T) {
	tests := []struct {
		method   CountingMethod
		expected string
	}{
		{Tokens, "tokens"},
		{Words, "words"},
		{Characters, "characters"},
		{CountingMethod(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := tt.method.String()
			if result != tt.expected {
				t.Errorf("CountingMethod(%d).String() = %q, want %q", int(tt.method), result, tt.expected)
			}
		})
	}
}
