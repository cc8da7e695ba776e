package counter

import (
	"strings"
)

// WordCounter counts whitespace-separated words.
type WordCounter struct{}

// NewWordCounter creates a new WordCounter instance.
func NewWordCounter() Counter {
	return &WordCounter{}
}

// Count returns the number of words in the given text using strings.Fields()
func (wc *WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// Truncate keeps the first maxUnits words, preserving their spacing.
func (wc *WordCounter) Truncate(text string, maxUnits int) string {
	return truncateAtWords(text, maxUnits, wc.Count)
}

// Name returns the name of this counting method for logging and debugging.
func (wc *WordCounter) Name() string {
	return "words"
}
