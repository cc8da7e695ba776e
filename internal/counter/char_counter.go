package counter

import (
	"unicode/utf8"
)

// CharCounter counts Unicode characters (runes), not bytes.
type CharCounter struct{}

// NewCharCounter creates a new CharCounter instance.
func NewCharCounter() Counter {
	return &CharCounter{}
}

// Count returns the number of UTF-8 characters (runes) in the given text.
func (cc *CharCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts text at the last word boundary within maxUnits characters.
// A single word longer than the budget is cut mid-word.
func (cc *CharCounter) Truncate(text string, maxUnits int) string {
	out := truncateAtWords(text, maxUnits, cc.Count)
	if out == "" && maxUnits > 0 && text != "" {
		runes := []rune(text)
		out = string(runes[:min(maxUnits, len(runes))])
	}
	return out
}

// Name returns the name of this counting method for logging and debugging.
func (cc *CharCounter) Name() string {
	return "characters"
}
