// Package keywords provides frequency-based keyword extraction for search result text.
//
// Extraction is intentionally simple: text is lowercased, stripped of punctuation,
// split on whitespace and filtered to words longer than three characters. There is
// no stemming and no stop-word list, so the most frequent long words win.
//
// Usage Example:
//
//	top := keywords.Extract("Rockets launch into orbit. Orbit again!", 3)
//	// top == []string{"orbit", "rockets", "launch"}
package keywords

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinKeywordLength is the exclusive lower bound on keyword length (in characters).
const MinKeywordLength = 3

// keepRune maps runes that are neither ASCII word characters nor Unicode whitespace to -1.
// Whitespace of any kind (including no-break space) survives so strings.Fields splits on it.
func keepRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		return r
	case unicode.IsSpace(r):
		return ' '
	default:
		return -1
	}
}

// Extract returns up to count keywords from text, most frequent first.
// Ties keep the order in which the words were first encountered.
//
// Parameters:
//   - text: raw text to analyze
//   - count: maximum number of keywords to return
//
// Returns an empty slice for empty text, text with only short words, or count <= 0.
func Extract(text string, count int) []string {
	if count <= 0 {
		return []string{}
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return []string{}
	}

	// count occurrences, remembering first-seen order for stable tie breaking
	counts := make(map[string]int)
	var order []string
	for _, token := range tokens {
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > count {
		order = order[:count]
	}

	slog.Debug("Keywords extracted", "tokens", len(tokens), "unique", len(counts), "returned", len(order))
	return order
}

// Tokenize normalizes text into keyword candidates: lowercase, punctuation removed,
// split on whitespace, words of MinKeywordLength characters or fewer discarded.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	cleaned := strings.Map(keepRune, strings.ToLower(text))

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) > MinKeywordLength {
			tokens = append(tokens, word)
		}
	}

	return tokens
}
