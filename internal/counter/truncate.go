package counter

import "strings"

// truncateAtWords keeps whole words, with their original spacing, until the next word
// would push the running count past maxUnits. Trailing whitespace is trimmed.
func truncateAtWords(text string, maxUnits int, count func(string) int) string {
	if maxUnits <= 0 || text == "" {
		return text
	}

	var result strings.Builder
	used := 0

	for _, piece := range splitKeepingSpace(text) {
		units := count(piece)
		if used+units > maxUnits {
			break
		}
		result.WriteString(piece)
		used += units
		if used >= maxUnits {
			break
		}
	}

	return strings.TrimRightFunc(result.String(), isSpace)
}

// splitKeepingSpace splits text into pieces that each hold leading whitespace followed
// by one word, so that concatenating the pieces reproduces text exactly.
func splitKeepingSpace(text string) []string {
	var pieces []string
	var current strings.Builder
	inWord := false

	for _, r := range text {
		space := isSpace(r)
		if space && inWord {
			pieces = append(pieces, current.String())
			current.Reset()
			inWord = false
		}
		if !space {
			inWord = true
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
