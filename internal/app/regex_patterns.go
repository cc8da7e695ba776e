package app

import (
	"regexp"
	"strings"
	"sync"
)

// markdownPatterns holds compiled regex patterns for stripping Markdown markup
type markdownPatterns struct {
	header     *regexp.Regexp
	bulletList *regexp.Regexp
	numberList *regexp.Regexp
	codeFence  *regexp.Regexp
	inlineCode *regexp.Regexp
	bold       *regexp.Regexp
	italic     *regexp.Regexp
	link       *regexp.Regexp
	image      *regexp.Regexp
	blockquote *regexp.Regexp
	autolink   *regexp.Regexp
	bareURL    *regexp.Regexp
}

var (
	patterns     *markdownPatterns
	patternsOnce sync.Once
)

// getMarkdownPatterns returns the singleton instance of compiled patterns
func getMarkdownPatterns() *markdownPatterns {
	patternsOnce.Do(func() {
		patterns = &markdownPatterns{
			header:     regexp.MustCompile(`(?m)^\s*#{1,6}\s+`),
			bulletList: regexp.MustCompile(`(?m)^\s*[-*+]\s+`),
			numberList: regexp.MustCompile(`(?m)^\s*\d+\.\s+`),
			codeFence:  regexp.MustCompile("(?m)^\\s*\x60{3}.*$"),
			inlineCode: regexp.MustCompile("\x60([^\x60]+)\x60"),
			bold:       regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`),
			italic:     regexp.MustCompile(`\*([^*\s][^*]*)\*|\b_([^_\s][^_]*)_\b`),
			link:       regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`),
			image:      regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`),
			blockquote: regexp.MustCompile(`(?m)^\s*>\s?`),
		}
	})
	return patterns
}

// stripMarkdown removes Markdown markup and URLs and keeps the text they decorate.
func stripMarkdown(markdown string) string {
	p := getMarkdownPatterns()

	text := p.image.ReplaceAllString(markdown, "$1")
	text = p.link.ReplaceAllString(text, "$1")
	text = p.autolink.ReplaceAllString(text, "")
	text = p.bareURL.ReplaceAllString(text, "")
	text = p.codeFence.ReplaceAllString(text, "")
	text = p.inlineCode.ReplaceAllString(text, "$1")
	text = p.bold.ReplaceAllString(text, "$1$2")
	text = p.italic.ReplaceAllString(text, "$1$2")
	text = p.header.ReplaceAllString(text, "")
	text = p.bulletList.ReplaceAllString(text, "")
	text = p.numberList.ReplaceAllString(text, "")
	text = p.blockquote.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}
