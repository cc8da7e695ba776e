// Package passage splits long articles into passages that cluster on their own.
//
// Long documents mix several subjects, which pulls their vectors towards the middle of
// the space. Splitting them into passages of a few sentences lets each passage land in
// the cluster it belongs to. Splitting works in two waves: paragraphs first, then
// sentences (segmented by prose) for paragraphs that are still too long. The resulting
// segments are packed back together up to the size limit.
package passage

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// segment is a paragraph or sentence waiting to be packed.
type segment struct {
	text          string
	paragraphHead bool // first segment of a paragraph
}

// Split breaks text into passages of at most maxChars characters where sentence
// boundaries allow it. A single sentence longer than maxChars becomes its own passage.
// A non-positive maxChars returns the whole text as one passage.
func Split(text string, maxChars int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}, nil
	}

	var segments []segment
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if utf8.RuneCountInString(paragraph) <= maxChars {
			segments = append(segments, segment{text: paragraph, paragraphHead: true})
			continue
		}

		sentences, err := sentences(paragraph)
		if err != nil {
			return nil, err
		}
		for i, sentence := range sentences {
			segments = append(segments, segment{text: sentence, paragraphHead: i == 0})
		}
	}

	passages := pack(segments, maxChars)
	slog.Debug("Split text into passages", "textLength", len(text), "maxChars", maxChars, "passages", len(passages))
	return passages, nil
}

// sentences segments a paragraph with prose, skipping tagging and entity extraction.
func sentences(paragraph string) ([]string, error) {
	doc, err := prose.NewDocument(paragraph,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to segment sentences: %w", err)
	}

	var out []string
	for _, sent := range doc.Sentences() {
		if s := strings.TrimSpace(sent.Text); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = []string{paragraph}
	}
	return out, nil
}

// pack joins consecutive segments while the result stays within maxChars.
// Paragraph heads are joined with a blank line, sentences with a space.
func pack(segments []segment, maxChars int) []string {
	var passages []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			passages = append(passages, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, seg := range segments {
		sep := " "
		if seg.paragraphHead {
			sep = "\n\n"
		}
		segLen := utf8.RuneCountInString(seg.text)

		if currentLen > 0 && currentLen+len(sep)+segLen > maxChars {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(sep)
			currentLen += len(sep)
		}
		current.WriteString(seg.text)
		currentLen += segLen
	}
	flush()

	return passages
}
