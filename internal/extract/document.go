package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/clump/internal/clustering"
)

// maxDerivedTitle caps titles taken from the first line of plain text.
const maxDerivedTitle = 80

// Format identifies how a source is parsed.
type Format int

const (
	// Text is plain text; the first line becomes the title
	Text Format = iota
	// Markdown may start with YAML front matter
	Markdown
	// HTML is reduced to its main content
	HTML
	// JSON holds an array of documents
	JSON
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Markdown:
		return "markdown"
	case HTML:
		return "html"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the source's extension, then its content type,
// then the first bytes of its content.
func DetectFormat(source, contentType string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(stripQuery(source))) {
	case ".html", ".htm":
		return HTML
	case ".md", ".markdown":
		return Markdown
	case ".json":
		return JSON
	case ".txt":
		return Text
	}

	switch ct := strings.ToLower(contentType); {
	case strings.Contains(ct, "html"):
		return HTML
	case strings.Contains(ct, "json"):
		return JSON
	case strings.Contains(ct, "markdown"):
		return Markdown
	}

	trimmed := bytes.TrimSpace(head)
	lower := bytes.ToLower(trimmed)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return JSON
	case bytes.HasPrefix(lower, []byte("<!doctype html")), bytes.HasPrefix(lower, []byte("<html")),
		bytes.Contains(lower, []byte("<body")):
		return HTML
	case bytes.HasPrefix(trimmed, []byte("---\n")), bytes.HasPrefix(trimmed, []byte("# ")):
		return Markdown
	}
	return Text
}

// Documents reads one source and returns the documents it holds: exactly one for HTML,
// Markdown and text, any number for JSON.
func Documents(content io.Reader, source, contentType string, opts Options) ([]clustering.Document, error) {
	raw, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", source, err)
	}

	id := source
	if source == "-" {
		id = "stdin"
	}

	format := DetectFormat(source, contentType, raw[:min(len(raw), 512)])
	metadata := map[string]any{"source": id, "format": format.String()}

	var doc clustering.Document
	switch format {
	case JSON:
		return jsonDocuments(raw, id)

	case HTML:
		if opts.BaseURL == nil && strings.HasPrefix(source, "http") {
			opts.BaseURL, _ = url.Parse(source)
		}
		page, err := ExtractHTML(bytes.NewReader(raw), opts)
		if err != nil {
			return nil, err
		}
		if page.Byline != "" {
			metadata["byline"] = page.Byline
		}
		if page.SiteName != "" {
			metadata["siteName"] = page.SiteName
		}
		doc = clustering.Document{
			Title:      page.Title,
			Content:    page.Markdown,
			Categories: page.Categories,
			Tags:       page.Tags,
		}

	case Markdown:
		doc = markdownDocument(string(raw))

	default:
		text := strings.TrimSpace(string(raw))
		doc = clustering.Document{Title: firstLine(text), Content: text}
	}

	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("no content extracted from %q", source)
	}

	doc.ID = id
	doc.Metadata = metadata
	return []clustering.Document{doc}, nil
}

// jsonDocuments decodes a document array. Documents without an ID are numbered after
// their source.
func jsonDocuments(raw []byte, source string) ([]clustering.Document, error) {
	var docs []clustering.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents in %q: %w", source, err)
	}

	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = fmt.Sprintf("%s#%d", source, i+1)
		}
	}
	return docs, nil
}

// frontMatter is the YAML block that may open a Markdown document.
type frontMatter struct {
	Title      string   `yaml:"title"`
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// markdownDocument reads front matter when present and takes the title from it or from
// the first heading.
func markdownDocument(text string) clustering.Document {
	text = strings.TrimSpace(text)
	var fm frontMatter

	if rest, ok := strings.CutPrefix(text, "---\n"); ok {
		if block, body, found := strings.Cut(rest, "\n---"); found {
			if err := yaml.Unmarshal([]byte(block), &fm); err == nil {
				text = strings.TrimSpace(body)
			}
		}
	}

	title := fm.Title
	if title == "" {
		title = markdownTitle(text)
	}

	return clustering.Document{
		Title:      title,
		Content:    text,
		Categories: fm.Categories,
		Tags:       fm.Tags,
	}
}

// markdownTitle returns the first heading, or the first line when there is none.
func markdownTitle(text string) string {
	for line := range strings.Lines(text) {
		if heading, ok := strings.CutPrefix(strings.TrimSpace(line), "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(heading, "#"))
		}
	}
	return firstLine(text)
}

// firstLine returns the first non-empty line, shortened to maxDerivedTitle runes.
func firstLine(text string) string {
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxDerivedTitle {
			runes := []rune(line)
			line = strings.TrimSpace(string(runes[:maxDerivedTitle])) + "…"
		}
		return line
	}
	return ""
}

func stripQuery(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		return source[:i]
	}
	return source
}
