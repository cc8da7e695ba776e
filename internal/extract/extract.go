// Package extract turns fetched sources into documents ready for clustering.
//
// HTML pages are reduced to their main article (go-readability), converted to Markdown,
// and mined for categories and tags in their meta elements. Markdown files may carry a
// YAML front matter block with the same fields. JSON sources hold documents that were
// already prepared upstream, vectors included.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Options controls how HTML content is extracted.
type Options struct {
	Selector   string   // CSS selector; overrides readability and IncludeAll
	IncludeAll bool     // convert the whole page without readability filtering
	BaseURL    *url.URL // page URL for readability (may be nil)
}

// Page is the result of extracting one HTML document.
type Page struct {
	Title      string
	Markdown   string
	Byline     string
	SiteName   string
	Categories []string
	Tags       []string
}

// ExtractHTML extracts the title, main content and meta labels of an HTML document.
func ExtractHTML(content io.Reader, opts Options) (Page, error) {
	raw, err := io.ReadAll(content)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read HTML content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := Page{
		Categories: metaValues(doc, `meta[property="article:section"], meta[name="category"]`, false),
		Tags:       metaValues(doc, `meta[name="keywords"], meta[property="article:tag"], meta[name="news_keywords"]`, true),
	}
	title := metaContent(doc, `meta[property="og:title"]`)

	switch {
	case opts.Selector != "":
		page.Markdown, err = extractWithSelector(doc, opts.Selector)
	case opts.IncludeAll:
		page.Markdown, err = convertToMarkdown(string(raw))
	default:
		var article readability.Article
		article, err = extractMainContent(raw, opts.BaseURL)
		if err == nil {
			page.Markdown, err = convertToMarkdown(article.Content)
			page.Byline = strings.TrimSpace(article.Byline)
			page.SiteName = strings.TrimSpace(article.SiteName)
			if title == "" {
				title = strings.TrimSpace(article.Title)
			}
		}
	}
	if err != nil {
		return Page{}, err
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	page.Title = title

	return page, nil
}

// ToMarkdown extracts the content of an HTML document as Markdown.
func ToMarkdown(content io.Reader, opts Options) (string, error) {
	page, err := ExtractHTML(content, opts)
	if err != nil {
		return "", err
	}
	return page.Markdown, nil
}

// extractMainContent uses go-readability to extract the main article content
func extractMainContent(raw []byte, baseURL *url.URL) (readability.Article, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(raw), baseURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("failed to extract main content: %w", err)
	}
	return article, nil
}

// extractWithSelector converts the elements matching selector
func extractWithSelector(doc *goquery.Document, selector string) (string, error) {
	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("no elements found matching selector: %s", selector)
	}

	var htmlParts []string
	selection.Each(func(i int, s *goquery.Selection) {
		html, err := s.Html()
		if err == nil {
			// wrap each element to preserve structure
			tagName := goquery.NodeName(s)
			htmlParts = append(htmlParts, fmt.Sprintf("<%s>%s</%s>", tagName, html, tagName))
		}
	})

	if len(htmlParts) == 0 {
		return "", fmt.Errorf("failed to extract HTML from selection")
	}

	return convertToMarkdown(strings.Join(htmlParts, "\n"))
}

// convertToMarkdown converts HTML string to clean Markdown
func convertToMarkdown(htmlString string) (string, error) {
	converter := md.NewConverter("", true, nil)

	converter.Use(md.Plugin(func(c *md.Converter) []md.Rule {
		return []md.Rule{
			{
				Filter: []string{"*"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					cleaned := strings.TrimSpace(content)
					result := strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
					return &result
				},
			},
		}
	}))

	markdown, err := converter.ConvertString(htmlString)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	cleaned := strings.TrimSpace(markdown)
	cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")

	return cleaned, nil
}

// metaContent returns the trimmed content attribute of the first match.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// metaValues collects content attributes of all matches, in document order and
// without duplicates. With split set, comma separated lists are expanded.
func metaValues(doc *goquery.Document, selector string, split bool) []string {
	var values []string
	seen := make(map[string]struct{})

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		parts := []string{content}
		if split {
			parts = strings.Split(content, ",")
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key := strings.ToLower(part)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			values = append(values, part)
		}
	})

	return values
}
