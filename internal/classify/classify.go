// Package classify flags boilerplate articles and passages before they reach clustering.
//
// Scraped pages and feed exports often carry standalone copyright notices, navigation
// strips, and publishing metadata. Left in, these short texts form their own tight
// clusters and crowd out real topics. The classifier stems each word and measures the
// share of words that belong to a boilerplate vocabulary.
package classify

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

// DefaultThreshold is the stopword ratio above which a text is considered boilerplate.
const DefaultThreshold = 0.33

// boilerplateStems contains stemmed words that dominate headers, footers, navigation
// and publishing metadata
var boilerplateStems = map[string]struct{}{
	// publishing & document structure
	"author":    {},
	"appendix":  {},
	"book":      {},
	"chapter":   {},
	"content":   {}, // "table of contents"
	"edit":      {}, // "edition"
	"ebook":     {},
	"footer":    {},
	"glossari":  {},
	"gutenberg": {},
	"navig":     {},
	"note":      {},
	"page":      {},
	"project":   {},
	"publish":   {},
	"text":      {},

	// navigation & interaction
	"about":     {},
	"comment":   {},
	"login":     {},
	"locat":     {},
	"newslett":  {},
	"profil":    {},
	"share":     {},
	"subscrib":  {},
	"updat":     {},

	// legal
	"copyright": {},
	"cooki":     {},
	"manag":     {},
	"permiss":   {},
	"polici":    {},
	"privaci":   {},
	"public":    {},
	"purpos":    {},
	"reproduc":  {},
	"reserv":    {},
	"right":     {},
	"risk":      {},
	"standard":  {},
	"term":      {},
	"use":       {},

	// references
	"citat":   {},
	"depart":  {},
	"edu":     {},
	"feder":   {},
	"foundat": {},
	"https":   {},
	"isbn":    {},
	"refer":   {},
}

// Classifier identifies boilerplate text using stopword analysis.
type Classifier struct {
	tokenRegex *regexp.Regexp
	threshold  float64
}

// NewClassifier creates a Classifier using DefaultThreshold.
func NewClassifier() *Classifier {
	return NewClassifierWithThreshold(DefaultThreshold)
}

// NewClassifierWithThreshold creates a Classifier with a custom threshold.
// Non-positive thresholds fall back to DefaultThreshold.
func NewClassifierWithThreshold(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		tokenRegex: regexp.MustCompile(`\b[a-zA-Z]+\b`),
		threshold:  threshold,
	}
}

// Threshold returns the ratio above which text is classified as boilerplate.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// StopwordRatio returns the share of words in text whose stem is a boilerplate stem.
// Text without any words has a ratio of 1.
func (c *Classifier) StopwordRatio(text string) float64 {
	tokens := c.tokenRegex.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 1
	}

	stopwordCount := 0
	for _, token := range tokens {
		stemmed, err := snowball.Stem(token, "english", true)
		if err != nil {
			stemmed = token
		}
		if _, ok := boilerplateStems[stemmed]; ok {
			stopwordCount++
		}
	}

	return float64(stopwordCount) / float64(len(tokens))
}

// IsExtraneous reports whether text should be dropped as boilerplate.
// Empty and word-less texts are always extraneous.
func (c *Classifier) IsExtraneous(text string) bool {
	return c.StopwordRatio(text) > c.threshold
}
