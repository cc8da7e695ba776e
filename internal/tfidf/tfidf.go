// Package tfidf provides TF-IDF (Term Frequency-Inverse Document Frequency) vectorization.
//
// Building a model is split in two phases. A Builder accumulates documents into a
// running vocabulary and document-frequency table; Build then freezes that state into
// an immutable Model holding the vocabulary and its IDF weights. Only a Model can
// vectorize text, so vectors are never produced from a half-built corpus.
//
// The TF-IDF weighting combines:
//   - Term Frequency (TF): how frequently a term appears in the vectorized text
//   - Inverse Document Frequency (IDF): ln(total documents / documents containing the term)
//
// Usage Example:
//
//	model := tfidf.NewModel(contents)
//	vector := model.Vectorize(contents[0])
//
// A term present in every document has IDF ln(1) = 0, so ubiquitous terms contribute
// nothing to any vector.
package tfidf

import (
	"log/slog"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTermLength is the exclusive lower bound on term length (in characters).
// It is one shorter than the keyword extractor's bound.
const MinTermLength = 2

// tokenRune keeps lowercase ASCII word characters, turns any Unicode space into a
// plain space and drops everything else.
func tokenRune(r rune) rune {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
		return r
	}
	if unicode.IsSpace(r) {
		return ' '
	}
	return -1
}

// Builder accumulates documents for a TF-IDF model.
type Builder struct {
	terms       []string       // vocabulary in insertion order
	occurrences map[string]int // total occurrences of each term across all documents
	docFreq     map[string]int // number of documents containing each term
	total       int            // total number of documents
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		occurrences: make(map[string]int),
		docFreq:     make(map[string]int),
	}
}

// AddDocument folds one document into the running vocabulary.
func (b *Builder) AddDocument(text string) {
	tokens := tokenize(text)
	b.total++

	seen := make(map[string]struct{})
	for _, token := range tokens {
		if _, known := b.occurrences[token]; !known {
			b.terms = append(b.terms, token)
		}
		b.occurrences[token]++

		if _, counted := seen[token]; !counted {
			seen[token] = struct{}{}
			b.docFreq[token]++
		}
	}
}

// Occurrences returns how many times term has been seen across all added documents.
func (b *Builder) Occurrences(term string) int {
	return b.occurrences[term]
}

// Build freezes the accumulated documents into a Model.
// The Builder may keep receiving documents afterwards; earlier Models are unaffected.
func (b *Builder) Build() *Model {
	vocabulary := make([]string, len(b.terms))
	copy(vocabulary, b.terms)

	idf := make([]float64, len(vocabulary))
	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		index[term] = i
		// every vocabulary term appears in at least one document, so df > 0
		idf[i] = math.Log(float64(b.total) / float64(b.docFreq[term]))
	}

	slog.Debug("TF-IDF model built", "documents", b.total, "terms", len(vocabulary))
	return &Model{
		vocabulary: vocabulary,
		index:      index,
		idf:        idf,
		documents:  b.total,
	}
}

// Model is an immutable vocabulary with precomputed IDF weights.
type Model struct {
	vocabulary []string
	index      map[string]int
	idf        []float64
	documents  int
}

// NewModel builds a Model from a collection of documents in one step.
func NewModel(documents []string) *Model {
	builder := NewBuilder()
	for _, doc := range documents {
		builder.AddDocument(doc)
	}
	return builder.Build()
}

// Dimensions returns the length of vectors produced by Vectorize.
func (m *Model) Dimensions() int {
	return len(m.vocabulary)
}

// Documents returns the number of documents the model was built from.
func (m *Model) Documents() int {
	return m.documents
}

// Vocabulary returns a copy of the model's terms in vector order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.vocabulary))
	copy(out, m.vocabulary)
	return out
}

// IDF returns the inverse document frequency of term and whether the term is known.
func (m *Model) IDF(term string) (float64, bool) {
	i, ok := m.index[term]
	if !ok {
		return 0, false
	}
	return m.idf[i], true
}

// Vectorize computes the TF-IDF vector of text against the model's vocabulary.
// Entry i is the relative frequency of vocabulary term i in text times its IDF;
// terms absent from text, and terms unknown to the model, contribute nothing.
func (m *Model) Vectorize(text string) []float64 {
	vector := make([]float64, len(m.vocabulary))

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vector
	}

	for term, tf := range calculateTermFrequency(tokens) {
		if i, ok := m.index[term]; ok {
			vector[i] = tf * m.idf[i]
		}
	}

	return vector
}

// tokenize breaks text into normalized terms: lowercase, punctuation removed,
// split on whitespace, terms of MinTermLength characters or fewer discarded.
func tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	cleaned := strings.Map(tokenRune, strings.ToLower(text))

	var filtered []string
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) > MinTermLength {
			filtered = append(filtered, token)
		}
	}

	return filtered
}

// calculateTermFrequency computes the term frequency for a slice of tokens.
// Term frequency is calculated as: (count of term in document) / (total terms in document)
func calculateTermFrequency(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}

	termCounts := make(map[string]int)
	for _, token := range tokens {
		termCounts[token]++
	}

	totalTerms := float64(len(tokens))
	termFreqs := make(map[string]float64, len(termCounts))
	for term, count := range termCounts {
		termFreqs[term] = float64(count) / totalTerms
	}

	return termFreqs
}
