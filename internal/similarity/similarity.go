// Package similarity provides the distance and similarity measures used by the clusterers:
// Euclidean distance and cosine similarity over numeric vectors, and Jaccard similarity
// over word-token sets.
package similarity

import (
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// wordRegex matches word tokens for set-based text comparison (no length filtering)
var wordRegex = regexp.MustCompile(`\b\w+\b`)

// Euclidean returns the L2 distance between two equal-length vectors.
// Vectors of different lengths are infinitely far apart.
func Euclidean(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

// Cosine returns the cosine of the angle between two equal-length vectors.
// It returns 0 when either vector has zero magnitude or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	magA := floats.Norm(a, 2)
	magB := floats.Norm(b, 2)
	if magA == 0 || magB == 0 {
		return 0
	}

	return floats.Dot(a, b) / (magA * magB)
}

// Jaccard compares two texts by the overlap of their lowercase word sets:
// |A ∩ B| / |A ∪ B|. Two texts without any words score 0.
func Jaccard(a, b string) float64 {
	return jaccard(wordSet(a), wordSet(b))
}

// JaccardSets compares two token lists as sets. Empty lists score 0.
func JaccardSets(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}
	return jaccard(setA, setB)
}

func wordSet(text string) map[string]struct{} {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for s := range a {
		if _, ok := b[s]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
