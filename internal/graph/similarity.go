package graph

import (
	"math"
	"strings"
	"unicode/utf8"
)

// minKeywordLength excludes short words such as articles from keyword overlap.
const minKeywordLength = 3

// KeywordOverlap is the Jaccard index of the lowercase whitespace tokens of
// a and b that are at least three characters long.
func KeywordOverlap(a, b string) float64 {
	return jaccard(keywordSet(a), keywordSet(b))
}

func keywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if utf8.RuneCountInString(token) >= minKeywordLength {
			set[token] = struct{}{}
		}
	}
	return set
}

// AuthorOverlap is the Jaccard index of trimmed, lowercased author names.
// It is 0 when either side has no usable names.
func AuthorOverlap(a, b []string) float64 {
	return jaccard(authorSet(a), authorSet(b))
}

func authorSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if n := strings.ToLower(strings.TrimSpace(name)); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// YearProximity decays linearly from 1 for the same year to 0 at a gap of
// ten years or more. An unknown year (0) on either side scores 0.
func YearProximity(a, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff >= 10 {
		return 0
	}
	return 1 - float64(diff)/10
}
