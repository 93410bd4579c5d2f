// Package search ranks catalog products against a free-text query using
// approximate substring matching on the product title.
package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
)

// DefaultThreshold is the highest score still accepted as a match.
const DefaultThreshold = 0.3

// Matcher filters products whose title fuzzily contains a query.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher. A threshold outside [0,1] falls back to
// DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

type scored struct {
	product *domain.Product
	score   float64
}

// Match returns the candidates whose title scores at or below the threshold,
// best match first. Equal scores keep their input order. An empty query
// returns the candidates unchanged.
func (m *Matcher) Match(candidates []*domain.Product, query string) []*domain.Product {
	q := []rune(Normalize(query))
	if len(q) == 0 {
		return candidates
	}

	hits := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		s := score([]rune(Normalize(p.Title)), q)
		if s <= m.threshold {
			hits = append(hits, scored{product: p, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })

	out := make([]*domain.Product, len(hits))
	for i, h := range hits {
		out[i] = h.product
	}
	return out
}

// Score is the normalized distance between query and its closest substring
// of text: 0 for an exact substring, 1 for unrelated strings.
func Score(text, query string) float64 {
	q := []rune(Normalize(query))
	if len(q) == 0 {
		return 0
	}
	return score([]rune(Normalize(text)), q)
}

// Normalize case-folds s, strips combining marks and collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

func score(text, query []rune) float64 {
	d := substringDistance(text, query)
	s := float64(d) / float64(len(query))
	if s > 1 {
		s = 1
	}
	return s
}

// substringDistance is the minimum edit distance between query and any
// substring of text. The first row is all zeros, so a match may start at
// any position in text at no cost, and the answer is the minimum of the
// last row.
func substringDistance(text, query []rune) int {
	prev := make([]int, len(text)+1)
	curr := make([]int, len(text)+1)

	for i := 1; i <= len(query); i++ {
		curr[0] = i
		for j := 1; j <= len(text); j++ {
			cost := 1
			if query[i-1] == text[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	best := prev[0]
	for _, v := range prev[1:] {
		if v < best {
			best = v
		}
	}
	return best
}
