package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
)

func titles(products []*domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func catalog(names ...string) []*domain.Product {
	out := make([]*domain.Product, len(names))
	for i, n := range names {
		out[i] = &domain.Product{ID: string(rune('a' + i)), Title: n}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		text, query string
		want        float64
	}{
		{"Phone X", "phone", 0},
		{"Phone X", "phne", 0.25},
		{"iPhone 9", "PHONE", 0},
		{"Lamp", "phne", 0.75},
		{"abc", "xyz", 1},
		{"ab", "abcdefgh", 0.75},
		{"", "abc", 1},
		{"anything", "", 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Score(tt.text, tt.query), 1e-9, "Score(%q, %q)", tt.text, tt.query)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "creme brulee", Normalize("  Crème   Brûlée "))
	assert.Equal(t, "strasse", Normalize("STRASSE"))
	assert.Equal(t, "", Normalize("   "))
}

func TestMatch_TypoMatchesAndUnrelatedDoesNot(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	got := m.Match(catalog("Phone X", "Lamp"), "phne")
	assert.Equal(t, []string{"Phone X"}, titles(got))
}

func TestMatch_BestFirstAndStableTies(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	in := catalog("Smart Phne Case", "Phone Stand", "Desk Lamp", "Phone Charger")

	got := m.Match(in, "phone")

	// Exact substrings (score 0) keep their input order, the typo follows.
	assert.Equal(t, []string{"Phone Stand", "Phone Charger", "Smart Phne Case"}, titles(got))
}

func TestMatch_DiacriticAndCaseInsensitive(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	got := m.Match(catalog("Café Noir Perfume", "Green Tea"), "CAFE")
	assert.Equal(t, []string{"Café Noir Perfume"}, titles(got))
}

func TestMatch_NoMatchIsEmpty(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	got := m.Match(catalog("Lamp", "Chair"), "laptop bag")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatch_EmptyQueryReturnsInput(t *testing.T) {
	in := catalog("a", "b")
	assert.Equal(t, in, NewMatcher(DefaultThreshold).Match(in, "  "))
}

func TestMatch_Deterministic(t *testing.T) {
	m := NewMatcher(DefaultThreshold)
	in := catalog("Phone A", "Phone B", "Phon C", "Fone D")
	first := titles(m.Match(in, "phone"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, titles(m.Match(in, "phone")))
	}
}

func TestNewMatcher_ThresholdBounds(t *testing.T) {
	assert.Equal(t, 0.5, NewMatcher(0.5).Threshold())
	assert.Equal(t, DefaultThreshold, NewMatcher(-1).Threshold())
	assert.Equal(t, DefaultThreshold, NewMatcher(2).Threshold())

	strict := NewMatcher(0)
	assert.Len(t, strict.Match(catalog("Phone X"), "phne"), 0)
	assert.Len(t, strict.Match(catalog("Phone X"), "phon"), 1)
}
