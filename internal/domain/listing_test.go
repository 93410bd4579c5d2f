package domain

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

func TestParseListingQuery_Defaults(t *testing.T) {
	q, err := ParseListingQuery(url.Values{}, 100)
	require.NoError(t, err)
	assert.Equal(t, DefaultListingQuery(), q)
	assert.False(t, q.SortExplicit)
	assert.False(t, q.Desc())
}

func TestParseListingQuery_AllParams(t *testing.T) {
	v := url.Values{
		"page":     {"3"},
		"limit":    {"5"},
		"sortBy":   {"price"},
		"order":    {"DESC"},
		"category": {"smartphones"},
		"search":   {"  phne "},
	}
	q, err := ParseListingQuery(v, 100)
	require.NoError(t, err)

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, SortByPrice, q.SortBy)
	assert.True(t, q.SortExplicit)
	assert.True(t, q.Desc())
	assert.Equal(t, "smartphones", q.Category)
	assert.Equal(t, "phne", q.Search)
	assert.Equal(t, 10, q.Params().Offset())
}

func TestParseListingQuery_ClampsLimit(t *testing.T) {
	q, err := ParseListingQuery(url.Values{"limit": {"500"}}, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, q.Limit)
}

func TestParseListingQuery_CategoryIsCaseSensitive(t *testing.T) {
	q, err := ParseListingQuery(url.Values{"category": {"Laptops"}}, 100)
	require.NoError(t, err)
	assert.Equal(t, "Laptops", q.Category)
}

func TestParseListingQuery_Invalid(t *testing.T) {
	tests := map[string]url.Values{
		"page zero":      {"page": {"0"}},
		"page text":      {"page": {"two"}},
		"negative limit": {"limit": {"-4"}},
		"unknown sort":   {"sortBy": {"rating"}},
		"unknown order":  {"order": {"up"}},
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseListingQuery(v, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
