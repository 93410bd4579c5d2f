package pagination

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Params
		wantErr bool
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: 20}},
		{name: "explicit", query: "page=3&limit=5", want: Params{Page: 3, Limit: 5}},
		{name: "clamped", query: "limit=500", want: Params{Page: 1, Limit: 50}},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "negative limit", query: "limit=-2", wantErr: true},
		{name: "not a number", query: "page=two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := FromQuery(q, 50)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromQuery_ZeroMaxUsesDefault(t *testing.T) {
	got, err := FromQuery(url.Values{"limit": {"1000"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, got.Limit)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	w := Slice(items, Params{Page: 1, Limit: 2})
	assert.Equal(t, []int{1, 2}, w.Items)
	assert.True(t, w.HasMore)
	assert.Equal(t, 5, w.Total)

	w = Slice(items, Params{Page: 3, Limit: 2})
	assert.Equal(t, []int{5}, w.Items)
	assert.False(t, w.HasMore)

	w = Slice(items, Params{Page: 9, Limit: 2})
	assert.Empty(t, w.Items)
	assert.False(t, w.HasMore)
}

func TestSlice_ExactBoundaryHasNoMore(t *testing.T) {
	w := Slice([]int{1, 2, 3, 4}, Params{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, w.Items)
	assert.False(t, w.HasMore)
}

func TestSlice_PagesConcatenateToWhole(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	var all []int
	for page := 1; ; page++ {
		w := Slice(items, Params{Page: page, Limit: 5})
		all = append(all, w.Items...)
		if !w.HasMore {
			break
		}
	}
	assert.Equal(t, items, all)
}

func TestSlice_DoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3}
	w := Slice(items, Params{Page: 1, Limit: 2})
	w.Items[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestSlice_HugePageIsEmpty(t *testing.T) {
	q := url.Values{"page": {strconv.Itoa(math.MaxInt)}, "limit": {"20"}}
	p, err := FromQuery(q, 0)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, p.Offset())

	var w Window[int]
	require.NotPanics(t, func() { w = Slice([]int{1, 2, 3}, p) })
	assert.Empty(t, w.Items)
	assert.False(t, w.HasMore)
	assert.Equal(t, 3, w.Total)
	assert.Equal(t, math.MaxInt, w.Page)
}
