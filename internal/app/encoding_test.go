package app

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
)

func TestUseNumericDecimals(t *testing.T) {
	prev := decimal.MarshalJSONWithoutQuotes
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })

	UseNumericDecimals()

	p := &domain.Product{
		ID:      "002",
		Price:   decimal.RequireFromString("499.99"),
		Reviews: []domain.Review{{ID: "r1", Rating: 4}, {ID: "r2", Rating: 5}},
	}
	p.Recompute()

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 499.99, got["price"])
	assert.Equal(t, 4.5, got["averageRating"])
}
