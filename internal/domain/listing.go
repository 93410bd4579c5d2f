package domain

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
	"github.com/MohauMushi/FluxStore-App/pkg/pagination"
)

// Listing sort keys and directions.
const (
	SortByID    = "id"
	SortByPrice = "price"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListingQuery is a validated product listing request.
type ListingQuery struct {
	Page     int
	Limit    int
	SortBy   string
	Order    string
	Category string
	Search   string

	// SortExplicit is true when the caller named sortBy. Search results keep
	// their relevance order otherwise.
	SortExplicit bool
}

// DefaultListingQuery is page 1 of all products by ascending id.
func DefaultListingQuery() ListingQuery {
	return ListingQuery{
		Page:   1,
		Limit:  pagination.DefaultLimit,
		SortBy: SortByID,
		Order:  OrderAsc,
	}
}

// Params returns the page window of the query.
func (q ListingQuery) Params() pagination.Params {
	return pagination.Params{Page: q.Page, Limit: q.Limit}
}

// Desc reports whether results are in descending order.
func (q ListingQuery) Desc() bool {
	return q.Order == OrderDesc
}

// ParseListingQuery validates raw query parameters. limit is clamped to
// maxLimit; unknown sortBy or order values are rejected.
func ParseListingQuery(v url.Values, maxLimit int) (ListingQuery, error) {
	q := DefaultListingQuery()

	p, err := pagination.FromQuery(v, maxLimit)
	if err != nil {
		return ListingQuery{}, err
	}
	q.Page, q.Limit = p.Page, p.Limit

	if raw := strings.TrimSpace(v.Get("sortBy")); raw != "" {
		switch raw {
		case SortByID, SortByPrice:
			q.SortBy = raw
			q.SortExplicit = true
		default:
			return ListingQuery{}, apperrors.InvalidInput(fmt.Sprintf("sortBy must be %q or %q, got %q", SortByID, SortByPrice, raw))
		}
	}

	if raw := strings.ToLower(strings.TrimSpace(v.Get("order"))); raw != "" {
		if raw != OrderAsc && raw != OrderDesc {
			return ListingQuery{}, apperrors.InvalidInput(fmt.Sprintf("order must be %q or %q, got %q", OrderAsc, OrderDesc, raw))
		}
		q.Order = raw
	}

	q.Category = v.Get("category")
	q.Search = strings.TrimSpace(v.Get("search"))
	return q, nil
}

// ListingResult is one page of a product listing.
type ListingResult struct {
	Products []*Product `json:"products"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	HasMore  bool       `json:"hasMore"`
	Total    int        `json:"total"`
}
