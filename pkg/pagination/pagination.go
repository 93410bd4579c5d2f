package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a validated page window. Page is 1-based.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns page 1 with DefaultLimit items.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// Offset is the index of the first item on the page. It saturates at
// math.MaxInt instead of overflowing for absurdly large pages.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// FromQuery reads "page" and "limit" from q. Absent values take defaults; a
// limit above maxLimit is clamped. Non-numeric or non-positive values are
// rejected with InvalidInput.
func FromQuery(q url.Values, maxLimit int) (Params, error) {
	p := DefaultParams()
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	var err error
	if p.Page, err = positiveInt(q, "page", p.Page); err != nil {
		return Params{}, err
	}
	if p.Limit, err = positiveInt(q, "limit", p.Limit); err != nil {
		return Params{}, err
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}

func positiveInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be a positive integer, got %q", key, raw))
	}
	return v, nil
}

// Window is one page of an in-memory result set.
type Window[T any] struct {
	Items    []T
	Page     int
	PageSize int
	HasMore  bool
	Total    int
}

// Slice cuts the page described by p out of items. HasMore is true iff a
// further page would be non-empty. A page past the end is empty.
func Slice[T any](items []T, p Params) Window[T] {
	total := len(items)
	start := min(p.Offset(), total)
	end := start + min(max(p.Limit, 0), total-start)

	page := make([]T, end-start)
	copy(page, items[start:end])

	return Window[T]{
		Items:    page,
		Page:     p.Page,
		PageSize: p.Limit,
		HasMore:  end > start && end < total,
		Total:    total,
	}
}
