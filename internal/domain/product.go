package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

// ProductIDWidth is the zero-padded width of a product store key.
const ProductIDWidth = 3

// Product is a catalog document. Reviews are embedded and AverageRating and
// TotalReviews are always derived from them.
type Product struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Tags          []string        `json:"tags"`
	Images        []string        `json:"images"`
	Thumbnail     string          `json:"thumbnail,omitempty"`
	Reviews       []Review        `json:"reviews"`
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`

	// Version is managed by the store for optimistic concurrency.
	Version int64 `json:"-"`
}

// PadProductID validates a product id and left-pads it with zeros to
// ProductIDWidth so lexical and numeric order agree.
func PadProductID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperrors.InvalidInput("product id is required")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", apperrors.InvalidInput(fmt.Sprintf("product id must be numeric, got %q", id))
		}
	}
	if len(id) < ProductIDWidth {
		id = strings.Repeat("0", ProductIDWidth-len(id)) + id
	}
	return id, nil
}

// Recompute derives AverageRating and TotalReviews from Reviews. The average
// is rounded half-up to one decimal place; an empty review set averages 0.
func (p *Product) Recompute() {
	p.TotalReviews = len(p.Reviews)
	if p.TotalReviews == 0 {
		p.AverageRating = decimal.Zero
		return
	}
	sum := decimal.Zero
	for _, r := range p.Reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	p.AverageRating = sum.Div(decimal.NewFromInt(int64(p.TotalReviews))).Round(1)
}

// FindReview returns the index of the review with id, or -1.
func (p *Product) FindReview(id string) int {
	for i := range p.Reviews {
		if p.Reviews[i].ID == id {
			return i
		}
	}
	return -1
}

// AddReview appends r and recomputes the aggregates. It fails when a review
// with the same id already exists.
func (p *Product) AddReview(r Review) error {
	if p.FindReview(r.ID) >= 0 {
		return apperrors.Conflict(fmt.Sprintf("review %s already exists", r.ID))
	}
	p.Reviews = append(p.Reviews, r)
	p.Recompute()
	return nil
}

// ReplaceReview overwrites the review at index i and recomputes the aggregates.
func (p *Product) ReplaceReview(i int, r Review) {
	p.Reviews[i] = r
	p.Recompute()
}

// RemoveReview drops the review at index i and recomputes the aggregates.
func (p *Product) RemoveReview(i int) {
	p.Reviews = append(p.Reviews[:i:i], p.Reviews[i+1:]...)
	p.Recompute()
}

// Clone returns a deep copy, so a store can hand out documents without
// sharing slices with its own state.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = cloneSlice(p.Tags)
	c.Images = cloneSlice(p.Images)
	c.Reviews = cloneSlice(p.Reviews)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
