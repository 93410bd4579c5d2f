// Package seed loads a catalog data file into a CatalogStore.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/pkg/validator"
)

// seedIdentity owns seeded reviews that carry no reviewer email.
const seedIdentity = "seed"

// File is the catalog data file: every product plus the display-ordered
// category list.
type File struct {
	Products   []Product `json:"products" validate:"dive"`
	Categories []string  `json:"categories" validate:"dive,notblank"`
}

// Product is a product as it appears in the data file. Ids are numeric and
// may be written as numbers or strings.
type Product struct {
	ID          json.Number     `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"notblank"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"notblank"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Tags        []string        `json:"tags"`
	Images      []string        `json:"images"`
	Thumbnail   string          `json:"thumbnail"`
	Reviews     []Review        `json:"reviews" validate:"dive"`
}

// Review is a seeded review. The reviewer email becomes the review's
// identity.
type Review struct {
	ID            string    `json:"id"`
	Rating        int       `json:"rating" validate:"min=1,max=5"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	ReviewerName  string    `json:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail"`
}

// Decode reads and validates a data file.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := validator.Validate(&f); err != nil {
		return nil, fmt.Errorf("validate seed file: %w", err)
	}
	return &f, nil
}

// ToDomain converts p into a catalog document keyed by its padded id, with
// aggregates derived from its reviews.
func (p *Product) ToDomain() (*domain.Product, error) {
	id, err := domain.PadProductID(p.ID.String())
	if err != nil {
		return nil, err
	}
	if p.Price.IsNegative() {
		return nil, fmt.Errorf("product %s: price must not be negative", id)
	}

	out := &domain.Product{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		Tags:        nonNil(p.Tags),
		Images:      nonNil(p.Images),
		Thumbnail:   p.Thumbnail,
		Reviews:     make([]domain.Review, 0, len(p.Reviews)),
	}

	for _, r := range p.Reviews {
		identity := strings.TrimSpace(r.ReviewerEmail)
		if identity == "" {
			identity = seedIdentity
		}
		name := strings.TrimSpace(r.ReviewerName)
		if name == "" {
			name = domain.AnonymousReviewer
		}

		reviewID := r.ID
		if reviewID == "" {
			at := r.Date
			reviewID = domain.NewReviewID(identity, at)
			for out.FindReview(reviewID) >= 0 {
				at = at.Add(time.Millisecond)
				reviewID = domain.NewReviewID(identity, at)
			}
		}

		if err := out.AddReview(domain.Review{
			ID:               reviewID,
			Rating:           r.Rating,
			Comment:          strings.TrimSpace(r.Comment),
			ReviewerIdentity: identity,
			ReviewerName:     name,
			Date:             r.Date.UTC(),
		}); err != nil {
			return nil, fmt.Errorf("product %s: %w", id, err)
		}
	}
	out.Recompute()
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Report counts what a seeding run did.
type Report struct {
	Created int
	Skipped int
}

// Seeder writes data files into a store.
type Seeder struct {
	store  repository.CatalogStore
	logger *slog.Logger
}

// New creates a seeder for store.
func New(store repository.CatalogStore, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Run creates every product in f that the store does not hold yet, then
// replaces the category list. Existing products are left untouched, so Run
// can be repeated safely.
func (s *Seeder) Run(ctx context.Context, f *File) (Report, error) {
	var report Report

	for i := range f.Products {
		p, err := f.Products[i].ToDomain()
		if err != nil {
			return report, fmt.Errorf("product #%d: %w", i+1, err)
		}

		created, err := s.store.CreateIfAbsent(ctx, p)
		if err != nil {
			return report, fmt.Errorf("create product %s: %w", p.ID, err)
		}
		if !created {
			report.Skipped++
			s.logger.InfoContext(ctx, "product already exists, skipping", slog.String("product_id", p.ID))
			continue
		}
		report.Created++
		s.logger.DebugContext(ctx, "product written",
			slog.String("product_id", p.ID),
			slog.Int("reviews", p.TotalReviews),
		)
	}

	if len(f.Categories) > 0 {
		if err := s.store.SaveCategories(ctx, f.Categories); err != nil {
			return report, fmt.Errorf("save categories: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "seed complete",
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("categories", len(f.Categories)),
	)
	return report, nil
}
