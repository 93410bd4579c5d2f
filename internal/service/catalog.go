package service

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/internal/search"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
	"github.com/MohauMushi/FluxStore-App/pkg/pagination"
)

// DefaultStoreTimeout bounds a single store call when none is configured.
const DefaultStoreTimeout = 3 * time.Second

// CatalogService answers product listing, product detail and category
// queries.
type CatalogService struct {
	store        repository.CatalogStore
	matcher      *search.Matcher
	storeTimeout time.Duration
	logger       *slog.Logger
}

// NewCatalogService creates a catalog query service.
func NewCatalogService(store repository.CatalogStore, matcher *search.Matcher, storeTimeout time.Duration, logger *slog.Logger) *CatalogService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &CatalogService{
		store:        store,
		matcher:      matcher,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// ListProducts resolves q in a fixed order: category filter and fetch,
// fuzzy search narrowing, sort, then pagination. Search results keep their
// relevance order unless the caller asked for a sort key.
func (s *CatalogService) ListProducts(ctx context.Context, q domain.ListingQuery) (*domain.ListingResult, error) {
	candidates, err := s.fetch(ctx, q.Category)
	if err != nil {
		return nil, err
	}

	sortNeeded := true
	if q.Search != "" {
		candidates = s.matcher.Match(candidates, q.Search)
		sortNeeded = q.SortExplicit
	}
	if sortNeeded {
		SortProducts(candidates, q.SortBy, q.Desc())
	}

	window := pagination.Slice(candidates, q.Params())

	s.logger.DebugContext(ctx, "products listed",
		slog.String("category", q.Category),
		slog.String("search", q.Search),
		slog.Int("page", window.Page),
		slog.Int("returned", len(window.Items)),
		slog.Int("candidates", window.Total),
	)

	return &domain.ListingResult{
		Products: window.Items,
		Page:     window.Page,
		PageSize: window.PageSize,
		HasMore:  window.HasMore,
		Total:    window.Total,
	}, nil
}

func (s *CatalogService) fetch(ctx context.Context, category string) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		products []*domain.Product
		err      error
	)
	if category != "" {
		products, err = s.store.ListByCategory(ctx, category)
	} else {
		products, err = s.store.ListAll(ctx)
	}
	if err != nil {
		return nil, apperrors.FromStore(err, "list products")
	}
	return products, nil
}

// GetProduct returns a product by id. The id must be numeric and is padded
// to the store key width.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key, err := domain.PadProductID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, apperrors.FromStore(err, "get product")
	}
	return p, nil
}

// ListCategories returns the stored category names in display order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "list categories")
	}
	return categories, nil
}

// SortProducts orders products in place by sortBy. Price ties fall back to
// ascending id whatever the direction; desc only flips the primary key.
func SortProducts(products []*domain.Product, sortBy string, desc bool) {
	slices.SortStableFunc(products, func(a, b *domain.Product) int {
		var c int
		if sortBy == domain.SortByPrice {
			c = a.Price.Cmp(b.Price)
		} else {
			c = CompareIDs(a.ID, b.ID)
		}
		if desc {
			c = -c
		}
		if c != 0 || sortBy != domain.SortByPrice {
			return c
		}
		return CompareIDs(a.ID, b.ID)
	})
}

// CompareIDs compares ids numerically when both parse as integers and
// lexically otherwise.
func CompareIDs(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
