package repository

import (
	"context"
	"errors"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
)

// ErrVersionConflict is returned by Update when the document changed between
// the read and the write. Nothing was written; the caller may retry.
var ErrVersionConflict = errors.New("product document version changed")

// CategoriesDocument is the key of the document holding the category list.
const CategoriesDocument = "allCategories"

// UpdateFunc mutates a private copy of a product inside Store.Update.
// Returning an error aborts the update without writing.
type UpdateFunc func(p *domain.Product) error

// CatalogStore persists product documents keyed by padded product id.
type CatalogStore interface {
	// Get returns the product with id, or a NotFound AppError.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// ListByCategory returns the products whose category equals category
	// exactly, in ascending id order.
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)

	// ListAll returns every product in ascending id order.
	ListAll(ctx context.Context) ([]*domain.Product, error)

	// Update reads the product, applies fn to a copy, recomputes its review
	// aggregates and writes it back only if its version is unchanged. It
	// makes a single attempt and returns ErrVersionConflict on a lost race.
	Update(ctx context.Context, id string, fn UpdateFunc) (*domain.Product, error)

	// CreateIfAbsent stores p unless a product with the same id exists. It
	// reports whether p was written.
	CreateIfAbsent(ctx context.Context, p *domain.Product) (bool, error)

	// ListCategories returns the stored category list, empty when unset.
	ListCategories(ctx context.Context) ([]string, error)

	// SaveCategories replaces the stored category list.
	SaveCategories(ctx context.Context, categories []string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}
