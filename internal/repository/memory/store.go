package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

// Store is an in-process CatalogStore. Documents are cloned on the way in
// and out, and the mutex is never held while an UpdateFunc runs.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*domain.Product
	categories []string
}

var _ repository.CatalogStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{products: make(map[string]*domain.Product)}
}

// Get returns a copy of the product with id.
func (s *Store) Get(ctx context.Context, id string) (p *domain.Product, err error) {
	_, end := database.TraceOp(ctx, database.SystemMemory, "GetProduct", "")
	defer func() { end(err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return stored.Clone(), nil
}

// ListByCategory returns copies of the products in category, by id.
func (s *Store) ListByCategory(ctx context.Context, category string) (out []*domain.Product, err error) {
	_, end := database.TraceOp(ctx, database.SystemMemory, "ListProductsByCategory", "")
	defer func() { end(err) }()

	return s.list(func(p *domain.Product) bool { return p.Category == category }), nil
}

// ListAll returns copies of every product, by id.
func (s *Store) ListAll(ctx context.Context) (out []*domain.Product, err error) {
	_, end := database.TraceOp(ctx, database.SystemMemory, "ListProducts", "")
	defer func() { end(err) }()

	return s.list(func(*domain.Product) bool { return true }), nil
}

func (s *Store) list(keep func(*domain.Product) bool) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.products))
	for id, p := range s.products {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id].Clone())
	}
	return out
}

// Update applies fn to a copy of the product and swaps it in if no other
// update committed in the meantime.
func (s *Store) Update(ctx context.Context, id string, fn repository.UpdateFunc) (p *domain.Product, err error) {
	_, end := database.TraceOp(ctx, database.SystemMemory, "UpdateProduct", "")
	defer func() { end(err) }()

	s.mu.RLock()
	stored, ok := s.products[id]
	var working *domain.Product
	if ok {
		working = stored.Clone()
	}
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	readVersion := working.Version

	if err := fn(working); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	working.ID = id
	working.Recompute()
	working.Version = readVersion + 1

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	if current.Version != readVersion {
		return nil, repository.ErrVersionConflict
	}
	s.products[id] = working
	return working.Clone(), nil
}

// CreateIfAbsent stores a copy of p at version 1 unless its id is taken.
func (s *Store) CreateIfAbsent(ctx context.Context, p *domain.Product) (created bool, err error) {
	_, end := database.TraceOp(ctx, database.SystemMemory, "CreateProduct", "")
	defer func() { end(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return false, nil
	}
	c := p.Clone()
	c.Recompute()
	c.Version = 1
	s.products[c.ID] = c
	return true, nil
}

// ListCategories returns a copy of the category list.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.categories...), nil
}

// SaveCategories replaces the category list.
func (s *Store) SaveCategories(ctx context.Context, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]string{}, categories...)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
