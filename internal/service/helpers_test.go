package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/internal/repository/memory"
	"github.com/MohauMushi/FluxStore-App/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return logger.Discard()
}

func newProduct(id, title, category string, price string) *domain.Product {
	return &domain.Product{
		ID:       id,
		Title:    title,
		Category: category,
		Price:    decimal.RequireFromString(price),
	}
}

func seededStore(t *testing.T, products ...*domain.Product) *memory.Store {
	t.Helper()
	s := memory.New()
	for _, p := range products {
		created, err := s.CreateIfAbsent(context.Background(), p)
		require.NoError(t, err)
		require.True(t, created)
	}
	return s
}

func ids(products []*domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewEvent(ctx context.Context, eventType string, product *domain.Product, review domain.Review) error {
	args := m.Called(ctx, eventType, product, review)
	return args.Error(0)
}

// --- Store wrappers for failure injection ---

// conflictingStore loses the first n update races.
type conflictingStore struct {
	*memory.Store

	mu        sync.Mutex
	conflicts int
	calls     int
}

func (s *conflictingStore) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*domain.Product, error) {
	s.mu.Lock()
	s.calls++
	lose := s.conflicts > 0
	if lose {
		s.conflicts--
	}
	s.mu.Unlock()

	if lose {
		return nil, repository.ErrVersionConflict
	}
	return s.Store.Update(ctx, id, fn)
}

// failingStore fails every read and write with err.
type failingStore struct {
	*memory.Store
	err error
}

func (s *failingStore) Get(context.Context, string) (*domain.Product, error) { return nil, s.err }

func (s *failingStore) ListAll(context.Context) ([]*domain.Product, error) { return nil, s.err }

func (s *failingStore) ListByCategory(context.Context, string) ([]*domain.Product, error) {
	return nil, s.err
}

func (s *failingStore) Update(context.Context, string, repository.UpdateFunc) (*domain.Product, error) {
	return nil, s.err
}

// blockingStore waits for the context to end on every listing.
type blockingStore struct {
	*memory.Store
}

func (s *blockingStore) ListAll(ctx context.Context) ([]*domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
