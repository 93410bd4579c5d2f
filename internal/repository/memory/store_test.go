package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

func seed(t *testing.T, s *Store, products ...*domain.Product) {
	t.Helper()
	for _, p := range products {
		created, err := s.CreateIfAbsent(context.Background(), p)
		require.NoError(t, err)
		require.True(t, created)
	}
}

func product(id, category string) *domain.Product {
	return &domain.Product{ID: id, Title: "p" + id, Category: category, Price: decimal.NewFromInt(10)}
}

func addRating(rating int) repository.UpdateFunc {
	return func(p *domain.Product) error {
		return p.AddReview(domain.Review{ID: strconv.Itoa(len(p.Reviews)), Rating: rating, Comment: "c"})
	}
}

func TestStore_GetNotFound(t *testing.T) {
	_, err := New().Get(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_ListOrderAndFilter(t *testing.T) {
	s := New()
	seed(t, s, product("003", "laptops"), product("001", "phones"), product("002", "laptops"))

	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"001", "002", "003"}, []string{all[0].ID, all[1].ID, all[2].ID})

	laptops, err := s.ListByCategory(context.Background(), "laptops")
	require.NoError(t, err)
	require.Len(t, laptops, 2)
	assert.Equal(t, "002", laptops[0].ID)

	none, err := s.ListByCategory(context.Background(), "Laptops")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ReturnedDocumentsAreCopies(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	got, err := s.Get(context.Background(), "001")
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.Get(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, "p001", again.Title)
}

func TestStore_CreateIfAbsentSkipsExisting(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	p := product("001", "other")
	created, err := s.CreateIfAbsent(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, created)

	got, _ := s.Get(context.Background(), "001")
	assert.Equal(t, "phones", got.Category)
	assert.Equal(t, int64(1), got.Version)
}

func TestStore_UpdateRecomputesAndBumpsVersion(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	updated, err := s.Update(context.Background(), "001", func(p *domain.Product) error {
		p.Reviews = append(p.Reviews, domain.Review{ID: "a", Rating: 4}, domain.Review{ID: "b", Rating: 5})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "4.5", updated.AverageRating.String())
	assert.Equal(t, 2, updated.TotalReviews)
	assert.Equal(t, int64(2), updated.Version)
}

func TestStore_UpdateAbortLeavesDocumentUnchanged(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	boom := errors.New("boom")
	_, err := s.Update(context.Background(), "001", func(p *domain.Product) error {
		p.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Get(context.Background(), "001")
	assert.Equal(t, "p001", got.Title)
	assert.Equal(t, int64(1), got.Version)
}

func TestStore_UpdateDetectsConcurrentWrite(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	// The nested update commits first, so the outer one must lose. This also
	// deadlocks if the mutex were held while fn runs.
	_, err := s.Update(context.Background(), "001", func(p *domain.Product) error {
		_, innerErr := s.Update(context.Background(), "001", addRating(5))
		require.NoError(t, innerErr)
		return p.AddReview(domain.Review{ID: "outer", Rating: 1})
	})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	got, _ := s.Get(context.Background(), "001")
	assert.Equal(t, 1, got.TotalReviews)
	assert.Equal(t, "5", got.AverageRating.String())
}

func TestStore_UpdateMissingProduct(t *testing.T) {
	_, err := New().Update(context.Background(), "009", addRating(3))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_ConcurrentUpdatesNeverLoseWrites(t *testing.T) {
	s := New()
	seed(t, s, product("001", "phones"))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				_, err := s.Update(context.Background(), "001", func(p *domain.Product) error {
					return p.AddReview(domain.Review{ID: strconv.Itoa(i), Rating: 3})
				})
				if !errors.Is(err, repository.ErrVersionConflict) {
					assert.NoError(t, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	got, _ := s.Get(context.Background(), "001")
	assert.Equal(t, writers, got.TotalReviews)
	assert.Len(t, got.Reviews, writers)
}

func TestStore_Categories(t *testing.T) {
	s := New()
	empty, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := []string{"beauty", "laptops"}
	require.NoError(t, s.SaveCategories(context.Background(), in))
	in[0] = "changed"

	got, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "laptops"}, got)
	assert.NoError(t, s.Ping(context.Background()))
}
