package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/event"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	apperrors "github.com/MohauMushi/FluxStore-App/pkg/errors"
)

// EventPublisher publishes a review event after a committed mutation.
// *event.Producer and event.Discard satisfy it.
type EventPublisher interface {
	PublishReviewEvent(ctx context.Context, eventType string, product *domain.Product, review domain.Review) error
}

// ReviewConfig tunes the review mutation retry loop.
type ReviewConfig struct {
	// MaxAttempts bounds how many times a conflicting update is tried.
	MaxAttempts int
	// StoreTimeout bounds each store call.
	StoreTimeout time.Duration
	// RetryBaseDelay is the first backoff; it doubles per attempt up to
	// RetryMaxDelay, with jitter.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultReviewConfig returns the production retry settings.
func DefaultReviewConfig() ReviewConfig {
	return ReviewConfig{
		MaxAttempts:    5,
		StoreTimeout:   DefaultStoreTimeout,
		RetryBaseDelay: 10 * time.Millisecond,
		RetryMaxDelay:  200 * time.Millisecond,
	}
}

// AddReviewInput holds the parameters for adding a review.
type AddReviewInput struct {
	ProductID   string
	Identity    string
	Rating      int
	Comment     string
	DisplayName string
}

// EditReviewInput holds the parameters for editing a review.
type EditReviewInput struct {
	ProductID string
	Identity  string
	ReviewID  string
	Rating    int
	Comment   string
}

// ReviewService maintains the reviews embedded in product documents and
// keeps their aggregates consistent under concurrent writers.
type ReviewService struct {
	store  repository.CatalogStore
	events EventPublisher
	cfg    ReviewConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewService creates a review service. Zero config fields take the
// values of DefaultReviewConfig.
func NewReviewService(store repository.CatalogStore, events EventPublisher, cfg ReviewConfig, logger *slog.Logger) *ReviewService {
	def := DefaultReviewConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = def.RetryBaseDelay
	}
	if cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		cfg.RetryMaxDelay = cfg.RetryBaseDelay
	}
	if events == nil {
		events = event.Discard{}
	}
	return &ReviewService{
		store:  store,
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListReviews returns the product with its reviews and aggregates.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) (*domain.Product, error) {
	key, err := domain.PadProductID(productID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	p, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, apperrors.FromStore(err, "get product reviews")
	}
	return p, nil
}

// AddReview appends a review by identity to the product and returns it.
func (s *ReviewService) AddReview(ctx context.Context, input *AddReviewInput) (*domain.Review, error) {
	if input.Identity == "" {
		return nil, apperrors.Unauthenticated("a verified identity is required to review")
	}
	key, err := domain.PadProductID(input.ProductID)
	if err != nil {
		return nil, err
	}
	comment, err := validateReview(input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		name = domain.AnonymousReviewer
	}
	createdAt := s.now()

	var stored domain.Review
	product, err := s.mutate(ctx, key, "add", func(p *domain.Product) error {
		// Two reviews by one identity in the same millisecond would share an
		// id; step the id forward until it is free.
		at := createdAt
		id := domain.NewReviewID(input.Identity, at)
		for p.FindReview(id) >= 0 {
			at = at.Add(time.Millisecond)
			id = domain.NewReviewID(input.Identity, at)
		}

		stored = domain.Review{
			ID:               id,
			Rating:           input.Rating,
			Comment:          comment,
			ReviewerIdentity: input.Identity,
			ReviewerName:     name,
			Date:             createdAt,
		}
		return p.AddReview(stored)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review added",
		slog.String("product_id", key),
		slog.String("review_id", stored.ID),
		slog.Int("rating", stored.Rating),
		slog.String("average_rating", product.AverageRating.String()),
		slog.Int("total_reviews", product.TotalReviews),
	)
	s.publish(ctx, event.ReviewCreated, product, stored)
	return &stored, nil
}

// EditReview changes the rating and comment of a review owned by identity
// and refreshes its date.
func (s *ReviewService) EditReview(ctx context.Context, input *EditReviewInput) (*domain.Review, error) {
	if input.Identity == "" {
		return nil, apperrors.Unauthenticated("a verified identity is required to edit a review")
	}
	key, err := domain.PadProductID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ReviewID) == "" {
		return nil, apperrors.InvalidInput("reviewId is required")
	}
	comment, err := validateReview(input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}

	var edited domain.Review
	product, err := s.mutate(ctx, key, "edit", func(p *domain.Product) error {
		i, err := ownedReview(p, input.ReviewID, input.Identity, "edit")
		if err != nil {
			return err
		}
		edited = p.Reviews[i]
		edited.Rating = input.Rating
		edited.Comment = comment
		edited.Date = s.now()
		p.ReplaceReview(i, edited)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "review edited",
		slog.String("product_id", key),
		slog.String("review_id", edited.ID),
		slog.Int("rating", edited.Rating),
		slog.String("average_rating", product.AverageRating.String()),
	)
	s.publish(ctx, event.ReviewUpdated, product, edited)
	return &edited, nil
}

// DeleteReview removes a review owned by identity.
func (s *ReviewService) DeleteReview(ctx context.Context, productID, identity, reviewID string) error {
	if identity == "" {
		return apperrors.Unauthenticated("a verified identity is required to delete a review")
	}
	key, err := domain.PadProductID(productID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(reviewID) == "" {
		return apperrors.InvalidInput("reviewId is required")
	}

	var removed domain.Review
	product, err := s.mutate(ctx, key, "delete", func(p *domain.Product) error {
		i, err := ownedReview(p, reviewID, identity, "delete")
		if err != nil {
			return err
		}
		removed = p.Reviews[i]
		p.RemoveReview(i)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("product_id", key),
		slog.String("review_id", removed.ID),
		slog.String("average_rating", product.AverageRating.String()),
		slog.Int("total_reviews", product.TotalReviews),
	)
	s.publish(ctx, event.ReviewDeleted, product, removed)
	return nil
}

// mutate runs fn through store.Update, retrying version conflicts with
// jittered backoff. Every attempt rereads the document, so fn must derive
// its changes from the product it is given.
func (s *ReviewService) mutate(ctx context.Context, productID, op string, fn repository.UpdateFunc) (*domain.Product, error) {
	for attempt := 1; ; attempt++ {
		product, err := s.update(ctx, productID, fn)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.FromStore(err, op+" review")
		}

		if attempt >= s.cfg.MaxAttempts {
			reviewConflicts.WithLabelValues(op, "exhausted").Inc()
			s.logger.WarnContext(ctx, "review update conflict retries exhausted",
				slog.String("product_id", productID),
				slog.String("operation", op),
				slog.Int("attempts", attempt),
			)
			return nil, apperrors.Conflict(fmt.Sprintf("product %s is being modified concurrently, please retry", productID))
		}

		reviewConflicts.WithLabelValues(op, "retried").Inc()
		wait := s.backoff(attempt)
		s.logger.WarnContext(ctx, "review update conflict, retrying",
			slog.String("product_id", productID),
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", wait),
		)

		select {
		case <-ctx.Done():
			return nil, apperrors.FromStore(ctx.Err(), op+" review")
		case <-time.After(wait):
		}
	}
}

func (s *ReviewService) update(ctx context.Context, productID string, fn repository.UpdateFunc) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.store.Update(ctx, productID, fn)
}

// backoff returns the wait after the given failed attempt (1-based).
func (s *ReviewService) backoff(attempt int) time.Duration {
	wait := s.cfg.RetryBaseDelay << (attempt - 1)
	if wait <= 0 || wait > s.cfg.RetryMaxDelay {
		wait = s.cfg.RetryMaxDelay
	}
	// Jitter within [wait/2, wait].
	return wait/2 + time.Duration(rand.Int64N(int64(wait/2)+1)) // #nosec G404 -- jitter only
}

func (s *ReviewService) publish(ctx context.Context, eventType string, product *domain.Product, review domain.Review) {
	if err := s.events.PublishReviewEvent(ctx, eventType, product, review); err != nil {
		reviewEventFailures.WithLabelValues(eventType).Inc()
		s.logger.ErrorContext(ctx, "failed to publish review event",
			slog.String("event_type", eventType),
			slog.String("product_id", product.ID),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validateReview(rating int, comment string) (string, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return "", apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", apperrors.InvalidInput("comment is required")
	}
	return comment, nil
}

// ownedReview finds reviewID on p and checks identity wrote it.
func ownedReview(p *domain.Product, reviewID, identity, action string) (int, error) {
	i := p.FindReview(reviewID)
	if i < 0 {
		return -1, apperrors.NotFound("review", reviewID)
	}
	if !p.Reviews[i].OwnedBy(identity) {
		return -1, apperrors.Forbidden(fmt.Sprintf("you can only %s your own reviews", action))
	}
	return i, nil
}
