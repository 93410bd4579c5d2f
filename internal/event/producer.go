package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	pkgkafka "github.com/MohauMushi/FluxStore-App/pkg/kafka"
	"github.com/MohauMushi/FluxStore-App/pkg/logger"
)

// Review event types.
const (
	ReviewCreated = "created"
	ReviewUpdated = "updated"
	ReviewDeleted = "deleted"
)

// AggregateTypeProduct labels events whose aggregate is a product document.
const AggregateTypeProduct = "product"

// SourceCatalogService identifies this service as the event source.
const SourceCatalogService = "catalog-service"

// TopicFor returns the topic for a review event type, e.g.
// "catalog.review.created".
func TopicFor(eventType string) string {
	return pkgkafka.Topic("catalog", "review", eventType)
}

// ReviewEventData is the payload of every review event. It carries the
// aggregate as it stood after the mutation committed.
type ReviewEventData struct {
	ProductID        string          `json:"productId"`
	ReviewID         string          `json:"reviewId"`
	Rating           int             `json:"rating,omitempty"`
	ReviewerIdentity string          `json:"reviewerIdentity"`
	AverageRating    decimal.Decimal `json:"averageRating"`
	TotalReviews     int             `json:"totalReviews"`
}

// Publisher sends an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a review event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishReviewEvent publishes eventType for review on product. product must
// be the committed document.
func (p *Producer) PublishReviewEvent(ctx context.Context, eventType string, product *domain.Product, review domain.Review) error {
	data := ReviewEventData{
		ProductID:        product.ID,
		ReviewID:         review.ID,
		Rating:           review.Rating,
		ReviewerIdentity: review.ReviewerIdentity,
		AverageRating:    product.AverageRating,
		TotalReviews:     product.TotalReviews,
	}

	evt, err := pkgkafka.NewEvent("review."+eventType, product.ID, AggregateTypeProduct, SourceCatalogService, product.Version, data)
	if err != nil {
		return fmt.Errorf("create review.%s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, TopicFor(eventType), evt); err != nil {
		return fmt.Errorf("publish review.%s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "review event published",
		slog.String("event_type", evt.EventType),
		slog.String("product_id", product.ID),
		slog.String("review_id", review.ID),
	)
	return nil
}

// Discard drops every event. It stands in when Kafka is disabled.
type Discard struct{}

// PublishReviewEvent does nothing.
func (Discard) PublishReviewEvent(context.Context, string, *domain.Product, domain.Review) error {
	return nil
}
