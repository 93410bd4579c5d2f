package domain

import (
	"fmt"
	"time"
)

// AnonymousReviewer is shown when a reviewer gives no display name.
const AnonymousReviewer = "Anonymous"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single product review embedded in its Product document.
type Review struct {
	ID               string    `json:"id"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	ReviewerIdentity string    `json:"reviewerIdentity"`
	ReviewerName     string    `json:"reviewerName"`
	Date             time.Time `json:"date"`
}

// NewReviewID builds the review id from the reviewer identity and the
// creation time in milliseconds.
func NewReviewID(identity string, at time.Time) string {
	return fmt.Sprintf("%s-%d", identity, at.UnixMilli())
}

// OwnedBy reports whether identity wrote the review.
func (r Review) OwnedBy(identity string) bool {
	return identity != "" && r.ReviewerIdentity == identity
}
