package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/service"
	"github.com/MohauMushi/FluxStore-App/pkg/httputil"
	"github.com/MohauMushi/FluxStore-App/pkg/middleware"
	"github.com/MohauMushi/FluxStore-App/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddReviewRequest is the JSON request body for adding a review.
type AddReviewRequest struct {
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"notblank,max=2000"`
	ReviewerName string `json:"reviewerName" validate:"max=100"`
}

// EditReviewRequest is the JSON request body for editing a review.
type EditReviewRequest struct {
	ReviewID string `json:"reviewId" validate:"notblank"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"notblank,max=2000"`
}

// DeleteReviewRequest is the JSON request body for deleting a review.
type DeleteReviewRequest struct {
	ReviewID string `json:"reviewId" validate:"notblank"`
}

// ReviewsResponse is the body of the review listing.
type ReviewsResponse struct {
	ProductID     string          `json:"productId"`
	Reviews       []domain.Review `json:"reviews"`
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
}

// --- Handlers ---

// ListReviews handles GET /api/v1/products/{id}/reviews
// @Summary List product reviews
// @Tags reviews
// @Produce json
// @Param id path string true "Numeric product id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	reviews := product.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}
	httputil.WriteData(w, http.StatusOK, ReviewsResponse{
		ProductID:     product.ID,
		Reviews:       reviews,
		AverageRating: product.AverageRating,
		TotalReviews:  product.TotalReviews,
	})
}

// AddReview handles POST /api/v1/products/{id}/reviews
// @Summary Add a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Numeric product id"
// @Param request body AddReviewRequest true "Review to add"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/products/{id}/reviews [post]
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.AddReview(r.Context(), &service.AddReviewInput{
		ProductID:   chi.URLParam(r, "id"),
		Identity:    middleware.IdentityFromContext(r.Context()),
		Rating:      req.Rating,
		Comment:     req.Comment,
		DisplayName: req.ReviewerName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, review)
}

// EditReview handles PUT /api/v1/products/{id}/reviews
// @Summary Edit your review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Numeric product id"
// @Param request body EditReviewRequest true "New rating and comment"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/products/{id}/reviews [put]
func (h *ReviewHandler) EditReview(w http.ResponseWriter, r *http.Request) {
	var req EditReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.EditReview(r.Context(), &service.EditReviewInput{
		ProductID: chi.URLParam(r, "id"),
		Identity:  middleware.IdentityFromContext(r.Context()),
		ReviewID:  req.ReviewID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/v1/products/{id}/reviews
// @Summary Delete your review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Numeric product id"
// @Param request body DeleteReviewRequest true "Review to delete"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id}/reviews [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	var req DeleteReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "id"), identity, req.ReviewID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{
		"message":  "Review deleted successfully",
		"reviewId": req.ReviewID,
	})
}
