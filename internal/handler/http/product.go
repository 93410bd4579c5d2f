package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MohauMushi/FluxStore-App/internal/domain"
	"github.com/MohauMushi/FluxStore-App/internal/service"
	"github.com/MohauMushi/FluxStore-App/pkg/httputil"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service  *service.CatalogService
	maxLimit int
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler. maxLimit clamps the
// listing page size.
func NewProductHandler(svc *service.CatalogService, maxLimit int, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  svc,
		maxLimit: maxLimit,
		logger:   logger,
	}
}

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description Filters by category, fuzzy-searches titles, sorts and paginates
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (clamped)" default(20)
// @Param sortBy query string false "Sort key" Enums(id,price)
// @Param order query string false "Sort direction" Enums(asc,desc)
// @Param category query string false "Exact category"
// @Param search query string false "Fuzzy title search"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseListingQuery(r.URL.Query(), h.maxLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Numeric product id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}
