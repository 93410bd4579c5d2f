package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MohauMushi/FluxStore-App/internal/service"
	"github.com/MohauMushi/FluxStore-App/pkg/health"
	"github.com/MohauMushi/FluxStore-App/pkg/middleware"
)

// RouterConfig carries the HTTP-level settings of the catalog API.
type RouterConfig struct {
	ServiceName     string
	ListingMaxLimit int
	// ListingCacheSeconds is the max-age of public catalog reads.
	ListingCacheSeconds int
	CORS                middleware.CORSConfig
	RequestTimeout      time.Duration
	// PprofAllowedCIDRs gates /debug/pprof; empty disables it.
	PprofAllowedCIDRs []string
	// ReviewRateLimitRPS caps review mutations per caller; 0 disables.
	ReviewRateLimitRPS int
	ReviewRateBurst    int
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	reviewService *service.ReviewService,
	verifier middleware.IdentityVerifier,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints (IP-restricted)
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	productHandler := NewProductHandler(catalogService, cfg.ListingMaxLimit, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	categoryHandler := NewCategoryHandler(catalogService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.With(middleware.CacheControl(cfg.ListingCacheSeconds)).Get("/", productHandler.ListProducts)
		r.With(middleware.CacheControl(cfg.ListingCacheSeconds)).Get("/{id}", productHandler.GetProduct)

		r.Route("/{id}/reviews", func(r chi.Router) {
			r.Use(middleware.CacheControl(0))

			r.Get("/", reviewHandler.ListReviews)

			// Review mutations require a verified identity.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(verifier, logger))
				r.Use(middleware.RateLimit(cfg.ReviewRateLimitRPS, cfg.ReviewRateBurst, logger))

				r.Post("/", reviewHandler.AddReview)
				r.Put("/", reviewHandler.EditReview)
				r.Delete("/", reviewHandler.DeleteReview)
			})
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.CacheControl(cfg.ListingCacheSeconds))

		r.Get("/", categoryHandler.ListCategories)
	})

	return r
}
