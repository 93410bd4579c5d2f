// Package app wires the catalog service together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MohauMushi/FluxStore-App/internal/config"
	"github.com/MohauMushi/FluxStore-App/internal/event"
	handler "github.com/MohauMushi/FluxStore-App/internal/handler/http"
	"github.com/MohauMushi/FluxStore-App/internal/identity"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/internal/search"
	"github.com/MohauMushi/FluxStore-App/internal/service"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
	"github.com/MohauMushi/FluxStore-App/pkg/health"
	"github.com/MohauMushi/FluxStore-App/pkg/httpclient"
	pkgkafka "github.com/MohauMushi/FluxStore-App/pkg/kafka"
	"github.com/MohauMushi/FluxStore-App/pkg/middleware"
	"github.com/MohauMushi/FluxStore-App/pkg/tracing"
)

// ServiceName labels logs, traces and metrics.
const ServiceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backend        *Backend
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Tracing is installed first so store spans have a provider.
	tracerCfg := tracing.DefaultConfig(ServiceName)
	tracerCfg.Environment = cfg.Environment
	tracerCfg.Enabled = cfg.OTELEnabled
	tracerCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracerCfg.SampleRate = cfg.OTELSampleRate
	shutdown, err := tracing.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	store, err := a.openStore(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	events := a.openEvents(healthHandler)

	verifier, err := a.newVerifier()
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Build the dependency graph.
	reviewCfg := service.DefaultReviewConfig()
	reviewCfg.MaxAttempts = cfg.ReviewMaxRetries
	reviewCfg.StoreTimeout = cfg.StoreTimeout

	catalogService := service.NewCatalogService(store, search.NewMatcher(cfg.SearchThreshold), cfg.StoreTimeout, logger)
	reviewService := service.NewReviewService(store, events, reviewCfg, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(catalogService, reviewService, verifier, healthHandler, handler.RouterConfig{
		ServiceName:         ServiceName,
		ListingMaxLimit:     cfg.ListingMaxLimit,
		ListingCacheSeconds: cfg.ListingCacheSecs,
		CORS:                corsCfg,
		PprofAllowedCIDRs:   cfg.PprofAllowedCIDRs,
		ReviewRateLimitRPS:  cfg.ReviewRateLimitRPS,
		ReviewRateBurst:     cfg.ReviewRateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openStore connects the configured backend and registers its readiness
// check. The store is the only critical dependency.
func (a *App) openStore(ctx context.Context, h *health.Handler) (repository.CatalogStore, error) {
	backend, err := OpenBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.backend = backend

	if pool := backend.Pool(); pool != nil {
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
	}

	h.RegisterCritical("store", backend.Store.Ping)
	return backend.Store, nil
}

// openEvents returns the review event publisher. Kafka is optional; when it
// is disabled events are dropped.
func (a *App) openEvents(h *health.Handler) service.EventPublisher {
	if !a.cfg.KafkaEnabled {
		a.logger.Info("kafka disabled, review events will not be published")
		return event.Discard{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.producer = producer
	h.RegisterNonCritical("kafka", producer.Ping)
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	return event.NewProducer(producer, a.logger)
}

func (a *App) newVerifier() (middleware.IdentityVerifier, error) {
	switch a.cfg.IdentityMode {
	case config.IdentityJWT:
		return identity.NewJWTVerifier(a.cfg.JWTSecret, a.cfg.JWTIssuer), nil
	case config.IdentityRemote:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("identity"),
			a.logger,
		)
		return identity.NewRemoteVerifier(a.cfg.IdentityURL, client, a.logger), nil
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", a.cfg.IdentityMode)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store_backend", a.cfg.StoreBackend),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}
	if a.backend != nil {
		a.backend.Close(a.logger)
		a.backend = nil
	}
}
