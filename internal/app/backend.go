package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MohauMushi/FluxStore-App/internal/config"
	"github.com/MohauMushi/FluxStore-App/internal/repository"
	"github.com/MohauMushi/FluxStore-App/internal/repository/memory"
	"github.com/MohauMushi/FluxStore-App/internal/repository/postgres"
	redisrepo "github.com/MohauMushi/FluxStore-App/internal/repository/redis"
	"github.com/MohauMushi/FluxStore-App/pkg/database"
)

// Backend is an opened catalog store together with the connection it owns.
type Backend struct {
	Store repository.CatalogStore

	pool *pgxpool.Pool
	rdb  *goredis.Client
}

// OpenBackend connects the store selected by cfg.StoreBackend. The postgres
// backend is migrated before it is returned.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.String("database", pgCfg.DBName),
		)

		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return &Backend{Store: postgres.NewStore(pool), pool: pool}, nil

	case config.BackendRedis:
		redisCfg := cfg.Redis()
		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", redisCfg.DB),
		)
		return &Backend{Store: redisrepo.NewStore(rdb), rdb: rdb}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return &Backend{Store: memory.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// Pool returns the PostgreSQL pool, or nil for other backends.
func (b *Backend) Pool() *pgxpool.Pool {
	return b.pool
}

// Close releases the backend connection.
func (b *Backend) Close(logger *slog.Logger) {
	if b.rdb != nil {
		if err := b.rdb.Close(); err != nil {
			logger.Error("redis close error", slog.String("error", err.Error()))
		}
		b.rdb = nil
	}
	if b.pool != nil {
		b.pool.Close()
		b.pool = nil
	}
}
