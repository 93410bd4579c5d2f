// Command seed loads a catalog data file into the configured store.
// Products already in the store are skipped; the category list is replaced.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/MohauMushi/FluxStore-App/internal/app"
	"github.com/MohauMushi/FluxStore-App/internal/config"
	"github.com/MohauMushi/FluxStore-App/internal/seed"
	"github.com/MohauMushi/FluxStore-App/pkg/logger"
)

func main() {
	file := flag.String("file", "data/catalog.json", "path to the catalog data file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall seeding deadline")
	flag.Parse()
	app.UseNumericDecimals()

	cfg, err := config.LoadStore()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("catalog-seed", cfg.LogLevel)

	if err := run(cfg, *file, *timeout, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, path string, timeout time.Duration, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := seed.Decode(f)
	if err != nil {
		return err
	}

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close(log)

	log.Info("seeding catalog",
		slog.String("file", path),
		slog.String("store_backend", cfg.StoreBackend),
		slog.Int("products", len(data.Products)),
	)
	_, err = seed.New(backend.Store, log).Run(ctx, data)
	return err
}
