// Package main runs the precon analyzer REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/api"
	"github.com/ramonehamilton/precon-analyzer/internal/catalog"
	"github.com/ramonehamilton/precon-analyzer/internal/config"
	"github.com/ramonehamilton/precon-analyzer/internal/logging"
	"github.com/ramonehamilton/precon-analyzer/internal/metrics"
	"github.com/ramonehamilton/precon-analyzer/internal/pricing"
	"github.com/ramonehamilton/precon-analyzer/internal/scryfall"
	"github.com/ramonehamilton/precon-analyzer/internal/storage"
	"github.com/ramonehamilton/precon-analyzer/internal/version"
)

var (
	configPath = flag.String("config", "config.toml", "Path to the TOML config file")
	port       = flag.Int("port", 0, "API server port (overrides config)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "precon-analyzer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Durations were checked by Validate.
	requestTimeout, _ := cfg.GetRequestTimeout()
	scryfallTimeout, _ := cfg.GetScryfallTimeout()
	valuationSpacing, _ := cfg.GetValuationSpacing()
	detailSpacing, _ := cfg.GetDetailSpacing()

	dbConfig := storage.DefaultConfig(cfg.Storage.Path)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewService(db)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing storage", "error", err)
		}
	}()
	logger.Info("Database ready", "path", cfg.Storage.Path)

	catalogHandle := catalog.NewHandle(catalog.FileLoader(cfg.Catalog.Path), logger)

	m := metrics.NewPricingMetrics()
	resolver := pricing.NewResolver(pricing.ResolverConfig{
		Fetcher: scryfall.NewClient(scryfall.Config{
			BaseURL:   cfg.Scryfall.BaseURL,
			UserAgent: cfg.Scryfall.UserAgent,
			Timeout:   scryfallTimeout,
		}),
		Pacer:   pricing.NewPacer(pricing.DefaultSlot),
		Metrics: m,
		Logger:  logger,
	})
	valuator := pricing.NewValuator(resolver, logger)

	aggregator := analysis.NewAggregator(analysis.Config{
		Valuator: valuator,
		Catalog:  catalogHandle,
		Spacing:  valuationSpacing,
		Metrics:  m,
		Logger:   logger,
	})
	aggregator.Subscribe(storage.NewJobRecorder(store, logger))

	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: requestTimeout,
		DetailSpacing:  detailSpacing,
		Logger:         logger,
	}, api.Dependencies{
		Aggregator: aggregator,
		Catalog:    catalogHandle,
		Valuator:   valuator,
		Storage:    store,
		Metrics:    m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	if cfg.Catalog.Watch {
		watcher := catalog.NewWatcher(catalogHandle, catalog.WatcherConfig{
			Path:   cfg.Catalog.Path,
			Logger: logger,
		})
		g.Go(func() error {
			return watchCatalog(ctx, watcher, logger)
		})
	}

	logger.Info("Precon analyzer running", "version", version.Get(), "port", cfg.Server.Port, "catalog", cfg.Catalog.Path)
	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := aggregator.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("Valuation jobs did not stop in time", "error", shutdownErr)
	}

	logger.Info("Precon analyzer stopped")
	return err
}

type runner interface {
	Run(ctx context.Context) error
}

// watchCatalog runs the dataset watcher. Reloading is optional, so a watcher
// that cannot start is logged and the server keeps serving the loaded catalog.
func watchCatalog(ctx context.Context, w runner, logger *slog.Logger) error {
	if err := w.Run(ctx); err != nil {
		logger.Warn("Catalog watcher stopped, dataset changes will not be reloaded", "error", err)
	}
	return nil
}
