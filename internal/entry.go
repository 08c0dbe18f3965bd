// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/helmick/nutriseek/internal/api"
	"github.com/helmick/nutriseek/internal/dataset"
	"github.com/helmick/nutriseek/internal/fuzzy"
	"github.com/helmick/nutriseek/internal/mcpserver"
	"github.com/helmick/nutriseek/internal/provider"
	"github.com/helmick/nutriseek/internal/search"
	"github.com/helmick/nutriseek/internal/searchcache"
	"github.com/helmick/nutriseek/internal/sse"
	"github.com/helmick/nutriseek/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("dataset_dir", cfg.Dataset.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure dataset directory exists.
	if err := os.MkdirAll(cfg.Dataset.Dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Initialize the seed file provider and run the initial ingest.
	seeds, err := dataset.NewFS(cfg.Dataset.Dir)
	if err != nil {
		return fmt.Errorf("init dataset: %w", err)
	}
	if err := dataset.Sync(db, seeds, logger); err != nil {
		logger.Warn("initial dataset sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build the search pipeline.
	searcher := search.New(
		cfg.Search.ServiceConfig(cfg.Providers.Timeout()),
		db,
		fuzzy.New(cfg.Search.FuzzyThreshold),
		searchcache.New(time.Duration(cfg.Search.CacheTTLMinutes)*time.Minute),
		buildAdapters(cfg),
		logger,
	)
	defer searcher.Close()

	// Build API router.
	apiRouter := api.NewRouter(
		api.NewHandler(db, searcher, broker),
		cfg.Auth.AuthEnabled(), cfg.Auth.Token,
		http.HandlerFunc(broker.ServeHTTP),
	)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start seed file watcher with SSE callback.
	g.Go(func() error {
		err := dataset.Watch(gCtx, db, seeds, cfg.Dataset.Dir, logger, func() {
			files, _ := db.AllFileChecksums()
			records, _ := db.Count()
			broker.PublishDatasetSynced(len(files), records)
		})
		if err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server against the configured store. The
// stdout channel carries JSON-RPC, so logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Best-effort seed ingest so the MCP process sees the same catalog.
	if seeds, err := dataset.NewFS(cfg.Dataset.Dir); err == nil {
		if err := dataset.Sync(db, seeds, logger); err != nil {
			logger.Warn("dataset sync failed", slog.String("error", err.Error()))
		}
	}

	searcher := search.New(
		cfg.Search.ServiceConfig(cfg.Providers.Timeout()),
		db,
		fuzzy.New(cfg.Search.FuzzyThreshold),
		searchcache.New(time.Duration(cfg.Search.CacheTTLMinutes)*time.Minute),
		buildAdapters(cfg),
		logger,
	)
	defer searcher.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(db, searcher).ServeStdio()
}

// buildAdapters assembles the enabled external provider adapters.
func buildAdapters(cfg *Config) []provider.Adapter {
	var adapters []provider.Adapter
	if cfg.Providers.OpenFoodFacts.Enabled {
		adapters = append(adapters, provider.NewOpenFoodFacts(cfg.Providers.OpenFoodFacts.BaseURL))
	}
	if cfg.Providers.FDC.Enabled {
		adapters = append(adapters, provider.NewFoodDataCentral(cfg.Providers.FDC.BaseURL, cfg.Providers.FDC.APIKey))
	}
	return adapters
}
