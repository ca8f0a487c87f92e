package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/portfolio-tracker/internal/config"
	"github.com/rickgao/portfolio-tracker/internal/database"
	"github.com/rickgao/portfolio-tracker/internal/history"
	"github.com/rickgao/portfolio-tracker/internal/quote"
	"github.com/rickgao/portfolio-tracker/internal/refresher"
	"github.com/rickgao/portfolio-tracker/internal/server"
	"github.com/rickgao/portfolio-tracker/internal/store"
	"github.com/rickgao/portfolio-tracker/internal/stream"
	"github.com/rickgao/portfolio-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tracker.local.yaml", "path to config file")
	noRefresh := flag.Bool("no-refresh", false, "serve the API without running the quote refresher")
	flag.Parse()

	// API JSON renders prices as numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	// Set up structured logging
	logger, err := cfg.Log.NewLogger(os.Stdout)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	st := store.New(pool, logger)

	// Live stock updates
	hub := stream.NewHub(stream.Config{
		BufferSize:    cfg.Stream.BufferSize,
		PingInterval:  cfg.Stream.PingInterval,
		WriteTimeout:  cfg.Stream.WriteTimeout,
		AllowedOrigin: cfg.Server.CORSOrigin,
	}, logger)

	// Quote refresher
	var reports server.ReportSource
	if !*noRefresh {
		quotes := quote.NewClient(
			cfg.Quote.BaseURL,
			quote.WithLogger(logger),
			quote.WithTimeout(cfg.Quote.Timeout),
			quote.WithUserAgent(cfg.Quote.UserAgent),
			quote.WithRetries(cfg.Quote.MaxRetries, time.Second),
		)
		merger := history.NewMerger(cfg.Refresher.WindowDays, quotes, logger)

		ref := refresher.New(refresher.Config{
			Interval:      cfg.Refresher.Interval,
			SymbolTimeout: cfg.Refresher.SymbolTimeout,
			Symbols:       cfg.Refresher.Symbols,
		}, quotes, merger, st, logger, refresher.WithPublisher(hub))

		if err := ref.Start(ctx); err != nil {
			logger.Error("failed to start refresher", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer stopCancel()
			if err := ref.Stop(stopCtx); err != nil {
				logger.Warn("refresher stop timed out", "error", err)
			}
		}()
		reports = ref
	}

	// HTTP API
	api := server.New(server.Config{
		CORSOrigin:    cfg.Server.CORSOrigin,
		MarketIndices: cfg.Refresher.MarketIndices,
	}, st, reports, logger, server.WithStream(hub))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("tracker running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
		"symbols", len(cfg.Refresher.Symbols),
		"refresh", !*noRefresh,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Graceful shutdown of http server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}

	logger.Info("tracker stopped")
}
