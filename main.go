package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-ledger/config"
	"account-ledger/handler"
	"account-ledger/ledger"
	"account-ledger/logger"
	"account-ledger/storage"

	"github.com/rs/zerolog"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", config.FormatConsole)
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to initialize storage")
	}
	defer closeStore()

	// A corrupt ledger is fatal: starting empty would overwrite it on the first save.
	engine, err := ledger.New(ctx, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	log.Info().Int("accounts", engine.Count()).Msg("Ledger loaded")

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler.NewRouter(engine, log),
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ListenAndServe error")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	// Create a context for shutdown with a timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("Server gracefully stopped")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.Store, func(), error) {
	switch cfg.Store {
	case config.BackendPostgres:
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("Database connection established and schema initialized.")
		return pg, pg.Close, nil
	default:
		fs := storage.NewFileStore(cfg.File)
		log.Info().Str("path", fs.Path()).Msg("Using file store")
		return fs, func() {}, nil
	}
}
