// The api binary serves the read-only admin API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marks-content-agent/internal/config"
	"marks-content-agent/internal/db"
	"marks-content-agent/internal/review"
	"marks-content-agent/internal/server"
	"marks-content-agent/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// The API process has no live sessions of its own; the registry is
	// empty here and /api/sessions reports the agent's state only when
	// they share a process. Kept for the combined deployment.
	registry := review.NewRegistry(cfg.SessionMaxAge)

	srv := server.NewServer(cfg.AllowedOrigin, database,
		store.NewAccountStore(database),
		store.NewContentStore(database),
		store.NewFeedbackStore(database),
		registry)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
	logger.Info("api stopped")
}
