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

	"medrag/internal/api"
	"medrag/internal/app"
	"medrag/internal/config"
	"medrag/internal/logging"
	"medrag/internal/telemetry"
	"medrag/internal/workflows"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logging.Setup(cfg)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	// Ingestion is optional for the API; search works without Temporal.
	var starter api.IngestStarter
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress, Logger: slog.Default()})
	if err != nil {
		slog.WarnContext(ctx, "temporal unavailable, /ingest disabled", "address", cfg.TemporalAddress, "error", err)
	} else {
		defer tc.Close()
		starter = workflows.NewStarter(tc, cfg)
	}

	h := api.NewServer(rt.Service, rt.Documents, starter)
	server := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "medrag api listening", "addr", cfg.APIAddr, "llm_provider", rt.Provider, "cache_backend", cfg.CacheBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}
	slog.InfoContext(shutdownCtx, "shutdown complete")
}
