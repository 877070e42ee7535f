package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"medrag/internal/activities"
	"medrag/internal/config"
	"medrag/internal/logging"
	"medrag/internal/storage"
	"medrag/internal/telemetry"
	"medrag/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
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
	defer func() { _ = tel.Shutdown(context.Background()) }()
	logging.Setup(cfg)

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress, Logger: slog.Default()})
	if err != nil {
		slog.ErrorContext(ctx, "failed to dial temporal", "address", cfg.TemporalAddress, "error", err)
		os.Exit(1)
	}
	defer c.Close()

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(dbCtx); err != nil {
		slog.ErrorContext(ctx, "failed to apply schema", "error", err)
		os.Exit(1)
	}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(cfg, storage.NewDocumentRepo(db), storage.NewChunkRepo(db)))

	slog.InfoContext(ctx, "medrag worker listening", "address", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		slog.ErrorContext(ctx, "worker stopped", "error", err)
		os.Exit(1)
	}
}
