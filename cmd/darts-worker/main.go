package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MoltenSteelStudio/DartsManager/internal/amqp"
	"github.com/MoltenSteelStudio/DartsManager/internal/config"
	applog "github.com/MoltenSteelStudio/DartsManager/internal/log"
	"github.com/MoltenSteelStudio/DartsManager/internal/sheets"
	gsheet "github.com/MoltenSteelStudio/DartsManager/internal/sheets/google"
	"github.com/MoltenSteelStudio/DartsManager/internal/storage"
	"github.com/MoltenSteelStudio/DartsManager/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		slog.Error("Worker requires the sqlite backend to share state with the server",
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mirror sheets.BalanceMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			slog.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		slog.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		slog.Info("Google Sheets mirror disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewExportWorker(store, cfg.ExportDir, mirror)

	// Render the current state once on startup so a fresh deployment has
	// exports before the first notification arrives.
	if err := w.ExportOnce(ctx); err != nil {
		slog.Error("Startup export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			return client.ConsumeLedgerUpdates(ctx, w.HandleLedgerUpdated)
		})
		slog.Info("AMQP consumer started", "queue", cfg.AMQPQueue)
	} else {
		slog.Info("AMQP disabled, relying on periodic export only")
	}

	g.Go(func() error {
		return w.RunPeriodic(ctx, cfg.ExportInterval)
	})

	slog.Info("Export worker running",
		"export_dir", cfg.ExportDir, "interval", cfg.ExportInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped gracefully")
}
