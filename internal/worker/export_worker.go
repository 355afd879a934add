// Package worker keeps the on-disk CSV exports and the optional spreadsheet
// mirror in step with the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MoltenSteelStudio/DartsManager/internal/amqp"
	"github.com/MoltenSteelStudio/DartsManager/internal/export"
	"github.com/MoltenSteelStudio/DartsManager/internal/metrics"
	"github.com/MoltenSteelStudio/DartsManager/internal/sheets"
	"github.com/MoltenSteelStudio/DartsManager/internal/storage"
)

// ExportWorker reloads the ledger snapshot and re-renders the exports.
// Notifications only tell it that something changed; the store stays the
// single source of truth.
type ExportWorker struct {
	store     storage.Store
	exportDir string
	mirror    sheets.BalanceMirror // may be nil
}

func NewExportWorker(store storage.Store, exportDir string, mirror sheets.BalanceMirror) *ExportWorker {
	return &ExportWorker{store: store, exportDir: exportDir, mirror: mirror}
}

// HandleLedgerUpdated is the AMQP consumer callback.
func (w *ExportWorker) HandleLedgerUpdated(ctx context.Context, msg *amqp.LedgerUpdatedMessage) error {
	slog.InfoContext(ctx, "Processing ledger update",
		"revision", msg.Revision, "tables", msg.Tables)
	return w.ExportOnce(ctx)
}

// ExportOnce loads the current snapshot, writes every CSV, and pushes the
// balance mirror when one is configured.
func (w *ExportWorker) ExportOnce(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := export.WriteSnapshot(w.exportDir, snap); err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("write exports: %w", err)
	}

	if w.mirror != nil {
		if err := w.mirror.MirrorBalance(ctx, snap.Balance); err != nil {
			metrics.ExportsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("mirror balance: %w", err)
		}
	}

	metrics.ExportsTotal.WithLabelValues("success").Inc()
	return nil
}

// RunPeriodic exports on a fixed interval until ctx is cancelled. It covers
// notifications lost while the worker was down.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
