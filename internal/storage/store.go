// Package storage persists ledger snapshots.
package storage

import (
	"context"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
)

// Store persists and restores the whole ledger. Persistence is snapshot
// oriented on purpose: every mutation recomputes the balance from the raw
// tables, so saving is always "replace everything, last write wins". That
// keeps the durable state incapable of drifting from the in-memory ledger
// and makes startup a single Load.
type Store interface {
	// Load restores the most recently saved snapshot. A fresh store
	// returns an empty snapshot, not an error.
	Load(ctx context.Context) (core.Snapshot, error)

	// Save replaces the stored snapshot atomically.
	Save(ctx context.Context, snap core.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}
