// Package memory holds an in-process balance mirror for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
	ports "github.com/MoltenSteelStudio/DartsManager/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []core.BalanceRow
}

var _ ports.BalanceMirror = (*Mirror)(nil)

func New() *Mirror { return &Mirror{} }

func (m *Mirror) MirrorBalance(_ context.Context, rows []core.BalanceRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]core.BalanceRow(nil), rows...)
	return nil
}

// Rows returns the last mirrored balance sheet.
func (m *Mirror) Rows() []core.BalanceRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.BalanceRow(nil), m.rows...)
}
