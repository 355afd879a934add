package sheets

import (
	"context"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
)

// BalanceMirror pushes the derived balance sheet to an external spreadsheet
// so committee members without access to the service can still read it.
type BalanceMirror interface {
	// MirrorBalance replaces the mirrored sheet contents with rows.
	MirrorBalance(ctx context.Context, rows []core.BalanceRow) error
}
