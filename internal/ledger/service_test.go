package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
	"github.com/MoltenSteelStudio/DartsManager/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(context.Background(), storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	return svc
}

// seedMatch sets up the reference match: Alice pays Subs+Raffle, Bob pays
// Food, one 1.50 expense, raffle income 3.00.
func seedMatch(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.AddPlayer(ctx, "Alice"))
	require.NoError(t, svc.AddPlayer(ctx, "Bob"))
	require.NoError(t, svc.AddVenue(ctx, "Pub A", "01-01-2024"))
	require.NoError(t, svc.UpsertPayments(ctx, "Alice", "Pub A", "01-01-2024",
		[]core.Category{core.CategorySubs, core.CategoryRaffle}))
	require.NoError(t, svc.UpsertPayments(ctx, "Bob", "Pub A", "01-01-2024",
		[]core.Category{core.CategoryFood}))
	require.NoError(t, svc.AddExpense(ctx, "Pub A", "01-01-2024", 150, "Board fee"))
	require.NoError(t, svc.UpsertOtherIncome(ctx, core.OtherIncome{
		Venue: "Pub A", Date: "01-01-2024", RaffleIncome: 300,
	}))
}

func TestReferenceMatchBalance(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)

	balance := svc.Balance()
	require.Len(t, balance, 1)
	row := balance[0]
	require.Equal(t, core.Money(400), row.PlayerIncome)
	require.Equal(t, core.Money(300), row.OtherIncome)
	require.Equal(t, core.Money(150), row.Expenses)
	require.Equal(t, core.Money(550), row.Net)
}

func TestAddPlayerValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddPlayer(ctx, "Alice"))
	require.ErrorIs(t, svc.AddPlayer(ctx, "Alice"), core.ErrDuplicatePlayer)
	require.ErrorIs(t, svc.AddPlayer(ctx, "   "), core.ErrEmptyName)
	require.Len(t, svc.Players(), 1, "failed adds must not mutate")
}

func TestAddVenueValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddVenue(ctx, "Pub A", "01-01-2024"))
	require.ErrorIs(t, svc.AddVenue(ctx, "Pub A", "01-01-2024"), core.ErrDuplicateVenue)
	// Same venue on another date is a different match.
	require.NoError(t, svc.AddVenue(ctx, "Pub A", "08-01-2024"))
	require.ErrorIs(t, svc.AddVenue(ctx, "Pub B", "2024-01-01"), core.ErrInvalidDate)
}

func TestUpsertPaymentsReplacement(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)
	ctx := context.Background()

	// Re-submit Alice with Food only: Subs and Raffle rows go away.
	require.NoError(t, svc.UpsertPayments(ctx, "Alice", "Pub A", "01-01-2024",
		[]core.Category{core.CategoryFood}))
	got := core.PaidCategories(svc.Payments(), "Alice", "Pub A", "01-01-2024")
	require.Equal(t, []core.Category{core.CategoryFood}, got)

	// Balance reflects the change: 1.00 + 1.00 player income.
	require.Equal(t, core.Money(200), svc.Balance()[0].PlayerIncome)
}

func TestUpsertPaymentsEmptySelectionClears(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.UpsertPayments(ctx, "Alice", "Pub A", "01-01-2024", nil))

	for _, p := range svc.Payments() {
		require.NotEqual(t, "Alice", p.Player)
	}
	// Bob's row is untouched.
	require.Len(t, svc.Payments(), 1)
	require.Equal(t, core.Money(100), svc.Balance()[0].PlayerIncome)
}

func TestUpsertPaymentsUnknownPlayer(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)

	err := svc.UpsertPayments(context.Background(), "Zoe", "Pub A", "01-01-2024",
		[]core.Category{core.CategorySubs})
	require.ErrorIs(t, err, core.ErrUnknownPlayer)
}

func TestAddExpenseValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.AddExpense(ctx, "Pub A", "01-01-2024", 0, "free"), core.ErrInvalidAmount)
	require.NoError(t, svc.AddExpense(ctx, "Pub A", "01-01-2024", 500, "Trophy"))

	// A match with only an expense still shows up on the balance sheet.
	balance := svc.Balance()
	require.Len(t, balance, 1)
	require.Equal(t, core.Money(0), balance[0].PlayerIncome)
	require.Equal(t, core.Money(-500), balance[0].Net)
}

func TestUpsertOtherIncomeOverwrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpsertOtherIncome(ctx, core.OtherIncome{
		Venue: "Pub A", Date: "01-01-2024", RaffleIncome: 300, Fines: 50,
	}))
	require.NoError(t, svc.UpsertOtherIncome(ctx, core.OtherIncome{
		Venue: "Pub A", Date: "01-01-2024", RaffleIncome: 100,
	}))

	rows := svc.OtherIncome()
	require.Len(t, rows, 1, "same match upserts in place")
	require.Equal(t, core.Money(100), rows[0].RaffleIncome)
	require.Equal(t, core.Money(0), rows[0].Fines, "overwrite replaces both fields")
	require.Equal(t, core.Money(100), svc.Balance()[0].OtherIncome)
}

func TestRemovePlayerSettlement(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)

	result, err := svc.RemovePlayer(context.Background(), "Alice")
	require.NoError(t, err)
	require.Equal(t, core.Money(300), result.TotalContributed)
	require.Len(t, result.Settlement, 1)
	// Net 5.50 split over (2 players - 1).
	require.Equal(t, core.Money(550), result.Settlement[0].PerRemainingValue)

	// Cascade: player row and all their payments are gone.
	require.Equal(t, []core.Player{{Name: "Bob"}}, svc.Players())
	require.Len(t, svc.Payments(), 1)

	// Balance was recomputed without Alice's 3.00.
	row := svc.Balance()[0]
	require.Equal(t, core.Money(100), row.PlayerIncome)
	require.Equal(t, core.Money(250), row.Net)
}

func TestRemoveUnknownPlayer(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.RemovePlayer(context.Background(), "Nobody")
	require.ErrorIs(t, err, core.ErrUnknownPlayer)
}

func TestSettlementPreviewDoesNotMutate(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)

	result, err := svc.SettlementPreview("Alice")
	require.NoError(t, err)
	require.Equal(t, core.Money(550), result.Settlement[0].PerRemainingValue)

	require.Len(t, svc.Players(), 2)
	require.Len(t, svc.Payments(), 3)
}

func TestClearTable(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.ClearTable(ctx, TablePayments))
	require.Empty(t, svc.Payments())
	// Raw mutation recomputes the balance; other income and the expense remain.
	row := svc.Balance()[0]
	require.Equal(t, core.Money(0), row.PlayerIncome)
	require.Equal(t, core.Money(150), row.Net)

	require.NoError(t, svc.ClearTable(ctx, TableBalance))
	require.Empty(t, svc.Balance())

	require.ErrorIs(t, svc.ClearTable(ctx, "bogus"), core.ErrUnknownTable)
}

func TestClearAll(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)

	require.NoError(t, svc.ClearAll(context.Background()))
	snap := svc.Snapshot()
	require.Empty(t, snap.Players)
	require.Empty(t, snap.Venues)
	require.Empty(t, snap.Payments)
	require.Empty(t, snap.Expenses)
	require.Empty(t, snap.OtherIncome)
	require.Empty(t, snap.Balance)
}

func TestMatricesStayRectangular(t *testing.T) {
	svc := newTestService(t)
	seedMatch(t, svc)
	ctx := context.Background()
	require.NoError(t, svc.AddPlayer(ctx, "Carol"))
	require.NoError(t, svc.AddVenue(ctx, "Pub B", "08-01-2024"))

	m := svc.ContributionMatrix()
	require.Len(t, m.Players, 3)
	require.Len(t, m.Matches, 2)
	require.Equal(t, core.Money(300), m.Totals["Alice"])
	require.Equal(t, core.Money(0), m.Totals["Carol"])

	n := svc.NetMatrix()
	require.Len(t, n.Players, 3)
	require.Len(t, n.Matches, 2)
	// (4.00 - 1.50) / 2 participants, broadcast to everyone.
	require.Equal(t, core.Money(125), n.Cells["Carol"][0])
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	svc, err := New(ctx, store, nil)
	require.NoError(t, err)
	seedMatch(t, svc)

	// A second service over the same store sees the same ledger.
	svc2, err := New(ctx, store, nil)
	require.NoError(t, err)
	require.Equal(t, svc.Snapshot(), svc2.Snapshot())
}

type failingStore struct {
	storage.Store
	fail bool
}

func (f *failingStore) Save(ctx context.Context, snap core.Snapshot) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, snap)
}

func TestPersistFailureKeepsStateConsistent(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: storage.NewMemoryStore()}

	svc, err := New(ctx, fs, nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddPlayer(ctx, "Alice"))

	fs.fail = true
	require.Error(t, svc.AddPlayer(ctx, "Bob"))

	// In-memory state was reloaded from the durable snapshot.
	require.Equal(t, []core.Player{{Name: "Alice"}}, svc.Players())
}

type recordingPublisher struct {
	revisions []int64
	tables    [][]string
}

func (p *recordingPublisher) PublishLedgerUpdated(_ context.Context, revision int64, tables ...string) error {
	p.revisions = append(p.revisions, revision)
	p.tables = append(p.tables, tables)
	return nil
}

func TestMutationsPublishRevisions(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}

	svc, err := New(ctx, storage.NewMemoryStore(), pub)
	require.NoError(t, err)

	require.NoError(t, svc.AddPlayer(ctx, "Alice"))
	require.NoError(t, svc.AddVenue(ctx, "Pub A", "01-01-2024"))
	require.ErrorIs(t, svc.AddPlayer(ctx, "Alice"), core.ErrDuplicatePlayer)

	require.Equal(t, []int64{1, 2}, pub.revisions, "failed mutations publish nothing")
	require.Equal(t, []string{TablePlayers}, pub.tables[0])
}
