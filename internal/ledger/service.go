// Package ledger holds the club ledger service: one shared set of tables,
// mutated through a single serialized API that always recomputes the balance
// sheet before persisting.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
	"github.com/MoltenSteelStudio/DartsManager/internal/metrics"
	"github.com/MoltenSteelStudio/DartsManager/internal/storage"
)

// Table names accepted by ClearTable and used in change notifications.
const (
	TablePlayers     = "players"
	TableVenues      = "venues"
	TablePayments    = "payments"
	TableExpenses    = "expenses"
	TableOtherIncome = "other_income"
	TableBalance     = "balance"
)

// Publisher announces committed ledger revisions. The AMQP client satisfies
// this; a nil publisher disables notifications.
type Publisher interface {
	PublishLedgerUpdated(ctx context.Context, revision int64, tables ...string) error
}

// RemovalResult is what the operator sees when a player withdraws: how much
// they put in over time and the advisory per-match redistribution values.
type RemovalResult struct {
	Player           string                `json:"player"`
	TotalContributed core.Money            `json:"total_contributed"`
	Settlement       []core.SettlementLine `json:"settlement"`
}

// Service owns the ledger snapshot. All mutations run to completion under
// one mutex (validate, mutate, recompute, persist, publish); reads hand out
// copies. The reconciliation engine is not built for concurrent partial
// updates, so the single lock is the consistency discipline here.
type Service struct {
	mu       sync.Mutex
	store    storage.Store
	pub      Publisher
	snap     core.Snapshot
	revision int64
}

// New loads the current snapshot from the store. pub may be nil.
func New(ctx context.Context, store storage.Store, pub Publisher) (*Service, error) {
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &Service{store: store, pub: pub, snap: snap}, nil
}

// Revision returns the number of committed mutations this process has made.
func (s *Service) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// mutate applies fn to a working copy of the snapshot, recomputes the
// balance when the raw income/expense tables may have changed, persists,
// and publishes. No mutating path may bypass this hook. On a persistence
// failure the in-memory state is reloaded from the store so the two can
// never silently diverge.
func (s *Service) mutate(ctx context.Context, op string, recalc bool, tables []string, fn func(*core.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(&next); err != nil {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return err
	}

	if recalc {
		start := time.Now()
		next.Balance = core.Recalculate(next.Payments, next.Expenses, next.OtherIncome)
		metrics.RecalcDuration.Observe(time.Since(start).Seconds())
	}

	if err := s.store.Save(ctx, next); err != nil {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		if reloaded, lerr := s.store.Load(ctx); lerr == nil {
			s.snap = reloaded
		} else {
			slog.ErrorContext(ctx, "Failed to reload ledger after persist failure", "error", lerr)
		}
		return fmt.Errorf("persist ledger: %w", err)
	}

	s.snap = next
	s.revision++
	metrics.MutationsTotal.WithLabelValues(op).Inc()

	if s.pub != nil {
		// Best effort: the worker also runs a periodic export, so a
		// lost notification never loses data.
		if err := s.pub.PublishLedgerUpdated(ctx, s.revision, tables...); err != nil {
			slog.WarnContext(ctx, "Failed to publish ledger update",
				"error", err, "revision", s.revision, "operation", op)
		}
	}
	return nil
}

// AddPlayer registers a new club member.
func (s *Service) AddPlayer(ctx context.Context, name string) error {
	return s.mutate(ctx, "add_player", false, []string{TablePlayers}, func(snap *core.Snapshot) error {
		clean, err := core.CleanName(name)
		if err != nil {
			return err
		}
		for _, p := range snap.Players {
			if p.Name == clean {
				return core.ErrDuplicatePlayer
			}
		}
		snap.Players = append(snap.Players, core.Player{Name: clean})
		return nil
	})
}

// RemovePlayer deletes a player and all their payment rows, recomputing the
// balance afterwards. The returned result carries the settlement advisory
// computed against the tables as they stood before the removal; it is
// information for the operator, nothing is redistributed automatically.
func (s *Service) RemovePlayer(ctx context.Context, name string) (RemovalResult, error) {
	var result RemovalResult
	err := s.mutate(ctx, "remove_player", true,
		[]string{TablePlayers, TablePayments, TableBalance},
		func(snap *core.Snapshot) error {
			clean, err := core.CleanName(name)
			if err != nil {
				return err
			}
			idx := -1
			for i, p := range snap.Players {
				if p.Name == clean {
					idx = i
					break
				}
			}
			if idx < 0 {
				return core.ErrUnknownPlayer
			}

			result = RemovalResult{
				Player:           clean,
				TotalContributed: core.TotalContributed(clean, snap.Payments),
				Settlement:       core.SettlementAdvice(clean, snap.Payments, snap.Balance),
			}

			snap.Players = append(snap.Players[:idx], snap.Players[idx+1:]...)
			snap.Payments = core.RemovePlayerRows(snap.Payments, clean)
			return nil
		})
	if err != nil {
		return RemovalResult{}, err
	}
	return result, nil
}

// SettlementPreview computes the removal advisory without removing anyone.
func (s *Service) SettlementPreview(name string) (RemovalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clean, err := core.CleanName(name)
	if err != nil {
		return RemovalResult{}, err
	}
	found := false
	for _, p := range s.snap.Players {
		if p.Name == clean {
			found = true
			break
		}
	}
	if !found {
		return RemovalResult{}, core.ErrUnknownPlayer
	}
	return RemovalResult{
		Player:           clean,
		TotalContributed: core.TotalContributed(clean, s.snap.Payments),
		Settlement:       core.SettlementAdvice(clean, s.snap.Payments, s.snap.Balance),
	}, nil
}

// AddVenue registers a match session. (name, date) must be unique.
func (s *Service) AddVenue(ctx context.Context, name, date string) error {
	return s.mutate(ctx, "add_venue", false, []string{TableVenues}, func(snap *core.Snapshot) error {
		clean, err := core.CleanName(name)
		if err != nil {
			return err
		}
		canonical, err := core.ParseDate(date)
		if err != nil {
			return err
		}
		for _, v := range snap.Venues {
			if v.Name == clean && v.Date == canonical {
				return core.ErrDuplicateVenue
			}
		}
		snap.Venues = append(snap.Venues, core.Venue{Name: clean, Date: canonical})
		return nil
	})
}

// UpsertPayments replaces one player's category selection for one match.
// An empty selection clears their payments there.
func (s *Service) UpsertPayments(ctx context.Context, player, venue, date string, categories []core.Category) error {
	return s.mutate(ctx, "upsert_payments", true,
		[]string{TablePayments, TableBalance},
		func(snap *core.Snapshot) error {
			cleanPlayer, err := core.CleanName(player)
			if err != nil {
				return err
			}
			cleanVenue, err := core.CleanName(venue)
			if err != nil {
				return err
			}
			canonical, err := core.ParseDate(date)
			if err != nil {
				return err
			}
			known := false
			for _, p := range snap.Players {
				if p.Name == cleanPlayer {
					known = true
					break
				}
			}
			if !known {
				return core.ErrUnknownPlayer
			}
			next, err := core.ApplyPaymentSelection(snap.Payments, cleanPlayer, cleanVenue, canonical, categories)
			if err != nil {
				return err
			}
			snap.Payments = next
			return nil
		})
}

// AddExpense appends an expense line item for a match.
func (s *Service) AddExpense(ctx context.Context, venue, date string, amount core.Money, description string) error {
	return s.mutate(ctx, "add_expense", true,
		[]string{TableExpenses, TableBalance},
		func(snap *core.Snapshot) error {
			e := core.Expense{Venue: venue, Date: date, Amount: amount, Description: description}
			e.Venue, _ = core.CleanName(e.Venue)
			if err := e.Validate(); err != nil {
				return err
			}
			canonical, err := core.ParseDate(date)
			if err != nil {
				return err
			}
			e.Date = canonical
			snap.Expenses = append(snap.Expenses, e)
			return nil
		})
}

// UpsertOtherIncome writes the raffle/fines income for a match, overwriting
// any existing row for the same (venue, date).
func (s *Service) UpsertOtherIncome(ctx context.Context, income core.OtherIncome) error {
	return s.mutate(ctx, "upsert_other_income", true,
		[]string{TableOtherIncome, TableBalance},
		func(snap *core.Snapshot) error {
			income.Venue, _ = core.CleanName(income.Venue)
			if err := income.Validate(); err != nil {
				return err
			}
			canonical, err := core.ParseDate(income.Date)
			if err != nil {
				return err
			}
			income.Date = canonical
			for i, o := range snap.OtherIncome {
				if o.Venue == income.Venue && o.Date == income.Date {
					snap.OtherIncome[i] = income
					return nil
				}
			}
			snap.OtherIncome = append(snap.OtherIncome, income)
			return nil
		})
}

// ClearTable empties one table. Clearing a raw income/expense table
// recomputes the balance so it cannot go stale; clearing the balance table
// just empties it (the next mutation rebuilds it in full).
func (s *Service) ClearTable(ctx context.Context, table string) error {
	recalc := false
	switch table {
	case TablePlayers, TableVenues, TableBalance:
	case TablePayments, TableExpenses, TableOtherIncome:
		recalc = true
	default:
		return core.ErrUnknownTable
	}
	return s.mutate(ctx, "clear_"+table, recalc, []string{table}, func(snap *core.Snapshot) error {
		switch table {
		case TablePlayers:
			snap.Players = nil
		case TableVenues:
			snap.Venues = nil
		case TablePayments:
			snap.Payments = nil
		case TableExpenses:
			snap.Expenses = nil
		case TableOtherIncome:
			snap.OtherIncome = nil
		case TableBalance:
			snap.Balance = nil
		}
		return nil
	})
}

// ClearAll wipes every table.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, "clear_all", false, []string{
		TablePlayers, TableVenues, TablePayments, TableExpenses, TableOtherIncome, TableBalance,
	}, func(snap *core.Snapshot) error {
		*snap = core.Snapshot{}
		return nil
	})
}

// Snapshot returns a copy of all six tables.
func (s *Service) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *Service) Players() []core.Player          { return notNil(s.Snapshot().Players) }
func (s *Service) Venues() []core.Venue            { return notNil(s.Snapshot().Venues) }
func (s *Service) Payments() []core.Payment        { return notNil(s.Snapshot().Payments) }
func (s *Service) Expenses() []core.Expense        { return notNil(s.Snapshot().Expenses) }
func (s *Service) OtherIncome() []core.OtherIncome { return notNil(s.Snapshot().OtherIncome) }
func (s *Service) Balance() []core.BalanceRow      { return notNil(s.Snapshot().Balance) }

// notNil keeps empty tables JSON-encoding as [] rather than null.
func notNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ContributionMatrix derives the player-by-match contribution pivot.
func (s *Service) ContributionMatrix() core.Matrix {
	snap := s.Snapshot()
	return core.ContributionMatrix(snap.Players, snap.Venues, snap.Payments)
}

// NetMatrix derives the estimated per-player net share table.
func (s *Service) NetMatrix() core.Matrix {
	snap := s.Snapshot()
	return core.NetMatrix(snap.Players, snap.Venues, snap.Payments, snap.Expenses)
}
