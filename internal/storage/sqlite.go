package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the six ledger tables in a SQLite database using the
// pure Go driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces all six tables inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"players", "venues", "payments", "expenses", "other_income", "balance"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range snap.Players {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO players (name) VALUES (?)", p.Name); err != nil {
			return fmt.Errorf("insert player: %w", err)
		}
	}
	for _, v := range snap.Venues {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO venues (venue, date) VALUES (?, ?)", v.Name, v.Date); err != nil {
			return fmt.Errorf("insert venue: %w", err)
		}
	}
	for _, p := range snap.Payments {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payments (name, amount_pence, category, venue, date) VALUES (?, ?, ?, ?, ?)",
			p.Player, int64(p.Amount), string(p.Category), p.Venue, p.Date); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}
	for _, e := range snap.Expenses {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (venue, date, amount_pence, description) VALUES (?, ?, ?, ?)",
			e.Venue, e.Date, int64(e.Amount), e.Description); err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
	}
	for _, o := range snap.OtherIncome {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO other_income (venue, date, raffle_income_pence, fines_pence) VALUES (?, ?, ?, ?)",
			o.Venue, o.Date, int64(o.RaffleIncome), int64(o.Fines)); err != nil {
			return fmt.Errorf("insert other income: %w", err)
		}
	}
	for _, b := range snap.Balance {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO balance (venue, date, player_income_pence, other_income_pence, expenses_pence, net_pence) VALUES (?, ?, ?, ?, ?, ?)",
			b.Venue, b.Date, int64(b.PlayerIncome), int64(b.OtherIncome), int64(b.Expenses), int64(b.Net)); err != nil {
			return fmt.Errorf("insert balance row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Load reads back the full snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM players ORDER BY name")
	if err != nil {
		return snap, fmt.Errorf("query players: %w", err)
	}
	for rows.Next() {
		var p core.Player
		if err := rows.Scan(&p.Name); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan player: %w", err)
		}
		snap.Players = append(snap.Players, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate players: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, "SELECT venue, date FROM venues ORDER BY date, venue")
	if err != nil {
		return snap, fmt.Errorf("query venues: %w", err)
	}
	for rows.Next() {
		var v core.Venue
		if err := rows.Scan(&v.Name, &v.Date); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan venue: %w", err)
		}
		snap.Venues = append(snap.Venues, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate venues: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT name, amount_pence, category, venue, date FROM payments ORDER BY date, venue, name, category")
	if err != nil {
		return snap, fmt.Errorf("query payments: %w", err)
	}
	for rows.Next() {
		var (
			p        core.Payment
			amount   int64
			category string
		)
		if err := rows.Scan(&p.Player, &amount, &category, &p.Venue, &p.Date); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = core.Money(amount)
		p.Category = core.Category(category)
		snap.Payments = append(snap.Payments, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate payments: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT venue, date, amount_pence, description FROM expenses ORDER BY id")
	if err != nil {
		return snap, fmt.Errorf("query expenses: %w", err)
	}
	for rows.Next() {
		var (
			e      core.Expense
			amount int64
		)
		if err := rows.Scan(&e.Venue, &e.Date, &amount, &e.Description); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = core.Money(amount)
		snap.Expenses = append(snap.Expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate expenses: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT venue, date, raffle_income_pence, fines_pence FROM other_income ORDER BY date, venue")
	if err != nil {
		return snap, fmt.Errorf("query other income: %w", err)
	}
	for rows.Next() {
		var (
			o             core.OtherIncome
			raffle, fines int64
		)
		if err := rows.Scan(&o.Venue, &o.Date, &raffle, &fines); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan other income: %w", err)
		}
		o.RaffleIncome = core.Money(raffle)
		o.Fines = core.Money(fines)
		snap.OtherIncome = append(snap.OtherIncome, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate other income: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT venue, date, player_income_pence, other_income_pence, expenses_pence, net_pence FROM balance ORDER BY date, venue")
	if err != nil {
		return snap, fmt.Errorf("query balance: %w", err)
	}
	for rows.Next() {
		var (
			b                                core.BalanceRow
			playerInc, otherInc, spent, nett int64
		)
		if err := rows.Scan(&b.Venue, &b.Date, &playerInc, &otherInc, &spent, &nett); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan balance row: %w", err)
		}
		b.PlayerIncome = core.Money(playerInc)
		b.OtherIncome = core.Money(otherInc)
		b.Expenses = core.Money(spent)
		b.Net = core.Money(nett)
		snap.Balance = append(snap.Balance, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate balance: %w", err)
	}

	return snap, nil
}
