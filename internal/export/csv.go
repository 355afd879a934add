// Package export renders ledger snapshots as CSV, both to a directory of
// files and to single-table streams for downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MoltenSteelStudio/DartsManager/internal/core"
)

// Filenames maps ledger table names to the CSV file written for each.
var Filenames = map[string]string{
	"players":      "players.csv",
	"venues":       "venues.csv",
	"payments":     "payments.csv",
	"expenses":     "expenses.csv",
	"other_income": "other_income.csv",
	"balance":      "balance_sheet.csv",
}

// WriteSnapshot writes every table of snap into dir, one CSV per table.
// Each file is written to a temp name first and renamed into place so a
// concurrent reader never sees a half-written table.
func WriteSnapshot(dir string, snap core.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	for table, name := range Filenames {
		if err := writeFile(filepath.Join(dir, name), table, snap); err != nil {
			return fmt.Errorf("export %s: %w", table, err)
		}
	}
	return nil
}

// WriteTable streams one table of snap as CSV.
func WriteTable(w io.Writer, table string, snap core.Snapshot) error {
	cw := csv.NewWriter(w)
	var err error
	switch table {
	case "players":
		err = writePlayers(cw, snap.Players)
	case "venues":
		err = writeVenues(cw, snap.Venues)
	case "payments":
		err = writePayments(cw, snap.Payments)
	case "expenses":
		err = writeExpenses(cw, snap.Expenses)
	case "other_income":
		err = writeOtherIncome(cw, snap.OtherIncome)
	case "balance":
		err = writeBalance(cw, snap.Balance)
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownTable, table)
	}
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path, table string, snap core.Snapshot) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteTable(tmp, table, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writePlayers(w *csv.Writer, players []core.Player) error {
	if err := w.Write([]string{"Name"}); err != nil {
		return err
	}
	for _, p := range players {
		if err := w.Write([]string{p.Name}); err != nil {
			return err
		}
	}
	return nil
}

func writeVenues(w *csv.Writer, venues []core.Venue) error {
	if err := w.Write([]string{"Venue", "Date"}); err != nil {
		return err
	}
	for _, v := range venues {
		if err := w.Write([]string{v.Name, v.Date}); err != nil {
			return err
		}
	}
	return nil
}

func writePayments(w *csv.Writer, payments []core.Payment) error {
	if err := w.Write([]string{"Name", "Amount", "Category", "Venue", "Date"}); err != nil {
		return err
	}
	for _, p := range payments {
		row := []string{p.Player, p.Amount.String(), string(p.Category), p.Venue, p.Date}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeExpenses(w *csv.Writer, expenses []core.Expense) error {
	if err := w.Write([]string{"Venue", "Date", "Amount", "Description"}); err != nil {
		return err
	}
	for _, e := range expenses {
		row := []string{e.Venue, e.Date, e.Amount.String(), e.Description}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeOtherIncome(w *csv.Writer, rows []core.OtherIncome) error {
	if err := w.Write([]string{"Venue", "Date", "Raffle Income", "Fines"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{r.Venue, r.Date, r.RaffleIncome.String(), r.Fines.String()}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeBalance(w *csv.Writer, rows []core.BalanceRow) error {
	header := []string{"Venue", "Date", "Total Player Income", "Other Income", "Total Expenses", "Net"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Venue, r.Date,
			r.PlayerIncome.String(), r.OtherIncome.String(), r.Expenses.String(), r.Net.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
