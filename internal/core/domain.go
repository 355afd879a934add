package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical day-month-year form used across all tables.
// Dates only ever act as grouping keys, so equality on the canonical string
// is all the engine needs.
const DateLayout = "02-01-2006"

var (
	ErrEmptyName          = errors.New("empty name")
	ErrDuplicatePlayer    = errors.New("duplicate player")
	ErrDuplicateVenue     = errors.New("duplicate venue")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownCategory    = errors.New("unknown payment category")
	ErrPaymentCapExceeded = errors.New("payment total exceeds per-match cap")
	ErrUnknownTable       = errors.New("unknown table")
)

type (
	// Player is a club member identified by name.
	Player struct {
		Name string `json:"name"`
	}

	// Venue is a single match session. The pair (Name, Date) is unique.
	Venue struct {
		Name string `json:"name"`
		Date string `json:"date"`
	}

	// MatchKey identifies one session for grouping.
	MatchKey struct {
		Venue string `json:"venue"`
		Date  string `json:"date"`
	}

	// Payment is one player's paid category at one match.
	// At most one row exists per (Player, Venue, Date, Category).
	Payment struct {
		Player   string   `json:"player"`
		Amount   Money    `json:"amount"`
		Category Category `json:"category"`
		Venue    string   `json:"venue"`
		Date     string   `json:"date"`
	}

	// Expense is an independent expense line item for a match.
	// Multiple rows per match are allowed.
	Expense struct {
		Venue       string `json:"venue"`
		Date        string `json:"date"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
	}

	// OtherIncome holds the non-payment income of a match,
	// upserted in place per (Venue, Date).
	OtherIncome struct {
		Venue        string `json:"venue"`
		Date         string `json:"date"`
		RaffleIncome Money  `json:"raffle_income"`
		Fines        Money  `json:"fines"`
	}

	// BalanceRow is one fully derived balance-sheet line.
	// Invariant: Net = PlayerIncome + OtherIncome - Expenses.
	BalanceRow struct {
		Venue        string `json:"venue"`
		Date         string `json:"date"`
		PlayerIncome Money  `json:"player_income"`
		OtherIncome  Money  `json:"other_income"`
		Expenses     Money  `json:"expenses"`
		Net          Money  `json:"net"`
	}

	// Snapshot is the whole ledger: the five raw tables plus the derived
	// balance sheet. It is the unit of persistence.
	Snapshot struct {
		Players     []Player      `json:"players"`
		Venues      []Venue       `json:"venues"`
		Payments    []Payment     `json:"payments"`
		Expenses    []Expense     `json:"expenses"`
		OtherIncome []OtherIncome `json:"other_income"`
		Balance     []BalanceRow  `json:"balance"`
	}
)

// Key returns the match the payment belongs to.
func (p Payment) Key() MatchKey { return MatchKey{Venue: p.Venue, Date: p.Date} }

// Key returns the match the expense belongs to.
func (e Expense) Key() MatchKey { return MatchKey{Venue: e.Venue, Date: e.Date} }

// Key returns the match the income row belongs to.
func (o OtherIncome) Key() MatchKey { return MatchKey{Venue: o.Venue, Date: o.Date} }

// Key returns the venue's match key.
func (v Venue) Key() MatchKey { return MatchKey{Venue: v.Name, Date: v.Date} }

// Total is the row's combined non-payment income.
func (o OtherIncome) Total() Money { return o.RaffleIncome + o.Fines }

// ParseDate validates a textual date and returns it in canonical
// day-month-year form.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(DateLayout), nil
}

// CleanName trims a required name field, returning ErrEmptyName for blank input.
func CleanName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyName
	}
	return s, nil
}

func (v Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return ErrEmptyName
	}
	if _, err := ParseDate(v.Date); err != nil {
		return err
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Venue) == "" {
		return ErrEmptyName
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (o OtherIncome) Validate() error {
	if strings.TrimSpace(o.Venue) == "" {
		return ErrEmptyName
	}
	if _, err := ParseDate(o.Date); err != nil {
		return err
	}
	if o.RaffleIncome < 0 || o.Fines < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Clone returns a deep copy of the snapshot so callers can hand out
// table views without exposing the ledger's own slices.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Players:     append([]Player(nil), s.Players...),
		Venues:      append([]Venue(nil), s.Venues...),
		Payments:    append([]Payment(nil), s.Payments...),
		Expenses:    append([]Expense(nil), s.Expenses...),
		OtherIncome: append([]OtherIncome(nil), s.OtherIncome...),
		Balance:     append([]BalanceRow(nil), s.Balance...),
	}
}
