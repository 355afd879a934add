package core

// Recalculate rebuilds the balance sheet from the three raw income/expense
// tables. It is a full recompute on purpose: every mutation re-derives the
// whole table so the balance can never drift from the raw data. Row counts
// at club scale keep this cheap.
//
// One row is produced per match key present in any input. A match missing
// from a source contributes zero, never an error, and
// Net = PlayerIncome + OtherIncome - Expenses holds for every row.
func Recalculate(payments []Payment, expenses []Expense, otherIncome []OtherIncome) []BalanceRow {
	playerIncome := make(map[MatchKey]Money)
	for _, p := range payments {
		playerIncome[p.Key()] += p.Amount
	}

	expenseTotal := make(map[MatchKey]Money)
	for _, e := range expenses {
		expenseTotal[e.Key()] += e.Amount
	}

	other := make(map[MatchKey]Money)
	for _, o := range otherIncome {
		other[o.Key()] += o.Total()
	}

	seen := make(map[MatchKey]bool)
	var keys []MatchKey
	for _, m := range []map[MatchKey]Money{playerIncome, other, expenseTotal} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sortKeys(keys)

	rows := make([]BalanceRow, 0, len(keys))
	for _, k := range keys {
		row := BalanceRow{
			Venue:        k.Venue,
			Date:         k.Date,
			PlayerIncome: playerIncome[k],
			OtherIncome:  other[k],
			Expenses:     expenseTotal[k],
		}
		row.Net = row.PlayerIncome + row.OtherIncome - row.Expenses
		rows = append(rows, row)
	}
	return rows
}

// BalanceFor returns the balance row for one match. A missing row is not an
// error: the zero row stands in, matching the "default to zero" policy.
func BalanceFor(balance []BalanceRow, venue, date string) BalanceRow {
	for _, b := range balance {
		if b.Venue == venue && b.Date == date {
			return b
		}
	}
	return BalanceRow{Venue: venue, Date: date}
}
