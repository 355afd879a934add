package core

// Matrix is a rectangular player-by-match table of amounts. Rows cover every
// known player and columns every known venue session, whether or not any
// payments exist, so sparse history never changes the shape.
type Matrix struct {
	Players []string   `json:"players"`
	Matches []MatchKey `json:"matches"`
	// Cells[player][match index] in pence.
	Cells map[string][]Money `json:"cells"`
	// Totals[player] is the row total across all match columns.
	Totals map[string]Money `json:"totals"`
}

// ContributionMatrix pivots payments into amount-contributed per player per
// match. Missing cells are zero.
func ContributionMatrix(players []Player, venues []Venue, payments []Payment) Matrix {
	m := newMatrix(players, venues)

	sums := make(map[string]map[MatchKey]Money)
	for _, p := range payments {
		if sums[p.Player] == nil {
			sums[p.Player] = make(map[MatchKey]Money)
		}
		sums[p.Player][p.Key()] += p.Amount
	}

	for _, name := range m.Players {
		for i, k := range m.Matches {
			v := sums[name][k]
			m.Cells[name][i] = v
			m.Totals[name] += v
		}
	}
	return m
}

// NetMatrix estimates each player's share of every match outcome. Per match
// the constant (player income - expenses) / distinct participant count is
// broadcast into every player's cell, then summed per row. The model is
// deliberately simplified: all participants of a match share its result
// equally, whatever categories they paid, and the denominator includes
// every participant (unlike the settlement divisor).
func NetMatrix(players []Player, venues []Venue, payments []Payment, expenses []Expense) Matrix {
	m := newMatrix(players, venues)

	income := make(map[MatchKey]Money)
	for _, p := range payments {
		income[p.Key()] += p.Amount
	}
	spent := make(map[MatchKey]Money)
	for _, e := range expenses {
		spent[e.Key()] += e.Amount
	}
	counts := distinctPlayers(payments)

	perMatch := make(map[MatchKey]Money, len(m.Matches))
	for _, k := range m.Matches {
		if n := counts[k]; n > 0 {
			perMatch[k] = divideRounded(income[k]-spent[k], n)
		}
	}

	for _, name := range m.Players {
		for i, k := range m.Matches {
			v := perMatch[k]
			m.Cells[name][i] = v
			m.Totals[name] += v
		}
	}
	return m
}

func newMatrix(players []Player, venues []Venue) Matrix {
	m := Matrix{
		Players: make([]string, 0, len(players)),
		Matches: make([]MatchKey, 0, len(venues)),
		Cells:   make(map[string][]Money, len(players)),
		Totals:  make(map[string]Money, len(players)),
	}
	for _, p := range players {
		m.Players = append(m.Players, p.Name)
	}
	for _, v := range venues {
		m.Matches = append(m.Matches, v.Key())
	}
	for _, name := range m.Players {
		m.Cells[name] = make([]Money, len(m.Matches))
	}
	return m
}
