package core

// SettlementLine is the advisory redistribution value for one match a
// departing player took part in.
type SettlementLine struct {
	Venue             string `json:"venue"`
	Date              string `json:"date"`
	PerRemainingValue Money  `json:"per_remaining_value"`
}

// SettlementAdvice reports, for every match the departing player paid at,
// how much of that match's net each remaining player should be credited
// when the departure is absorbed.
//
// The divisor is the distinct-player head-count at the match minus one,
// regardless of how many categories anyone paid. A match without a balance
// row counts as net zero. When the departing player was the only
// participant there is nobody to redistribute to and the value is zero.
// Division rounds half-up to the penny; see divideRounded.
//
// The function is purely advisory: it inspects the tables and mutates
// nothing. The actual removal is the caller's job.
func SettlementAdvice(player string, payments []Payment, balance []BalanceRow) []SettlementLine {
	var keys []MatchKey
	seen := make(map[MatchKey]bool)
	for _, p := range payments {
		if p.Player != player {
			continue
		}
		k := p.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sortKeys(keys)

	counts := distinctPlayers(payments)

	lines := make([]SettlementLine, 0, len(keys))
	for _, k := range keys {
		line := SettlementLine{Venue: k.Venue, Date: k.Date}
		if n := counts[k]; n > 1 {
			net := BalanceFor(balance, k.Venue, k.Date).Net
			line.PerRemainingValue = divideRounded(net, n-1)
		}
		lines = append(lines, line)
	}
	return lines
}

// TotalContributed sums every payment the player ever made.
func TotalContributed(player string, payments []Payment) Money {
	var total Money
	for _, p := range payments {
		if p.Player == player {
			total += p.Amount
		}
	}
	return total
}

// RemovePlayerRows drops all of one player's payment rows, leaving every
// other row in place. The caller must recalculate the balance afterwards.
func RemovePlayerRows(payments []Payment, player string) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.Player == player {
			continue
		}
		out = append(out, p)
	}
	return out
}
