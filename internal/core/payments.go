package core

import "sort"

// Category is a fixed-price payment type a player may opt into per match.
type Category string

const (
	CategorySubs   Category = "Subs"
	CategoryRaffle Category = "Raffle"
	CategoryFood   Category = "Food"
)

// CategoryAmounts maps each category to its fixed price in pence. Callers
// only ever select categories; amounts are never supplied from outside.
var CategoryAmounts = map[Category]Money{
	CategorySubs:   200,
	CategoryRaffle: 100,
	CategoryFood:   100,
}

// PaymentCap is the most one player may pay at one match. With the current
// three categories the cap equals their sum, so it cannot be exceeded; the
// guard stays in place for any future category additions.
const PaymentCap Money = 400

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{CategorySubs, CategoryRaffle, CategoryFood}
}

// ParseCategory validates a textual category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := CategoryAmounts[c]; !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// ApplyPaymentSelection replaces a player's category set for one match.
//
// Rows for (player, venue, date) whose category is absent from wanted are
// dropped; every wanted category is (re-)written at its fixed amount. An
// empty selection therefore clears the player's payments for the match.
// Other players' rows, and this player's rows at other matches, are
// untouched. The input slice is not modified.
func ApplyPaymentSelection(payments []Payment, player, venue, date string, wanted []Category) ([]Payment, error) {
	selected := make(map[Category]bool, len(wanted))
	var total Money
	for _, c := range wanted {
		if _, ok := CategoryAmounts[c]; !ok {
			return nil, ErrUnknownCategory
		}
		if selected[c] {
			continue
		}
		selected[c] = true
		total += CategoryAmounts[c]
	}
	if total > PaymentCap {
		return nil, ErrPaymentCapExceeded
	}

	out := make([]Payment, 0, len(payments)+len(selected))
	for _, p := range payments {
		if p.Player == player && p.Venue == venue && p.Date == date {
			continue
		}
		out = append(out, p)
	}
	for _, c := range Categories() {
		if !selected[c] {
			continue
		}
		out = append(out, Payment{
			Player:   player,
			Amount:   CategoryAmounts[c],
			Category: c,
			Venue:    venue,
			Date:     date,
		})
	}
	return out, nil
}

// PaidCategories reports which categories a player has paid at a match,
// in display order.
func PaidCategories(payments []Payment, player, venue, date string) []Category {
	paid := make(map[Category]bool)
	for _, p := range payments {
		if p.Player == player && p.Venue == venue && p.Date == date {
			paid[p.Category] = true
		}
	}
	var out []Category
	for _, c := range Categories() {
		if paid[c] {
			out = append(out, c)
		}
	}
	return out
}

// distinctPlayers counts the players with at least one payment per match.
func distinctPlayers(payments []Payment) map[MatchKey]int {
	seen := make(map[MatchKey]map[string]bool)
	for _, p := range payments {
		k := p.Key()
		if seen[k] == nil {
			seen[k] = make(map[string]bool)
		}
		seen[k][p.Player] = true
	}
	counts := make(map[MatchKey]int, len(seen))
	for k, names := range seen {
		counts[k] = len(names)
	}
	return counts
}

// sortKeys orders match keys by (date, venue) so derived tables come out
// deterministic.
func sortKeys(keys []MatchKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].Venue < keys[j].Venue
	})
}
