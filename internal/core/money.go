// Package core holds the pure ledger domain: money handling, the
// reconciliation engine, payment normalization, settlement advice, and the
// contribution matrices. Nothing in this package performs I/O.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in pence. All arithmetic happens on integer pence;
// floats only appear at the display boundary.
type Money int64

// ParsePounds converts a decimal string ("2", "2.50", "2,50") to pence.
// Rounding on a third decimal digit is half-up. Negative amounts are
// rejected; zero is allowed because other-income fields may legitimately
// be zero.
func ParsePounds(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return Money(iv*100 + frac), nil
}

// Pounds returns the amount as a float64 for display.
func (m Money) Pounds() float64 {
	return float64(m) / 100.0
}

// String formats the amount as a plain decimal with two digits, e.g. "5.50"
// or "-1.25". This is the form used in CSV exports.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as its decimal string, e.g. "2.50".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts a decimal string ("2.50", "-1.25") or a bare JSON
// number. Numbers are read as pounds, matching the string form.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	neg := strings.HasPrefix(s, "-")
	v, err := ParsePounds(strings.TrimPrefix(s, "-"))
	if err != nil {
		return err
	}
	if neg {
		v = -v
	}
	*m = v
	return nil
}

// divideRounded splits an amount by n, rounding half-up (away from zero)
// to the nearest penny. Currency rounding here is user-visible, so the
// mode is fixed and tested.
func divideRounded(m Money, n int) Money {
	if n == 0 {
		return 0
	}
	num := int64(m)
	den := int64(n)
	neg := (num < 0) != (den < 0)
	if num < 0 {
		num = -num
	}
	if den < 0 {
		den = -den
	}
	q := (2*num + den) / (2 * den)
	if neg {
		q = -q
	}
	return Money(q)
}
