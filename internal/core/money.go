// Package core holds the ledger's value types: money, entries and the
// line grammar used by the persisted expense log.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountToken = regexp.MustCompile(`\$([0-9]+(\.[0-9]+)?)`)

	// Largest amount whose cent value still fits comfortably in int64.
	maxAmount = decimal.New(1, 15)
)

// ParseAmount converts user text to Money with half-up rounding to cents.
//
// A comma is read as the decimal separator only when it is the sole
// separator and at most two digits follow it; anything that looks like a
// thousands separator is rejected. Negative, non-numeric, non-finite or
// absurdly large values fail with ErrInvalidAmount. Zero is a valid amount.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.50
//	ParseAmount("12,34") -> 12.34
//	ParseAmount("1,000") -> ErrInvalidAmount
//	ParseAmount("-1")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		if !decimalComma(s) {
			return Money{}, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() || d.GreaterThanOrEqual(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

// decimalComma reports whether s uses a single comma as its decimal
// separator, as in "2,5" or "12,34".
func decimalComma(s string) bool {
	if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return false
	}
	frac := s[strings.Index(s, ",")+1:]
	return len(frac) >= 1 && len(frac) <= 2
}

// ExtractAmount returns the amount of the first "$<number>" token in line,
// or zero when there is none.
func ExtractAmount(line string) Money {
	m := amountToken.FindStringSubmatch(line)
	if m == nil {
		return Money{}
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil || d.GreaterThanOrEqual(maxAmount) {
		return Money{}
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d half away from zero to whole cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns m as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with exactly two decimals, e.g. "15.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Sum rebuilds a total from scratch by re-parsing every entry's line.
func Sum(entries []Entry) Money {
	var total Money
	for _, e := range entries {
		total = total.Add(ExtractAmount(e.Line()))
	}
	return total
}
