package lotbook

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a single settlement currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// Fraction returns the number of minor unit digits of the currency, 2 for
// an empty or unknown currency.
func (m Money) Fraction() int32 {
	if m.cur == "" || money.GetCurrency(m.cur) == nil {
		return 2
	}
	return int32(m.currency().Fraction)
}

// String returns the value formatted with the currency template, rounded to
// the currency minor unit.
func (m Money) String() string {
	if m.cur == "" || money.GetCurrency(m.cur) == nil {
		return strings.TrimSpace(m.value.StringFixed(m.Fraction()) + " " + m.cur)
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string           { return m.cur }
func (m Money) Decimal() decimal.Decimal   { return m.value }
func (m Money) Equal(n Money) bool         { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool               { return m.value.IsZero() }
func (m Money) IsPositive() bool           { return m.value.IsPositive() }
func (m Money) IsNegative() bool           { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool   { return m.value.GreaterThan(n.value) }
func (m Money) Mul(n Quantity) Money       { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money       { return Money{value: m.value.Div(n.value), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Ratio returns m / n as a percentage, zero when n is zero.
func (m Money) Ratio(n Money) Percent {
	if n.value.IsZero() {
		return Percent{}
	}
	return Percent{value: m.value.Div(n.value).Mul(hundred)}
}

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
