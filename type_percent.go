package lotbook

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent is an exact percentage, 20 meaning 20%.
type Percent struct {
	value decimal.Decimal
}

// P returns a Percent from a value already expressed in percent.
func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

func (p Percent) Decimal() decimal.Decimal { return p.value }
func (p Percent) IsZero() bool             { return p.value.IsZero() }
func (p Percent) LessThan(q Percent) bool  { return p.value.LessThan(q.value) }

// Equal compares two percents at a hundredth of a basis point.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	return p.value.Sub(q.value).Abs().LessThan(decimal.NewFromFloat(precision))
}

func (p Percent) String() string {
	return p.value.StringFixed(2) + "%"
}

func (p Percent) SignedString() string {
	res := p.value.StringFixed(2)
	if res == "0.00" || res == "-0.00" {
		return "-"
	}
	if p.value.IsPositive() {
		res = "+" + res
	}
	return res + "%"
}
