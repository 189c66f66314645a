package lotbook

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary totals realized accounting over a set of assets.
//
// The global summary of a Report adds amounts of every currency as plain
// numbers, its Currency is empty unless a single currency took part.
type Summary struct {
	Currency          string
	TotalInvested     Money
	TotalRecovered    Money
	OpenPositionCount int
}

// NetPnl returns the realized gain, negative for a loss.
func (s Summary) NetPnl() Money { return s.TotalRecovered.Sub(s.TotalInvested) }

// PnlPct returns the realized gain as a percentage of the invested amount,
// zero when nothing was invested.
func (s Summary) PnlPct() Percent { return s.NetPnl().Ratio(s.TotalInvested) }

// Report is the result of a computation. It is not modified after Compute
// returns it.
type Report struct {
	Filter Filter
	Sort   SortOrder
	Exact  bool // JSON amounts at full precision instead of the currency minor unit

	Summary       Summary
	Currencies    []Summary // one per settlement currency, in order of appearance
	ByAsset       []AssetAggregate
	OpenPositions []OpenPosition
	Activity      []ActivitySummary

	Rejected []Rejection
	Oversold []Oversell
}

// Asset returns the aggregate of symbol in currency, if any.
func (r *Report) Asset(symbol, currency string) (AssetAggregate, bool) {
	for _, a := range r.ByAsset {
		if a.Symbol == symbol && a.Currency == currency {
			return a, true
		}
	}
	return AssetAggregate{}, false
}

// Position returns the open position of the partition key, if any.
func (r *Report) Position(key PartitionKey) (OpenPosition, bool) {
	for _, p := range r.OpenPositions {
		if p.Key() == key {
			return p, true
		}
	}
	return OpenPosition{}, false
}

// assemble composes the report out of the reducer rows.
func (red *reducer) assemble(order SortOrder) *Report {
	r := &Report{
		Sort:          order,
		ByAsset:       red.assets,
		OpenPositions: red.positions,
		Activity:      red.activity,
	}

	var invested, recovered decimal.Decimal
	index := make(map[string]int)
	currency := func(c string) *Summary {
		i, ok := index[c]
		if !ok {
			i = len(r.Currencies)
			index[c] = i
			r.Currencies = append(r.Currencies, Summary{
				Currency:       c,
				TotalInvested:  M(0, c),
				TotalRecovered: M(0, c),
			})
		}
		return &r.Currencies[i]
	}
	for _, a := range red.assets {
		s := currency(a.Currency)
		s.TotalInvested = s.TotalInvested.Add(a.TotalInvested)
		s.TotalRecovered = s.TotalRecovered.Add(a.TotalRecovered)
		invested = invested.Add(a.TotalInvested.Decimal())
		recovered = recovered.Add(a.TotalRecovered.Decimal())
	}
	for _, p := range red.positions {
		currency(p.Currency).OpenPositionCount++
	}

	var global string
	if len(r.Currencies) == 1 {
		global = r.Currencies[0].Currency
	}
	r.Summary = Summary{
		Currency:          global,
		TotalInvested:     M(invested, global),
		TotalRecovered:    M(recovered, global),
		OpenPositionCount: len(red.positions),
	}
	sortAssets(r.ByAsset, order)
	return r
}

// sortAssets orders rows in place. Ties keep discovery order.
func sortAssets(assets []AssetAggregate, order SortOrder) {
	var cmp func(a, b AssetAggregate) int
	switch order {
	case ByPnlPct:
		cmp = func(a, b AssetAggregate) int { return b.PnlPct().Decimal().Cmp(a.PnlPct().Decimal()) }
	case ByNetPnl:
		cmp = func(a, b AssetAggregate) int { return b.NetPnl().Decimal().Cmp(a.NetPnl().Decimal()) }
	case ByInvested:
		cmp = func(a, b AssetAggregate) int { return b.TotalInvested.Decimal().Cmp(a.TotalInvested.Decimal()) }
	case BySymbol:
		cmp = func(a, b AssetAggregate) int {
			if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
				return c
			}
			return strings.Compare(a.Currency, b.Currency)
		}
	default:
		return
	}
	slices.SortStableFunc(assets, cmp)
}
