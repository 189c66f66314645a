package lotbook

// AssetAggregate holds the realized totals of one (symbol, currency) pair,
// merged across the owners of the filtered set.
type AssetAggregate struct {
	Symbol         string
	Currency       string
	AssetType      string
	AssetName      string
	ClosedQuantity Quantity
	TotalInvested  Money // sum of matched costs
	TotalRecovered Money // sum of matched proceeds
}

// NetPnl returns the realized gain, negative for a loss.
func (a AssetAggregate) NetPnl() Money { return a.TotalRecovered.Sub(a.TotalInvested) }

// PnlPct returns the realized gain as a percentage of the invested amount.
func (a AssetAggregate) PnlPct() Percent { return a.NetPnl().Ratio(a.TotalInvested) }

// AvgBuyPrice returns the weighted average cost of the closed quantity.
func (a AssetAggregate) AvgBuyPrice() Money { return perUnit(a.TotalInvested, a.ClosedQuantity) }

// AvgSellPrice returns the weighted average proceeds of the closed quantity.
func (a AssetAggregate) AvgSellPrice() Money { return perUnit(a.TotalRecovered, a.ClosedQuantity) }

// OpenPosition is the unconsumed remainder of one partition.
type OpenPosition struct {
	Owner             string
	Symbol            string
	Currency          string
	AssetType         string
	AssetName         string
	Lots              int
	RemainingQuantity Quantity
	InvestedAmount    Money
}

// Key returns the partition key of the position.
func (p OpenPosition) Key() PartitionKey {
	return PartitionKey{Owner: p.Owner, Symbol: p.Symbol, Currency: p.Currency}
}

// AvgBuyPrice returns the weighted average cost of the remaining quantity.
func (p OpenPosition) AvgBuyPrice() Money { return perUnit(p.InvestedAmount, p.RemainingQuantity) }

func perUnit(m Money, q Quantity) Money {
	if q.IsZero() {
		return M(0, m.Currency())
	}
	return m.Div(q)
}

// ActivitySummary totals the filtered operations of one currency, whether
// they were matched or not.
type ActivitySummary struct {
	Currency string
	Count    int
	Bought   Money
	Sold     Money
	Fees     Money // implicit fees: receipt amounts minus quantity × unit price
}

// Net returns sold minus bought.
func (a ActivitySummary) Net() Money { return a.Sold.Sub(a.Bought) }

// reducer folds realized matches and surviving lots into report rows. Rows
// are kept in discovery order.
type reducer struct {
	assets    []AssetAggregate
	assetIdx  map[AssetKey]int
	positions []OpenPosition
	activity  []ActivitySummary
	activIdx  map[string]int
}

func newReducer() *reducer {
	return &reducer{
		assetIdx: make(map[AssetKey]int),
		activIdx: make(map[string]int),
	}
}

// addTransaction counts a filtered transaction in its currency activity.
func (r *reducer) addTransaction(tx Transaction) {
	i, ok := r.activIdx[tx.Currency]
	if !ok {
		i = len(r.activity)
		r.activIdx[tx.Currency] = i
		r.activity = append(r.activity, ActivitySummary{
			Currency: tx.Currency,
			Bought:   M(0, tx.Currency),
			Sold:     M(0, tx.Currency),
			Fees:     M(0, tx.Currency),
		})
	}
	a := &r.activity[i]
	a.Count++
	a.Fees = a.Fees.Add(tx.ImplicitFees())
	switch tx.Operation {
	case OpBuy:
		a.Bought = a.Bought.Add(tx.Amount)
	case OpSell:
		a.Sold = a.Sold.Add(tx.Amount)
	}
}

// addMatch folds a match into the aggregate of its asset.
func (r *reducer) addMatch(m RealizedMatch) {
	key := m.Key.AssetKey()
	i, ok := r.assetIdx[key]
	if !ok {
		i = len(r.assets)
		r.assetIdx[key] = i
		r.assets = append(r.assets, AssetAggregate{
			Symbol:         key.Symbol,
			Currency:       key.Currency,
			AssetType:      m.AssetType,
			AssetName:      m.AssetName,
			TotalInvested:  M(0, key.Currency),
			TotalRecovered: M(0, key.Currency),
		})
	}
	a := &r.assets[i]
	a.ClosedQuantity = a.ClosedQuantity.Add(m.Quantity)
	a.TotalInvested = a.TotalInvested.Add(m.Cost)
	a.TotalRecovered = a.TotalRecovered.Add(m.Proceeds)
}

// addLots folds the open lots of a partition into one position. An empty
// queue produces no position.
func (r *reducer) addLots(key PartitionKey, lots []Lot) {
	if len(lots) == 0 {
		return
	}
	p := OpenPosition{
		Owner:          key.Owner,
		Symbol:         key.Symbol,
		Currency:       key.Currency,
		AssetType:      lots[0].AssetType,
		AssetName:      lots[0].AssetName,
		Lots:           len(lots),
		InvestedAmount: M(0, key.Currency),
	}
	for _, l := range lots {
		p.RemainingQuantity = p.RemainingQuantity.Add(l.Remaining)
		p.InvestedAmount = p.InvestedAmount.Add(l.Cost())
	}
	r.positions = append(r.positions, p)
}
