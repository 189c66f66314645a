package lotbook

import "time"

// Lot is an open, possibly partially consumed, purchase.
type Lot struct {
	TransactionID string
	OccurredAt    time.Time
	AssetType     string
	AssetName     string
	Remaining     Quantity
	UnitCost      Money // amount / quantity of the originating buy
	cost          Money // cost of the remaining quantity
}

// Cost returns the cost basis of the remaining quantity.
func (l Lot) Cost() Money { return l.cost }

// RealizedMatch is the portion of a sell matched against one lot.
type RealizedMatch struct {
	Key       PartitionKey
	LotID     string
	SellID    string
	AssetType string
	AssetName string
	Quantity  Quantity
	Cost      Money
	Proceeds  Money
}

// lotQueue holds the lots of one partition, oldest first. Consumed lots are
// popped by advancing head.
type lotQueue struct {
	lots []Lot
	head int
}

func (q *lotQueue) empty() bool { return q.head == len(q.lots) }
func (q *lotQueue) front() *Lot { return &q.lots[q.head] }
func (q *lotQueue) pop()        { q.lots[q.head] = Lot{}; q.head++ }
func (q *lotQueue) open() []Lot { return q.lots[q.head:] }

// buy appends a new lot for the transaction.
func (q *lotQueue) buy(tx Transaction) {
	q.lots = append(q.lots, Lot{
		TransactionID: tx.ID,
		OccurredAt:    tx.OccurredAt,
		AssetType:     tx.AssetType,
		AssetName:     tx.AssetName,
		Remaining:     tx.Quantity,
		UnitCost:      tx.UnitAmount(),
		cost:          tx.Amount,
	})
}

// sell consumes lots in FIFO order and returns the matches along with the
// quantity that could not be matched.
//
// Proceeds are allocated to each match at the sell's per-unit rate. When the
// sell is fully matched its last match receives what remains of the amount,
// and a lot fully consumed realizes its remaining cost, so that sums are exact
// even when the per-unit rates are not.
func (q *lotQueue) sell(key PartitionKey, tx Transaction) ([]RealizedMatch, Quantity) {
	toSell := tx.Quantity
	rate := tx.UnitAmount()
	allocated := M(0, tx.Currency)
	var matches []RealizedMatch

	for toSell.IsPositive() && !q.empty() {
		lot := q.front()
		matched := toSell.Min(lot.Remaining)

		cost := lot.cost
		if !matched.Equal(lot.Remaining) {
			cost = lot.cost.Mul(matched).Div(lot.Remaining)
		}
		toSell = toSell.Sub(matched)
		proceeds := rate.Mul(matched)
		if toSell.IsZero() {
			proceeds = tx.Amount.Sub(allocated)
		}
		allocated = allocated.Add(proceeds)

		matches = append(matches, RealizedMatch{
			Key:       key,
			LotID:     lot.TransactionID,
			SellID:    tx.ID,
			AssetType: lot.AssetType,
			AssetName: lot.AssetName,
			Quantity:  matched,
			Cost:      cost,
			Proceeds:  proceeds,
		})

		lot.Remaining = lot.Remaining.Sub(matched)
		lot.cost = lot.cost.Sub(cost)
		if lot.Remaining.IsZero() {
			q.pop()
		}
	}
	return matches, toSell
}

// Replay is the state of one partition after all its transactions have been
// applied in order.
type Replay struct {
	Key      PartitionKey
	Lots     []Lot // open lots, oldest first
	Matches  []RealizedMatch
	Oversold []Oversell
}

// ReplayPartition applies the transactions of p, which must be sorted, to an
// empty FIFO lot queue.
func ReplayPartition(p Partition) Replay {
	var q lotQueue
	r := Replay{Key: p.Key}
	for _, tx := range p.Transactions {
		switch tx.Operation {
		case OpBuy:
			q.buy(tx)
		case OpSell:
			matches, unmatched := q.sell(p.Key, tx)
			r.Matches = append(r.Matches, matches...)
			if unmatched.IsPositive() {
				r.Oversold = append(r.Oversold, Oversell{
					Key:           p.Key,
					TransactionID: tx.ID,
					OccurredAt:    tx.OccurredAt,
					Unmatched:     unmatched,
				})
			}
		}
	}
	r.Lots = append([]Lot(nil), q.open()...)
	return r
}
