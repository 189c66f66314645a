package lotbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitions(t *testing.T) {
	at := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	txs := []Transaction{
		{ID: "m1", Index: 0, Owner: "a", Symbol: "MSFT", Currency: "USD", OccurredAt: at(3)},
		{ID: "x1", Index: 1, Owner: "a", Symbol: "AAPL", Currency: "USD", OccurredAt: at(2)},
		{ID: "m2", Index: 2, Owner: "a", Symbol: "MSFT", Currency: "USD", OccurredAt: at(1)},
		{ID: "x2", Index: 3, Owner: "a", Symbol: "AAPL", Currency: "USD", OccurredAt: at(2)},
		{ID: "x3", Index: 4, Owner: "b", Symbol: "AAPL", Currency: "USD", OccurredAt: at(1)},
		{ID: "x4", Index: 5, Owner: "a", Symbol: "AAPL", Currency: "USD", OccurredAt: at(2)},
	}
	got := Partitions(txs)
	require.Len(t, got, 3)

	ids := func(p Partition) []string {
		var out []string
		for _, tx := range p.Transactions {
			out = append(out, tx.ID)
		}
		return out
	}
	assert.Equal(t, PartitionKey{Owner: "a", Symbol: "MSFT", Currency: "USD"}, got[0].Key)
	assert.Equal(t, []string{"m2", "m1"}, ids(got[0]))
	assert.Equal(t, PartitionKey{Owner: "a", Symbol: "AAPL", Currency: "USD"}, got[1].Key)
	// equal times keep the input order.
	assert.Equal(t, []string{"x1", "x2", "x4"}, ids(got[1]))
	assert.Equal(t, PartitionKey{Owner: "b", Symbol: "AAPL", Currency: "USD"}, got[2].Key)
	assert.Equal(t, []string{"x3"}, ids(got[2]))
}

func TestPartitions_Empty(t *testing.T) {
	assert.Empty(t, Partitions(nil))
}

func TestReplayPartition(t *testing.T) {
	at := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	key := PartitionKey{Owner: "a", Symbol: "X", Currency: "USD"}
	p := Partition{Key: key, Transactions: []Transaction{
		{ID: "b1", Operation: OpBuy, Quantity: Q(3), Amount: USD(10), OccurredAt: at(1)},
		{ID: "b2", Operation: OpBuy, Quantity: Q(2), Amount: USD(8), OccurredAt: at(2)},
		{ID: "s1", Operation: OpSell, Quantity: Q(4), Amount: USD(20), OccurredAt: at(3)},
		{ID: "s2", Operation: OpSell, Quantity: Q(2), Amount: USD(12), OccurredAt: at(4)},
	}}
	r := ReplayPartition(p)

	assert.Equal(t, key, r.Key)
	assert.Empty(t, r.Lots)
	require.Len(t, r.Matches, 3)

	assert.Equal(t, "b1", r.Matches[0].LotID)
	assert.Equal(t, "s1", r.Matches[0].SellID)
	assertDecimal(t, "3", r.Matches[0].Quantity.Decimal())
	assertDecimal(t, "10", r.Matches[0].Cost.Decimal())
	assertDecimal(t, "15", r.Matches[0].Proceeds.Decimal())

	assert.Equal(t, "b2", r.Matches[1].LotID)
	assertDecimal(t, "1", r.Matches[1].Quantity.Decimal())
	assertDecimal(t, "4", r.Matches[1].Cost.Decimal())
	assertDecimal(t, "5", r.Matches[1].Proceeds.Decimal())

	// s2 consumes the last unit of b2 and oversells one.
	assert.Equal(t, "s2", r.Matches[2].SellID)
	assertDecimal(t, "1", r.Matches[2].Quantity.Decimal())
	assertDecimal(t, "4", r.Matches[2].Cost.Decimal())
	assertDecimal(t, "6", r.Matches[2].Proceeds.Decimal())
	require.Len(t, r.Oversold, 1)
	assert.Equal(t, "s2", r.Oversold[0].TransactionID)
	assertDecimal(t, "1", r.Oversold[0].Unmatched.Decimal())
}
