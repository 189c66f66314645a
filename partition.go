package lotbook

import (
	"slices"
)

// Partition is the chronological list of transactions of one ledger.
type Partition struct {
	Key          PartitionKey
	Transactions []Transaction
}

// Partitions groups transactions by partition key. Partitions are listed in
// order of first appearance of their key, and each partition is sorted by
// occurrence time. The sort is stable, meaning transactions at the same time
// keep their input order.
func Partitions(txs []Transaction) []Partition {
	index := make(map[PartitionKey]int)
	var partitions []Partition
	for _, tx := range txs {
		key := tx.Key()
		i, ok := index[key]
		if !ok {
			i = len(partitions)
			index[key] = i
			partitions = append(partitions, Partition{Key: key})
		}
		partitions[i].Transactions = append(partitions[i].Transactions, tx)
	}
	for i := range partitions {
		p := partitions[i].Transactions
		slices.SortStableFunc(p, func(a, b Transaction) int {
			if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
				return c
			}
			// Upstream order may differ from the input order for equal times.
			return a.Index - b.Index
		})
	}
	return partitions
}
