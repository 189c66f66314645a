package lotbook

import "time"

// Reasons for rejecting a record.
const (
	ReasonOperation  = "unknown operation type"
	ReasonSymbol     = "symbol is empty"
	ReasonCurrency   = "currency is empty or inconsistent"
	ReasonQuantity   = "quantity must be a positive number"
	ReasonAmount     = "total amount must be a positive number"
	ReasonOccurredAt = "occurredAt is missing or unparseable"
	ReasonVoided     = "record is voided"
)

// Rejection reports a record excluded by the normalizer. It never aborts a run.
type Rejection struct {
	ID     string
	Index  int // position of the record in the input list
	Reason string
	Detail string // parser message, when any
}

// Oversell reports a sell that consumed more than the lots held in its
// partition. The unmatched remainder is excluded from realized accounting.
type Oversell struct {
	Key           PartitionKey
	TransactionID string
	OccurredAt    time.Time
	Unmatched     Quantity
}

// Diagnostics returns the number of rejections and oversells of the report.
func (r *Report) Diagnostics() int { return len(r.Rejected) + len(r.Oversold) }
