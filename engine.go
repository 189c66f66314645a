package lotbook

import (
	"github.com/rs/zerolog"
)

// Option configures a computation.
type Option func(*options)

type options struct {
	sort   SortOrder
	exact  bool
	logger zerolog.Logger
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSort sets the order of the per-asset rows.
func WithSort(s SortOrder) Option { return func(o *options) { o.sort = s } }

// WithExact makes the JSON encoding of the report keep full precision.
func WithExact(exact bool) Option { return func(o *options) { o.exact = exact } }

// WithLogger sets the logger receiving diagnostics. Nothing is logged by default.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// Compute normalizes records, replays the FIFO ledger of every partition
// selected by filter and returns the resulting report.
//
// An invalid filter is reported before any record is read, as a *FilterError
// wrapping ErrInvalidFilter. Malformed records and oversells never fail the
// computation, they are listed in the report.
func Compute(records []Record, filter Filter, opts ...Option) (*Report, error) {
	o := newOptions(opts)
	txs, rejected, err := Normalize(records, filter)
	if err != nil {
		return nil, err
	}
	return compute(txs, rejected, filter, o), nil
}

// ComputeTransactions is Compute for transactions that are already
// normalized. The filter and the voided policy still apply, and transactions
// that ParseRecord could not have produced are rejected.
func ComputeTransactions(txs []Transaction, filter Filter, opts ...Option) (*Report, error) {
	o := newOptions(opts)
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	kept, rejected := selectTransactions(txs, filter)
	return compute(kept, rejected, filter, o), nil
}

func compute(txs []Transaction, rejected []Rejection, filter Filter, o options) *Report {
	log := o.logger
	for _, rej := range rejected {
		log.Debug().Str("id", rej.ID).Int("index", rej.Index).Str("detail", rej.Detail).Msg(rej.Reason)
	}

	red := newReducer()
	for _, tx := range txs {
		red.addTransaction(tx)
	}
	var oversold []Oversell
	for _, p := range Partitions(txs) {
		replay := ReplayPartition(p)
		for _, m := range replay.Matches {
			red.addMatch(m)
		}
		red.addLots(p.Key, replay.Lots)
		for _, ov := range replay.Oversold {
			log.Warn().
				Stringer("partition", ov.Key).
				Str("transaction", ov.TransactionID).
				Stringer("unmatched", ov.Unmatched).
				Msg("sell exceeds open lots, remainder ignored")
		}
		oversold = append(oversold, replay.Oversold...)
	}

	r := red.assemble(o.sort)
	r.Filter = filter
	r.Exact = o.exact
	r.Rejected = rejected
	r.Oversold = oversold
	log.Debug().
		Int("transactions", len(txs)).
		Int("assets", len(r.ByAsset)).
		Int("positions", len(r.OpenPositions)).
		Int("rejected", len(r.Rejected)).
		Int("oversold", len(r.Oversold)).
		Msg("report computed")
	return r
}
