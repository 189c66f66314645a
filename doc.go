// Package lotbook computes realized gains and open positions out of a log of
// buy and sell operations, matching sells against buys first in first out.
//
// The computation is a pure function of a list of records and a Filter:
//   - Records are normalized into Transactions. Malformed or voided records
//     are rejected, never fatal.
//   - Transactions are partitioned per (owner, symbol, currency) and replayed
//     in chronological order against a queue of lots.
//   - Realized matches are aggregated per (symbol, currency) across owners,
//     and the surviving lots of each partition make an open position.
//
// All arithmetic is exact decimal. Amounts are only rounded when a Report is
// formatted.
//
// This package serves as the foundation of the `lots` command-line tool.
package lotbook
