package lotbook

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// OperationType is a typed string for identifying ledger operations.
type OperationType string

// Operation types accepted by the engine.
const (
	OpBuy  OperationType = "buy"
	OpSell OperationType = "sell"
)

// ParseOperationType parses an operation name. The original store's Spanish
// names ("compra", "venta") are accepted as aliases.
func ParseOperationType(s string) (OperationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "compra":
		return OpBuy, nil
	case "sell", "venta":
		return OpSell, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", s)
	}
}

// PartitionKey identifies an independent ledger: lots bought by one owner, for
// one symbol, settled in one currency, can only be consumed by sells sharing
// the same key.
type PartitionKey struct {
	Owner    string `json:"ownerId"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

func (k PartitionKey) String() string {
	return k.Owner + "/" + k.Symbol + "/" + k.Currency
}

// AssetKey returns the (symbol, currency) pair used for aggregation across owners.
func (k PartitionKey) AssetKey() AssetKey {
	return AssetKey{Symbol: k.Symbol, Currency: k.Currency}
}

// AssetKey identifies an asset row of the report.
type AssetKey struct {
	Symbol   string
	Currency string
}

func (k AssetKey) String() string { return k.Symbol + "/" + k.Currency }

// Transaction is a validated buy or sell operation.
//
// Amount is the authoritative economic value of the operation, as written on
// the receipt. UnitPrice is informational.
type Transaction struct {
	ID         string
	Index      int // position in the raw input, used to break ordering ties
	Operation  OperationType
	Symbol     string
	Currency   string
	Quantity   Quantity
	UnitPrice  Money
	Amount     Money
	AssetType  string
	AssetName  string
	Owner      string
	OccurredAt time.Time
	Voided     bool
}

// Key returns the partition key of the transaction.
func (t Transaction) Key() PartitionKey {
	return PartitionKey{Owner: t.Owner, Symbol: t.Symbol, Currency: t.Currency}
}

// ImplicitFees returns the difference between the receipt amount and the
// theoretical quantity × unit price, i.e. fees, spread and rounding.
func (t Transaction) ImplicitFees() Money {
	return t.Amount.Sub(t.UnitPrice.Mul(t.Quantity))
}

// Symbols returns the distinct symbols of txs in alphabetical order.
func Symbols(txs []Transaction) []string {
	var symbols []string
	for _, tx := range txs {
		symbols = append(symbols, tx.Symbol)
	}
	slices.Sort(symbols)
	return slices.Compact(symbols)
}

// UnitAmount returns the amount per unit, cost for a buy and proceeds for a sell.
func (t Transaction) UnitAmount() Money {
	return t.Amount.Div(t.Quantity)
}
