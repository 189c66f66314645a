package lotbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/lotbook/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is a loosely typed transaction document, as stored by the host.
type Record map[string]any

// field lists the paths where a transaction attribute may be found in a
// Record, in order of preference. The second names are the ones written by
// the original store.
type field struct {
	name  string
	paths []string
	eval  []func(context.Context, any) (any, error)
}

var (
	fieldID         = newField("id", "$.id")
	fieldOperation  = newField("operationType", "$.operationType", "$.tipoOperacion")
	fieldSymbol     = newField("symbol", "$.symbol", "$.activo")
	fieldCurrency   = newField("currency", "$.currency", "$.moneda")
	fieldQuantity   = newField("quantity", "$.quantity", "$.cantidad")
	fieldUnitPrice  = newField("unitPrice", "$.unitPrice", "$.precioUnitario")
	fieldAmount     = newField("totalAmount", "$.totalAmount", "$.totalOperacion", "$.montoTotal")
	fieldAssetType  = newField("assetType", "$.assetType", "$.tipoActivo")
	fieldAssetName  = newField("assetName", "$.assetName", "$.nombreActivo")
	fieldOwner      = newField("ownerId", "$.ownerId", "$.usuarioId")
	fieldOccurredAt = newField("occurredAt", "$.occurredAt", "$.fecha", "$.timestamp")
	fieldVoided     = newField("voided", "$.voided", "$.anulada")
)

// recordNamespace seeds the ids generated for records that have none.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/lotbook/record"))

func newField(name string, paths ...string) field {
	f := field{name: name, paths: paths}
	for _, p := range paths {
		eval, err := jsonpath.New(p)
		if err != nil {
			panic(fmt.Sprintf("invalid path %q for field %s: %v", p, name, err))
		}
		f.eval = append(f.eval, eval)
	}
	return f
}

// lookup returns the first non-null value found for the field.
func (f field) lookup(r Record) (any, bool) {
	doc := map[string]any(r)
	for _, eval := range f.eval {
		v, err := eval(context.Background(), doc)
		if err != nil || v == nil {
			// jsonpath reports missing keys as errors.
			continue
		}
		return v, true
	}
	return nil, false
}

// Normalize validates and converts raw records into Transactions, keeping only
// those selected by the filter. Malformed records, and voided ones unless the
// filter includes them, are returned as rejections in input order.
func Normalize(records []Record, filter Filter) ([]Transaction, []Rejection, error) {
	if err := filter.Validate(); err != nil {
		return nil, nil, err
	}
	txs := make([]Transaction, 0, len(records))
	var rejected []Rejection
	for i, r := range records {
		tx, err := ParseRecord(i, r)
		if err != nil {
			rejected = append(rejected, rejectionOf(i, tx.ID, err))
			continue
		}
		txs = append(txs, tx)
	}
	kept, voided := selectTransactions(txs, filter)
	rejected = mergeRejections(rejected, voided)
	return kept, rejected, nil
}

// selectTransactions applies the filter and the voided policy to parsed
// transactions. Transactions breaking the engine preconditions are rejected
// whatever the filter, like malformed records.
func selectTransactions(txs []Transaction, filter Filter) (kept []Transaction, rejected []Rejection) {
	kept = make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.check(); err != nil {
			rejected = append(rejected, rejectionOf(tx.Index, tx.ID, err))
			continue
		}
		if !filter.Match(tx) {
			continue
		}
		if tx.Voided && !filter.IncludeVoided {
			rejected = append(rejected, Rejection{ID: tx.ID, Index: tx.Index, Reason: ReasonVoided})
			continue
		}
		kept = append(kept, tx)
	}
	return kept, rejected
}

// mergeRejections merges two lists sorted by input index.
func mergeRejections(a, b []Rejection) []Rejection {
	if len(b) == 0 {
		return a
	}
	out := make([]Rejection, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Index <= b[j].Index {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// recordError carries the rejection reason of a record.
type recordError struct {
	reason string
	err    error
}

func (e *recordError) Error() string {
	if e.err == nil {
		return e.reason
	}
	return e.reason + ": " + e.err.Error()
}

func (e *recordError) Unwrap() error { return e.err }

func reject(reason string, err error) error { return &recordError{reason: reason, err: err} }

func rejectionOf(index int, id string, err error) Rejection {
	rej := Rejection{ID: id, Index: index, Reason: err.Error()}
	var re *recordError
	if errors.As(err, &re) {
		rej.Reason = re.reason
		if re.err != nil {
			rej.Detail = re.err.Error()
		}
	}
	return rej
}

// ParseRecord converts a single record into a Transaction. index is the
// position of the record in its input list. On error the returned Transaction
// carries at least the record ID.
func ParseRecord(index int, r Record) (Transaction, error) {
	tx := Transaction{Index: index, ID: recordID(r)}

	v, _ := fieldOperation.lookup(r)
	op, err := ParseOperationType(stringOf(v))
	if err != nil {
		return tx, reject(ReasonOperation, err)
	}
	tx.Operation = op

	v, _ = fieldSymbol.lookup(r)
	tx.Symbol = strings.ToUpper(strings.TrimSpace(stringOf(v)))
	if tx.Symbol == "" {
		return tx, reject(ReasonSymbol, nil)
	}

	v, _ = fieldCurrency.lookup(r)
	tx.Currency = strings.ToUpper(strings.TrimSpace(stringOf(v)))
	if tx.Currency == "" {
		return tx, reject(ReasonCurrency, nil)
	}

	v, ok := fieldQuantity.lookup(r)
	if !ok {
		return tx, reject(ReasonQuantity, errors.New("missing"))
	}
	qty, err := decimalOf(v)
	if err != nil {
		return tx, reject(ReasonQuantity, err)
	}
	if !qty.IsPositive() {
		return tx, reject(ReasonQuantity, fmt.Errorf("got %s", qty))
	}
	tx.Quantity = Q(qty)

	var price decimal.Decimal
	if v, ok := fieldUnitPrice.lookup(r); ok {
		// unit price is informational, an unusable value is derived below.
		price, _ = decimalOf(v)
	}

	var amount decimal.Decimal
	if v, ok := fieldAmount.lookup(r); ok {
		amount, err = decimalOf(v)
		if err != nil {
			return tx, reject(ReasonAmount, err)
		}
	} else if price.IsPositive() {
		amount = price.Mul(qty)
	} else {
		return tx, reject(ReasonAmount, errors.New("missing"))
	}
	if !amount.IsPositive() {
		return tx, reject(ReasonAmount, fmt.Errorf("got %s", amount))
	}
	tx.Amount = M(amount, tx.Currency)
	if !price.IsPositive() {
		price = amount.Div(qty)
	}
	tx.UnitPrice = M(price, tx.Currency)

	v, ok = fieldOccurredAt.lookup(r)
	if !ok {
		return tx, reject(ReasonOccurredAt, nil)
	}
	tx.OccurredAt, err = timeOf(v)
	if err != nil {
		return tx, reject(ReasonOccurredAt, err)
	}

	if v, ok := fieldVoided.lookup(r); ok {
		tx.Voided = boolOf(v)
	}
	v, _ = fieldAssetType.lookup(r)
	tx.AssetType = strings.TrimSpace(stringOf(v))
	v, _ = fieldAssetName.lookup(r)
	tx.AssetName = strings.TrimSpace(stringOf(v))
	v, _ = fieldOwner.lookup(r)
	tx.Owner = strings.TrimSpace(stringOf(v))
	return tx, nil
}

// check verifies the invariants of a transaction entering the engine.
// Transactions built by ParseRecord always pass.
func (t Transaction) check() error {
	switch {
	case t.Operation != OpBuy && t.Operation != OpSell:
		return reject(ReasonOperation, fmt.Errorf("got %q", t.Operation))
	case t.Symbol == "":
		return reject(ReasonSymbol, nil)
	case t.Currency == "":
		return reject(ReasonCurrency, nil)
	case !t.Quantity.IsPositive():
		return reject(ReasonQuantity, fmt.Errorf("got %s", t.Quantity))
	case !t.Amount.IsPositive():
		return reject(ReasonAmount, fmt.Errorf("got %s", t.Amount.Decimal()))
	case t.Amount.Currency() != "" && t.Amount.Currency() != t.Currency:
		return reject(ReasonCurrency, fmt.Errorf("amount in %s", t.Amount.Currency()))
	case t.UnitPrice.Currency() != "" && t.UnitPrice.Currency() != t.Currency:
		return reject(ReasonCurrency, fmt.Errorf("unit price in %s", t.UnitPrice.Currency()))
	case t.OccurredAt.IsZero():
		return reject(ReasonOccurredAt, nil)
	}
	return nil
}

// recordID returns the record id, or a UUID derived from the record content
// so that repeated runs over the same input name it identically.
func recordID(r Record) string {
	if v, ok := fieldID.lookup(r); ok {
		if id := strings.TrimSpace(stringOf(v)); id != "" {
			return id
		}
	}
	// encoding/json sorts map keys, the encoding is canonical.
	content, err := json.Marshal(map[string]any(r))
	if err != nil {
		content = []byte(fmt.Sprint(map[string]any(r)))
	}
	return uuid.NewSHA1(recordNamespace, content).String()
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// decimalOf reads an exact decimal from any numeric representation. Strings
// may use a comma as decimal separator.
func decimalOf(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		if s == "" {
			return decimal.Zero, errors.New("empty number")
		}
		return decimal.NewFromString(s)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", n)
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		if f := float64(n); math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", n)
		}
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case uint64:
		return decimal.NewFromUint64(n), nil
	default:
		return decimal.Zero, fmt.Errorf("not a number: %T", v)
	}
}

// timeOf reads an event time. Accepted forms are time.Time, date.Date,
// RFC 3339 strings, lenient YYYY-MM-DD strings, timestamp objects with
// seconds and nanoseconds, and numbers holding Unix milliseconds.
func timeOf(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, errors.New("zero time")
		}
		return t, nil
	case date.Date:
		if t.IsZero() {
			return time.Time{}, errors.New("zero date")
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		d, err := date.Parse(s)
		if err != nil {
			return time.Time{}, err
		}
		return timeOf(d)
	case map[string]any:
		secs, ok := t["seconds"]
		if !ok {
			secs, ok = t["_seconds"]
		}
		if !ok {
			return time.Time{}, errors.New("timestamp object without seconds")
		}
		s, err := decimalOf(secs)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp seconds: %w", err)
		}
		var nanos decimal.Decimal
		if n, ok := t["nanoseconds"]; ok {
			nanos, _ = decimalOf(n)
		} else if n, ok := t["_nanoseconds"]; ok {
			nanos, _ = decimalOf(n)
		}
		return time.Unix(s.IntPart(), nanos.IntPart()).UTC(), nil
	case json.Number, float64, int, int64:
		ms, err := decimalOf(t)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms.IntPart()).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func boolOf(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && ok
	default:
		return false
	}
}
