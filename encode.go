package lotbook

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1 << 20

// DecodeRecords reads a JSONL stream, one record per line. Blank lines are
// skipped. Numbers are kept as json.Number so that amounts stay exact.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", lineno, string(line), err)
		}
		if rec == nil {
			return nil, fmt.Errorf("format error on line %d: not a JSON object", lineno)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading records: %w", err)
	}
	return records, nil
}

// EncodeRecord writes a single record to w followed by a newline.
func EncodeRecord(w io.Writer, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("could not marshal record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("could not write record: %w", err)
	}
	return nil
}

// EncodeReport writes the report as an indented JSON document.
func EncodeReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	return nil
}

// numberFormat renders amounts as JSON strings. Money is rounded to the minor
// unit of its currency and percents to two places unless exact is set.
// Quantities are never rounded.
type numberFormat struct {
	exact bool
}

func (f numberFormat) money(m Money) string {
	if f.exact {
		return m.Decimal().String()
	}
	return m.Decimal().StringFixed(m.Fraction())
}

func (f numberFormat) percent(p Percent) string {
	if f.exact {
		return p.Decimal().String()
	}
	return p.Decimal().StringFixed(2)
}

func (f numberFormat) summary(s Summary) *jsonObjectWriter {
	var w jsonObjectWriter
	w.Optional("currency", s.Currency)
	w.Append("totalInvested", f.money(s.TotalInvested))
	w.Append("totalRecovered", f.money(s.TotalRecovered))
	w.Append("netPnl", f.money(s.NetPnl()))
	w.Append("pnlPct", f.percent(s.PnlPct()))
	w.Append("openPositionCount", s.OpenPositionCount)
	return &w
}

func (f numberFormat) asset(a AssetAggregate) *jsonObjectWriter {
	var w jsonObjectWriter
	w.Append("symbol", a.Symbol)
	w.Append("currency", a.Currency)
	w.Optional("assetType", a.AssetType)
	w.Optional("assetName", a.AssetName)
	w.Append("closedQuantity", a.ClosedQuantity.String())
	w.Append("totalInvested", f.money(a.TotalInvested))
	w.Append("totalRecovered", f.money(a.TotalRecovered))
	w.Append("netPnl", f.money(a.NetPnl()))
	w.Append("pnlPct", f.percent(a.PnlPct()))
	w.Append("avgBuyPrice", f.money(a.AvgBuyPrice()))
	w.Append("avgSellPrice", f.money(a.AvgSellPrice()))
	return &w
}

func (f numberFormat) position(p OpenPosition) *jsonObjectWriter {
	var w jsonObjectWriter
	w.Append("ownerId", p.Owner)
	w.Append("symbol", p.Symbol)
	w.Append("currency", p.Currency)
	w.Optional("assetType", p.AssetType)
	w.Optional("assetName", p.AssetName)
	w.Append("lots", p.Lots)
	w.Append("remainingQuantity", p.RemainingQuantity.String())
	w.Append("investedAmount", f.money(p.InvestedAmount))
	w.Append("avgBuyPrice", f.money(p.AvgBuyPrice()))
	return &w
}

func (f numberFormat) activity(a ActivitySummary) *jsonObjectWriter {
	var w jsonObjectWriter
	w.Append("currency", a.Currency)
	w.Append("count", a.Count)
	w.Append("bought", f.money(a.Bought))
	w.Append("sold", f.money(a.Sold))
	w.Append("net", f.money(a.Net()))
	w.Append("implicitFees", f.money(a.Fees))
	return &w
}

func rows[T any](items []T, row func(T) *jsonObjectWriter) []*jsonObjectWriter {
	out := make([]*jsonObjectWriter, 0, len(items))
	for _, it := range items {
		out = append(out, row(it))
	}
	return out
}

// MarshalJSON writes the report with a stable field order. Amounts are
// decimal strings, never floats.
func (r *Report) MarshalJSON() ([]byte, error) {
	f := numberFormat{exact: r.Exact}
	var w jsonObjectWriter
	w.Append("filter", r.Filter)
	w.Append("sort", r.Sort.String())
	w.Append("globalSummary", f.summary(r.Summary))
	w.Append("currencies", rows(r.Currencies, f.summary))
	w.Append("byAsset", rows(r.ByAsset, f.asset))
	w.Append("openPositions", rows(r.OpenPositions, f.position))
	w.Append("activity", rows(r.Activity, f.activity))
	w.Append("rejected", nonNil(r.Rejected))
	w.Append("oversold", nonNil(r.Oversold))
	return w.MarshalJSON()
}

// MarshalJSON writes the row with amounts rounded to the currency minor unit.
func (a AssetAggregate) MarshalJSON() ([]byte, error) { return numberFormat{}.asset(a).MarshalJSON() }

// MarshalJSON writes the row with amounts rounded to the currency minor unit.
func (p OpenPosition) MarshalJSON() ([]byte, error) { return numberFormat{}.position(p).MarshalJSON() }

func (s Summary) MarshalJSON() ([]byte, error) { return numberFormat{}.summary(s).MarshalJSON() }
func (a ActivitySummary) MarshalJSON() ([]byte, error) {
	return numberFormat{}.activity(a).MarshalJSON()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r Rejection) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", r.ID)
	w.Append("index", r.Index)
	w.Append("reason", r.Reason)
	w.Optional("detail", r.Detail)
	return w.MarshalJSON()
}

func (o Oversell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(o.Key)
	w.Append("transactionId", o.TransactionID)
	w.Append("occurredAt", o.OccurredAt.UTC().Format(time.RFC3339))
	w.Append("unmatched", o.Unmatched.String())
	return w.MarshalJSON()
}
