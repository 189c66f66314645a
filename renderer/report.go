package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
)

// ReportMarkdown renders the full report: summary, realized gains per asset,
// open positions and diagnostics.
func ReportMarkdown(r *lotbook.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Realized Gains Report, %s\n\n", rangeTitle(r.Filter.Range()))
	if s := filterLine(r.Filter); s != "" {
		fmt.Fprintf(&b, "Filters: %s\n\n", s)
	}

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| Currency | Invested | Recovered | Net P&L | Return | Open Positions |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|")
	for _, s := range r.Currencies {
		summaryRow(&b, s.Currency, s)
	}
	if len(r.Currencies) > 1 {
		summaryRow(&b, "**Total**", r.Summary)
	}
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintf(w, "## Realized Gains per Asset\n\nSorted by %s.\n\n", r.Sort)
		fmt.Fprintln(w, "| Asset | Currency | Closed Qty | Avg Buy | Avg Sell | Invested | Recovered | Net P&L | Return |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|---:|---:|---:|")
		for _, a := range r.ByAsset {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				assetLabel(a.Symbol, a.AssetName),
				a.Currency,
				a.ClosedQuantity,
				a.AvgBuyPrice(),
				a.AvgSellPrice(),
				a.TotalInvested,
				a.TotalRecovered,
				a.NetPnl().SignedString(),
				a.PnlPct().SignedString(),
			)
		}
		fmt.Fprintln(w)
		return len(r.ByAsset) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Open Positions\n\n")
		positionsTable(w, r.OpenPositions)
		return len(r.OpenPositions) > 0
	})

	if n := r.Diagnostics(); n > 0 {
		fmt.Fprintf(&b, "%d record(s) were rejected and %d sell(s) exceeded the open lots. Run `lots check` for details.\n", len(r.Rejected), len(r.Oversold))
	}
	return b.String()
}

// PositionsMarkdown renders the open positions only.
func PositionsMarkdown(r *lotbook.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Open Positions, %s\n\n", rangeTitle(r.Filter.Range()))
	if len(r.OpenPositions) == 0 {
		fmt.Fprintln(&b, "No open position.")
		return b.String()
	}
	positionsTable(&b, r.OpenPositions)
	return b.String()
}

// DiagnosticsMarkdown renders the rejected records and the oversold sells.
func DiagnosticsMarkdown(r *lotbook.Report) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Ledger Check\n\n")
	if r.Diagnostics() == 0 {
		fmt.Fprintln(&b, "No issue found.")
		return b.String()
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Rejected Records\n\n")
		fmt.Fprintln(w, "| Line | ID | Reason | Detail |")
		fmt.Fprintln(w, "|---:|:---|:---|:---|")
		for _, rej := range r.Rejected {
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n", rej.Index+1, rej.ID, rej.Reason, escape(rej.Detail))
		}
		fmt.Fprintln(w)
		return len(r.Rejected) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Oversold\n\n")
		fmt.Fprintln(w, "| Date | Owner | Asset | Currency | Transaction | Unmatched |")
		fmt.Fprintln(w, "|:---|:---|:---|:---|:---|---:|")
		for _, o := range r.Oversold {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
				date.FromTime(o.OccurredAt),
				o.Key.Owner,
				o.Key.Symbol,
				o.Key.Currency,
				o.TransactionID,
				o.Unmatched,
			)
		}
		fmt.Fprintln(w)
		return len(r.Oversold) > 0
	})
	return b.String()
}

func positionsTable(w io.Writer, positions []lotbook.OpenPosition) {
	fmt.Fprintln(w, "| Owner | Asset | Currency | Lots | Quantity | Avg Buy | Invested |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|")
	for _, p := range positions {
		fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %s |\n",
			p.Owner,
			assetLabel(p.Symbol, p.AssetName),
			p.Currency,
			p.Lots,
			p.RemainingQuantity,
			p.AvgBuyPrice(),
			p.InvestedAmount,
		)
	}
	fmt.Fprintln(w)
}

func summaryRow(w io.Writer, label string, s lotbook.Summary) {
	fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %d |\n",
		label,
		s.TotalInvested,
		s.TotalRecovered,
		s.NetPnl().SignedString(),
		s.PnlPct().SignedString(),
		s.OpenPositionCount,
	)
}

func assetLabel(symbol, name string) string {
	if name == "" || strings.EqualFold(name, symbol) {
		return symbol
	}
	return fmt.Sprintf("%s (%s)", symbol, escape(name))
}

// rangeTitle names the range, by its period when it is aligned on one.
func rangeTitle(r date.Range) string {
	switch {
	case r.IsOpen():
		return "all time"
	case r.From.IsZero():
		return "until " + r.To.String()
	case r.To.IsZero():
		return "since " + r.From.String()
	}
	if _, ok := r.Period(); ok {
		return r.Identifier()
	}
	return fmt.Sprintf("from %s to %s", r.From, r.To)
}

func filterLine(f lotbook.Filter) string {
	var parts []string
	add := func(name, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", name, value))
		}
	}
	add("owner", f.Owner)
	add("symbol", f.Symbol)
	add("currency", f.Currency)
	add("asset type", f.AssetType)
	add("operation", f.Operation)
	if f.IncludeVoided {
		parts = append(parts, "voided included")
	}
	return strings.Join(parts, ", ")
}

// escape keeps table cells on one column.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
