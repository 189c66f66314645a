package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	filters filterFlags
	sort    string
	json    bool
	exact   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "realized gains per asset and open positions" }
func (*reportCmd) Usage() string {
	return `lots report [-from <date>] [-to <date>] [-period <period>] [-owner <id>] [-symbol <symbol>]
             [-currency <code>] [-asset-type <type>] [-op buy|sell] [-voided]
             [-sort <order>] [-json] [-exact]

  Matches sells against the oldest open buys of the same owner, symbol and
  currency, and reports realized gains per asset, open positions and totals.

  Sort orders: discovery (default), pnl-pct, pnl, invested, symbol.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.filters.SetFlags(f)
	f.StringVar(&c.sort, "sort", "", "Order of the per-asset rows (discovery, pnl-pct, pnl, invested, symbol)")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
	f.BoolVar(&c.exact, "exact", false, "Do not round amounts in the JSON output")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	order, err := sortOrder(c.sort, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing sort order: %v\n", err)
		return subcommands.ExitUsageError
	}

	report, status := computeReport(cfg, &c.filters,
		lotbook.WithSort(order),
		lotbook.WithExact(c.exact),
		lotbook.WithLogger(logger),
	)
	if status != subcommands.ExitSuccess {
		return status
	}

	if c.json {
		if err := lotbook.EncodeReport(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ReportMarkdown(report))
	return subcommands.ExitSuccess
}

// computeReport loads the ledger file and runs the engine with the filter
// described by flags.
func computeReport(cfg *Config, flags *filterFlags, opts ...lotbook.Option) (*lotbook.Report, subcommands.ExitStatus) {
	filter, err := flags.Filter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing filters: %v\n", err)
		return nil, subcommands.ExitUsageError
	}

	records, err := DecodeRecords(cfg.LedgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger %q: %v\n", cfg.LedgerFile, err)
		return nil, subcommands.ExitFailure
	}

	report, err := lotbook.Compute(records, filter, opts...)
	if errors.Is(err, lotbook.ErrInvalidFilter) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing report: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return report, subcommands.ExitSuccess
}
