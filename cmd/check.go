package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
)

type checkCmd struct {
	filters filterFlags
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "list rejected records and oversold sells" }
func (*checkCmd) Usage() string {
	return `lots check [filters]

  Reports the records that could not be used (malformed or voided) and the
  sells that exceed the open lots of their owner, symbol and currency.

  Exits with status 1 when any issue is found.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) { c.filters.SetFlags(f) }

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	report, status := computeReport(cfg, &c.filters, lotbook.WithLogger(logger))
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.DiagnosticsMarkdown(report))
	if report.Diagnostics() > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
