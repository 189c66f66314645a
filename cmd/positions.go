package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	filters filterFlags
	json    bool
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "open positions and their cost basis" }
func (*positionsCmd) Usage() string {
	return `lots positions [-to <date>] [-owner <id>] [-symbol <symbol>] [-currency <code>] [-json]

  Lists the quantities still held after matching every sell, with the cost
  basis of the remaining lots.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	c.filters.SetFlags(f)
	f.BoolVar(&c.json, "json", false, "Print the positions as JSON")
}

func (c *positionsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	report, status := computeReport(cfg, &c.filters, lotbook.WithLogger(logger))
	if status != subcommands.ExitSuccess {
		return status
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.OpenPositions); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding positions: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PositionsMarkdown(report))
	return subcommands.ExitSuccess
}
