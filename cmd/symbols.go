package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
)

type symbolsCmd struct {
	owner string
}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "list the symbols traded in the ledger" }
func (*symbolsCmd) Usage() string {
	return `lots symbols [-owner <id>]

  Prints one symbol per line, in alphabetical order.
`
}

func (c *symbolsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Only list the symbols of this owner")
}

func (c *symbolsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	records, err := DecodeRecords(cfg.LedgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger %q: %v\n", cfg.LedgerFile, err)
		return subcommands.ExitFailure
	}
	txs, _, err := lotbook.Normalize(records, lotbook.Filter{Owner: c.owner, IncludeVoided: cfg.IncludeVoided})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range lotbook.Symbols(txs) {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}
