package cmd

import (
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
)

// filterFlags holds the flags shared by every command computing a report.
type filterFlags struct {
	from      string
	to        string
	period    string
	owner     string
	symbol    string
	currency  string
	assetType string
	op        string
	voided    bool
}

func (ff *filterFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&ff.from, "from", "", "First day of the reporting range (YYYY-MM-DD). Open when empty.")
	f.StringVar(&ff.to, "to", "", "Last day of the reporting range (YYYY-MM-DD). Open when empty, today with -period.")
	f.StringVar(&ff.period, "period", "", "Calendar period containing -to, or today (day, week, month, quarter, year)")
	f.StringVar(&ff.owner, "owner", "", "Only report on this owner")
	f.StringVar(&ff.symbol, "symbol", "", "Only report on this asset symbol")
	f.StringVar(&ff.currency, "currency", "", "Only report on this settlement currency")
	f.StringVar(&ff.assetType, "asset-type", "", "Only report on this asset type")
	f.StringVar(&ff.op, "op", "", "Only keep this operation type (buy, sell)")
	f.BoolVar(&ff.voided, "voided", false, "Include voided records")
}

// Filter builds the engine filter from the flags. cfg provides defaults.
func (ff *filterFlags) Filter(cfg *Config) (lotbook.Filter, error) {
	filter := lotbook.Filter{
		Owner:         ff.owner,
		Symbol:        ff.symbol,
		Currency:      ff.currency,
		AssetType:     ff.assetType,
		Operation:     ff.op,
		IncludeVoided: ff.voided || cfg.IncludeVoided,
	}

	var err error
	if ff.to != "" {
		if filter.To, err = date.Parse(ff.to); err != nil {
			return filter, fmt.Errorf("parsing -to: %w", err)
		}
	}

	if ff.period != "" {
		if ff.from != "" {
			return filter, errors.New("-from and -period flags cannot be used together")
		}
		p, err := date.ParsePeriod(ff.period)
		if err != nil {
			return filter, fmt.Errorf("parsing -period: %w", err)
		}
		end := filter.To
		if end.IsZero() {
			end = date.Today()
		}
		r := date.NewRange(end, p)
		filter.From, filter.To = r.From, r.To
		return filter, nil
	}

	if ff.from != "" {
		if filter.From, err = date.Parse(ff.from); err != nil {
			return filter, fmt.Errorf("parsing -from: %w", err)
		}
	}
	return filter, nil
}

// sortOrder resolves the -sort flag, falling back to the configured order.
func sortOrder(flagValue string, cfg *Config) (lotbook.SortOrder, error) {
	if flagValue == "" {
		flagValue = cfg.Sort
	}
	return lotbook.ParseSortOrder(flagValue)
}
