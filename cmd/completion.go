package cmd

import (
	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
	"github.com/etnz/lotbook/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	predictLedger = predict.Files("*.jsonl")
	predictPeriod = predict.Set(date.Periods())
	predictOp     = predict.Set{"buy", "sell"}
)

// predictTopic completes documentation topic names.
var predictTopic = complete.PredictFunc(func(prefix string) []string {
	topics, _ := docs.GetAllTopics()
	return topics
})

// filterPredictors mirrors filterFlags.
func filterPredictors() map[string]complete.Predictor {
	return map[string]complete.Predictor{
		"from":       predict.Something,
		"to":         predict.Something,
		"period":     predictPeriod,
		"owner":      predict.Something,
		"symbol":     predict.Something,
		"currency":   predict.Something,
		"asset-type": predict.Something,
		"op":         predictOp,
		"voided":     predict.Nothing,
	}
}

func with(flags map[string]complete.Predictor, extra map[string]complete.Predictor) map[string]complete.Predictor {
	for k, v := range extra {
		flags[k] = v
	}
	return flags
}

// Completion describes the command line for shell completion. Install it with
// COMP_INSTALL=1 lots.
func Completion() *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":      predict.Files("*.toml"),
			"ledger-file": predictLedger,
			"log-level":   predict.Set{"debug", "info", "warn", "error"},
		},
		Sub: map[string]*complete.Command{
			"report": {Flags: with(filterPredictors(), map[string]complete.Predictor{
				"sort":  predict.Set(lotbook.SortOrders()),
				"json":  predict.Nothing,
				"exact": predict.Nothing,
			})},
			"positions": {Flags: with(filterPredictors(), map[string]complete.Predictor{
				"json": predict.Nothing,
			})},
			"check": {Flags: filterPredictors()},
			"symbols": {Flags: map[string]complete.Predictor{
				"owner": predict.Something,
			}},
			"serve": {Flags: map[string]complete.Predictor{
				"addr": predict.Something,
			}},
			"topic":    {Args: predictTopic},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
