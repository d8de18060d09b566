// Package importer wires report aggregation to a measure sink.
package importer

import (
	"log/slog"

	"github.com/AndreyAkinshin/testimport/internal/aggregate"
	"github.com/AndreyAkinshin/testimport/internal/measure"
	"github.com/AndreyAkinshin/testimport/internal/testparser"
)

// Importer runs a single import: aggregate the configured reports and save
// the resulting measures.
type Importer struct {
	Aggregator *aggregate.Aggregator
	Provider   aggregate.FileProvider
	Sink       measure.Sink
	Logger     *slog.Logger
}

// Result describes the outcome of Run.
type Result struct {
	// Skipped is true when no report pattern is configured.
	Skipped  bool
	Results  testparser.UnitTestResults
	Measures []measure.Measure
}

// Run performs the import. Nothing is written to the sink when aggregation
// fails.
func (i *Importer) Run() (Result, error) {
	logger := i.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !i.Aggregator.HasUnitTestResultsProperty() {
		logger.Debug("No unit test results property. Skip import")
		return Result{Skipped: true}, nil
	}

	results, err := i.Aggregator.Aggregate(i.Provider, testparser.UnitTestResults{})
	if err != nil {
		return Result{}, err
	}

	measures := measure.FromResults(results)
	for _, m := range measures {
		if err := i.Sink.Save(m); err != nil {
			return Result{}, err
		}
	}
	if err := i.Sink.Flush(); err != nil {
		return Result{}, err
	}

	return Result{Results: results, Measures: measures}, nil
}
