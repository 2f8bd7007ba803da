package pipeline

import (
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"

	"github.com/stopcast/stopcast/pkg/dataset"
	"github.com/stopcast/stopcast/pkg/evaluate"
	"github.com/stopcast/stopcast/pkg/features"
	"github.com/stopcast/stopcast/pkg/regressor"
)

// StopResult is the outcome of one stop's pipeline. Err is set when that
// stop's evaluation failed; sibling stops are unaffected.
type StopResult struct {
	StopID   int
	StopName string

	Result evaluate.Result
	Err    error
}

// RunAll evaluates every stop column of the table independently: each stop
// gets its own feature sequence and a brand-new regressor, so no model state
// leaks across stops. Stops run on a bounded worker pool; because the
// per-stop pipelines share nothing, the worker count cannot change any
// stop's output.
func RunAll(table *dataset.Table, profile Profile) []StopResult {
	p := pool.NewWithResults[StopResult]()
	p.WithMaxGoroutines(profile.Workers)

	for stopIndex, stopName := range table.StopNames {
		// Per-iteration copies: the go directive is below 1.22, so range
		// variables are shared across iterations and must not be captured
		// directly by the goroutine closure.
		stopIndex, stopName := stopIndex, stopName
		p.Go(func() StopResult {
			return runStop(table, stopIndex, stopName, profile)
		})
	}

	results := p.Wait()

	// Pool results arrive in completion order, put them back into column
	// order.
	slices.SortFunc(results, func(a StopResult, b StopResult) int {
		return a.StopID - b.StopID
	})

	return results
}

func runStop(table *dataset.Table, stopIndex int, stopName string, profile Profile) StopResult {
	stopResult := StopResult{
		StopID:   stopIndex,
		StopName: stopName,
	}

	stopLogger := log.With().Int("stop_id", stopIndex).Str("stop", stopName).Logger()

	instances := features.ForStop(table, stopIndex)
	if len(instances) == 0 {
		stopLogger.Warn().Msg("Stop has no usable observations")
		return stopResult
	}

	model, err := newRegressor(profile)
	if err != nil {
		stopResult.Err = err
		stopLogger.Error().Err(err).Msg("Failed to create regressor")
		return stopResult
	}

	stopResult.Result, stopResult.Err = evaluate.Run(instances, model, profile.Limit)
	if stopResult.Err != nil {
		stopLogger.Error().Err(stopResult.Err).Msg("Stop evaluation failed")
		return stopResult
	}

	if mae, ok := stopResult.Result.MAE(); ok {
		stopLogger.Info().
			Int("instances", len(stopResult.Result.Records)).
			Float64("mae", mae).
			Msg("Stop evaluation complete")
	}

	return stopResult
}

func newRegressor(profile Profile) (regressor.Regressor, error) {
	switch profile.Model {
	case ModelEnsemble:
		return regressor.NewEnsemble(profile.EnsembleSize, profile.RandomSeed, regressor.DefaultTreeConfig())
	default:
		return regressor.NewHoeffdingTree(regressor.DefaultTreeConfig()), nil
	}
}
