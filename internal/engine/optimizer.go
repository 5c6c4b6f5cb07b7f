package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/npe"
)

// Optimizer runs a multi-start annealing search.
type Optimizer struct {
	Config AnnealConfig
	Logger *slog.Logger
}

func New(config AnnealConfig) *Optimizer {
	return &Optimizer{Config: config, Logger: slog.Default()}
}

// Result holds the outcome of a multi-start search.
type Result struct {
	Best        RunResult   // Run with the lowest final cost
	BestIndex   int         // Position of Best in Runs
	Runs        []RunResult // Every run, in run order
	InitialBox  model.Rect
	InitialCost float64
	Duration    time.Duration
}

// Ratio returns the best final cost relative to the initial cost.
func (r Result) Ratio() float64 {
	if r.InitialCost == 0 {
		return 0
	}
	return r.Best.FinalCost / r.InitialCost
}

// MeanCost returns the average final cost over all runs.
func (r Result) MeanCost() float64 {
	if len(r.Runs) == 0 {
		return 0
	}
	var total float64
	for _, run := range r.Runs {
		total += run.FinalCost
	}
	return total / float64(len(r.Runs))
}

// Optimize runs Config.Runs independent annealing searches from initial and
// returns the one that ended with the lowest cost. Runs share only the
// read-only rectangle table; each clones initial and owns its generator.
func (o *Optimizer) Optimize(initial *npe.NPE, rects []model.Rect) (Result, error) {
	if err := o.Config.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid anneal config: %w", err)
	}
	if err := initial.Validate(len(rects)); err != nil {
		return Result{}, fmt.Errorf("invalid initial expression: %w", err)
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := o.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	initialBox := initial.AABB(rects)
	runs := make([]RunResult, o.Config.Runs)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range runs {
		g.Go(func() error {
			rng, seed := runRNG(o.Config.Seed, i)
			res := Anneal(initial, rects, o.Config, rng)
			res.Seed = seed
			runs[i] = res

			logger.Debug("annealing run finished",
				"run", i,
				"id", res.ID,
				"cost", res.FinalCost,
				"best_seen", res.BestCost,
				"stages", res.Stages,
				"iterations", res.Iterations,
				"duration", res.Duration)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	best := 0
	for i := 1; i < len(runs); i++ {
		if runs[i].FinalCost < runs[best].FinalCost {
			best = i
		}
	}

	result := Result{
		Best:        runs[best],
		BestIndex:   best,
		Runs:        runs,
		InitialBox:  initialBox,
		InitialCost: initialBox.Cost(),
		Duration:    time.Since(start),
	}

	logger.Info("multi-start search finished",
		"runs", len(runs),
		"workers", workers,
		"initial_cost", result.InitialCost,
		"best_cost", result.Best.FinalCost,
		"ratio", result.Ratio(),
		"duration", result.Duration)

	return result, nil
}
