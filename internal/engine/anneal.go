package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/npe"
)

// AnnealConfig holds parameters for the simulated annealing search.
type AnnealConfig struct {
	Stages        int     // Upper bound on temperature stages per run
	K             int     // Stage length multiplier: n = operands * K
	StartTemp     float64 // Temperature of the first stage
	TempEpsilon   float64 // A run stops once the temperature drops below this
	TempReduction float64 // Temperature multiplier applied after each stage, < 1
	Runs          int     // Number of independent runs in a multi-start search
	Workers       int     // Concurrent runs; <= 0 uses GOMAXPROCS
	Seed          int64   // Base seed; 0 selects a fixed default
}

// DefaultAnnealConfig returns sensible default parameters.
func DefaultAnnealConfig() AnnealConfig {
	return AnnealConfig{
		Stages:        1_000_000,
		K:             3,
		StartTemp:     1.0,
		TempEpsilon:   0.05,
		TempReduction: 0.9999,
		Runs:          100,
		Workers:       0,
		Seed:          0,
	}
}

// Validate reports the first parameter that would make a run meaningless.
func (c AnnealConfig) Validate() error {
	switch {
	case c.Stages < 1:
		return errors.New("stages must be >= 1")
	case c.K < 1:
		return errors.New("k must be >= 1")
	case c.StartTemp <= 0:
		return errors.New("start temperature must be > 0")
	case c.TempEpsilon <= 0:
		return errors.New("temperature epsilon must be > 0")
	case c.TempReduction <= 0 || c.TempReduction >= 1:
		return fmt.Errorf("temperature reduction must be in (0, 1), got %v", c.TempReduction)
	case c.Runs < 1:
		return errors.New("runs must be >= 1")
	}
	return nil
}

// rejectionLimit stops a run once a stage rejects more than this share of
// its candidates.
const rejectionLimit = 0.95

// stageDone reports whether a temperature stage of length n is over: more
// than n uphill moves were accepted or more than 2n candidates were drawn.
func stageDone(uphill, iters, n int) bool {
	return uphill > n || iters > 2*n
}

// RunResult describes one annealing run.
type RunResult struct {
	ID   string
	Seed int64

	// Final is the state the run ended in. It is what multi-start compares.
	Final     *npe.NPE
	FinalCost float64

	// Best is the lowest-cost state visited during the run.
	Best     *npe.NPE
	BestCost float64

	Stages     int
	Iterations int
	Accepted   int
	Uphill     int
	Rejected   int
	FinalTemp  float64
	Moves      [4]int // Accepted moves indexed by npe.Move
	Duration   time.Duration
}

// annealer runs a single Metropolis search.
type annealer struct {
	rects  []model.Rect
	config AnnealConfig
	rng    *rand.Rand
}

func newAnnealer(rects []model.Rect, config AnnealConfig, rng *rand.Rand) *annealer {
	return &annealer{
		rects:  rects,
		config: config,
		rng:    rng,
	}
}

// Anneal runs one simulated annealing search from initial, which is not
// modified. rng must not be shared with concurrent runs.
func Anneal(initial *npe.NPE, rects []model.Rect, config AnnealConfig, rng *rand.Rand) RunResult {
	return newAnnealer(rects, config, rng).run(initial)
}

// accept applies the Metropolis rule.
func (a *annealer) accept(delta, temp float64) bool {
	if delta <= 0 {
		return true
	}
	return a.rng.Float64() < math.Exp(-delta/temp)
}

func (a *annealer) run(initial *npe.NPE) RunResult {
	start := time.Now()

	current := initial.Clone()
	currentCost := current.Cost(a.rects)

	res := RunResult{
		ID:       uuid.New().String()[:8],
		Best:     current.Clone(),
		BestCost: currentCost,
	}

	n := current.CountOperands() * a.config.K
	temp := a.config.StartTemp

	for stage := 0; stage < a.config.Stages; stage++ {
		uphill, iters, rejected := 0, 0, 0

		for {
			iters++

			candidate := current.Clone()
			move := candidate.PerturbOnce(a.rng)
			cost := candidate.Cost(a.rects)
			delta := cost - currentCost

			if a.accept(delta, temp) {
				if delta > 0 {
					uphill++
				}
				current = candidate
				currentCost = cost
				res.Accepted++
				res.Moves[move]++

				if currentCost < res.BestCost {
					res.Best = current.Clone()
					res.BestCost = currentCost
				}
			} else {
				rejected++
			}

			if stageDone(uphill, iters, n) {
				break
			}
		}

		res.Stages++
		res.Iterations += iters
		res.Uphill += uphill
		res.Rejected += rejected

		temp *= a.config.TempReduction

		if float64(rejected)/float64(iters) > rejectionLimit || temp < a.config.TempEpsilon {
			break
		}
	}

	res.Final = current
	res.FinalCost = currentCost
	res.FinalTemp = temp
	res.Duration = time.Since(start)
	return res
}
