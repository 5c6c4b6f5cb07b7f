package engine

import (
	"fmt"

	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/npe"
)

// ComparisonScenario defines a named annealing configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config AnnealConfig
}

// ComparisonResult holds the search result and summary statistics for a
// single scenario.
type ComparisonResult struct {
	Scenario   ComparisonScenario
	Result     Result
	BestCost   float64
	MeanCost   float64
	Ratio      float64
	Iterations int
}

// CompareScenarios runs a multi-start search for each scenario and returns
// the results in scenario order. This enables side-by-side comparison of
// cooling schedules and stage lengths on the same problem.
func (o *Optimizer) CompareScenarios(scenarios []ComparisonScenario, initial *npe.NPE, rects []model.Rect) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := &Optimizer{Config: scenario.Config, Logger: o.Logger}
		result, err := opt.Optimize(initial, rects)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		iterations := 0
		for _, run := range result.Runs {
			iterations += run.Iterations
		}

		results = append(results, ComparisonResult{
			Scenario:   scenario,
			Result:     result,
			BestCost:   result.Best.FinalCost,
			MeanCost:   result.MeanCost(),
			Ratio:      result.Ratio(),
			Iterations: iterations,
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios around the
// base configuration, varying stage length and cooling speed.
func BuildDefaultScenarios(base AnnealConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current Settings",
			Config: base,
		},
	}

	longer := base
	longer.K = base.K * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Stage length k=%d", longer.K),
		Config: longer,
	})

	// Cool ten times faster: 1 - (1 - r) * 10
	if faster := 1 - (1-base.TempReduction)*10; faster > 0 {
		fast := base
		fast.TempReduction = faster
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Fast cooling %.4f", faster),
			Config: fast,
		})
	}

	if base.Runs > 1 {
		single := base
		single.Runs = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Single Run",
			Config: single,
		})
	}

	return scenarios
}
