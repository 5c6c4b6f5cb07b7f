// Package export writes optimized floorplans and search statistics to PDF,
// DXF and Excel files.
package export

import (
	"fmt"
	"time"

	"github.com/piwi3910/slicefloor/internal/engine"
	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/problem"
)

// Report is everything the exporters render: the solved problem, its
// evaluated layout and the multi-start statistics that produced it.
type Report struct {
	Title      string
	Problem    problem.Problem // Expr holds the final expression
	Result     engine.Result
	Box        model.Rect
	Placements []model.Placement
	Created    time.Time
}

// NewReport lays out the best run of result over the rectangles of p.
func NewReport(title string, p problem.Problem, result engine.Result) (Report, error) {
	if result.Best.Final == nil {
		return Report{}, fmt.Errorf("no annealing result to report")
	}
	p.Expr = result.Best.Final.Clone()
	if err := p.Validate(); err != nil {
		return Report{}, fmt.Errorf("failed to build report: %w", err)
	}
	box, placements := p.Expr.Layout(p.Rects)
	return Report{
		Title:      title,
		Problem:    p,
		Result:     result,
		Box:        box,
		Placements: placements,
		Created:    time.Now(),
	}, nil
}

// Efficiency returns the share of the bounding box covered by modules.
func (r Report) Efficiency() float64 {
	return model.Efficiency(r.Box, r.Placements)
}

// ModuleArea returns the summed area of all modules.
func (r Report) ModuleArea() float64 {
	var total float64
	for _, p := range r.Placements {
		total += p.Area()
	}
	return total
}
