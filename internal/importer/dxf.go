package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/slicefloor/internal/model"
)

// chainTolerance is the largest gap between two LINE endpoints that still
// counts as connected.
const chainTolerance = 0.01

type point struct{ x, y float64 }

type segment struct{ start, end point }

// ImportDXF reads one module per closed shape: every LWPOLYLINE, CIRCLE and
// closed chain of LINEs. A module is the shape's bounding box rounded to
// whole units.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes [][]point
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shape := make([]point, len(e.Vertices))
			for i, v := range e.Vertices {
				shape[i] = point{v[0], v[1]}
			}
			shapes = append(shapes, shape)

		case *entity.Circle:
			c, r := e.Center, e.Radius
			shapes = append(shapes, []point{{c[0] - r, c[1] - r}, {c[0] + r, c[1] + r}})

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	chains, open := chainSegments(segments, chainTolerance)
	shapes = append(shapes, chains...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d open LINE chains", open))
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for _, shape := range shapes {
		minP, maxP := boundingBox(shape)
		w := int(math.Round(maxP.x - minP.x))
		h := int(math.Round(maxP.y - minP.y))
		if w <= 0 || h <= 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", maxP.x-minP.x, maxP.y-minP.y))
			continue
		}
		result.Modules = append(result.Modules, model.Module{
			Label: fmt.Sprintf("DXF %d", len(result.Modules)+1),
			Rect:  model.NewRect(w, h),
		})
	}
	return result
}

func boundingBox(pts []point) (point, point) {
	minP, maxP := pts[0], pts[0]
	for _, p := range pts[1:] {
		minP.x, minP.y = math.Min(minP.x, p.x), math.Min(minP.y, p.y)
		maxP.x, maxP.y = math.Max(maxP.x, p.x), math.Max(maxP.y, p.y)
	}
	return minP, maxP
}

// chainSegments joins segments end to end into closed outlines and returns
// them largest first, along with the number of chains that did not close.
func chainSegments(segs []segment, tolerance float64) ([][]point, int) {
	used := make([]bool, len(segs))
	var outlines [][]point
	open := 0

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []point{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		} else {
			open++
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines, open
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tolerance
}

// outlineArea is the shoelace area of a polygon.
func outlineArea(o []point) float64 {
	var area float64
	for i := range o {
		j := (i + 1) % len(o)
		area += o[i].x*o[j].y - o[j].x*o[i].y
	}
	return math.Abs(area) / 2
}
