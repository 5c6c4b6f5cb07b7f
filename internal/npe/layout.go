package npe

import (
	"fmt"

	"github.com/piwi3910/slicefloor/internal/model"
)

// block is an evaluated sub-floorplan: its bounding box and the modules
// placed relative to its bottom-left corner.
type block struct {
	box        model.Rect
	placements []model.Placement
}

// Layout evaluates the expression like AABB but also positions every module.
// Under a vertical cut the right operand sits to the right of the left one;
// under a horizontal cut it sits on top of it.
func (e *NPE) Layout(rects []model.Rect) (model.Rect, []model.Placement) {
	stack := make([]block, 0, len(rects))
	for i, item := range e.expr {
		if item.IsOperand() {
			r := rects[item.Index()]
			stack = append(stack, block{
				box: r,
				placements: []model.Placement{{
					Rect:   item.Index(),
					Width:  r.Width,
					Height: r.Height,
				}},
			})
			continue
		}
		if len(stack) < 2 {
			panic(fmt.Sprintf("npe: operand stack underflow at position %d in %s", i, e))
		}
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		dx, dy := 0, 0
		if item.Cut() == model.Vertical {
			dx = left.box.Width
		} else {
			dy = left.box.Height
		}
		merged := left.placements
		for _, p := range right.placements {
			p.X += dx
			p.Y += dy
			merged = append(merged, p)
		}
		stack = append(stack, block{
			box:        model.AABB(left.box, right.box, item.Cut()),
			placements: merged,
		})
	}
	if len(stack) != 1 {
		panic(fmt.Sprintf("npe: %d operands left after evaluating %s", len(stack), e))
	}
	return stack[0].box, stack[0].placements
}
