package model

import (
	"fmt"
	"strconv"
)

// Cut represents the orientation of a slicing cut.
type Cut int

const (
	Horizontal Cut = iota // Stacks the two halves on top of each other
	Vertical              // Places the two halves side by side
)

func (c Cut) String() string {
	switch c {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	default:
		return fmt.Sprintf("Cut(%d)", int(c))
	}
}

// Opposite returns the other cut orientation.
func (c Cut) Opposite() Cut {
	if c == Horizontal {
		return Vertical
	}
	return Horizontal
}

// ParseCut converts "H" or "V" into a Cut.
func ParseCut(s string) (Cut, error) {
	switch s {
	case "H", "h":
		return Horizontal, nil
	case "V", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown cut orientation %q", s)
}

// Rect is the width and height of a module or of an enclosing box.
type Rect struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func NewRect(w, h int) Rect {
	return Rect{Width: w, Height: h}
}

// Cut splits the rectangle into two congruent halves.
// A horizontal cut halves the height, a vertical cut halves the width.
func (r Rect) Cut(c Cut) (left, right Rect) {
	var half Rect
	if c == Horizontal {
		half = Rect{Width: r.Width, Height: r.Height / 2}
	} else {
		half = Rect{Width: r.Width / 2, Height: r.Height}
	}
	return half, half
}

// AABB returns the smallest rectangle enclosing left and right joined under c.
func AABB(left, right Rect, c Cut) Rect {
	if c == Vertical {
		return Rect{
			Width:  left.Width + right.Width,
			Height: max(left.Height, right.Height),
		}
	}
	return Rect{
		Width:  max(left.Width, right.Width),
		Height: left.Height + right.Height,
	}
}

// Cost returns the area of the rectangle.
func (r Rect) Cost() float64 {
	return float64(r.Width) * float64(r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d)", r.Width, r.Height)
}

// TreeItem is one token of a Polish expression: either an operand that
// references a rectangle by index, or an operator carrying a cut.
// The zero value is operand 0.
type TreeItem struct {
	operator bool
	index    int
	cut      Cut
}

// Operand returns a token referencing the rectangle at idx.
func Operand(idx int) TreeItem {
	return TreeItem{index: idx}
}

// Operator returns a token for the cut c.
func Operator(c Cut) TreeItem {
	return TreeItem{operator: true, cut: c}
}

func (t TreeItem) IsOperand() bool  { return !t.operator }
func (t TreeItem) IsOperator() bool { return t.operator }

// Index returns the rectangle index of an operand token.
func (t TreeItem) Index() int {
	if t.operator {
		panic("model: Index called on operator token")
	}
	return t.index
}

// Cut returns the orientation of an operator token.
func (t TreeItem) Cut() Cut {
	if !t.operator {
		panic("model: Cut called on operand token")
	}
	return t.cut
}

// Complement flips the orientation of an operator token.
// Operands are returned unchanged.
func (t TreeItem) Complement() TreeItem {
	if t.operator {
		t.cut = t.cut.Opposite()
	}
	return t
}

func (t TreeItem) String() string {
	if t.operator {
		return t.cut.String()
	}
	return strconv.Itoa(t.index)
}

// Module is a labelled rectangle supplied by an importer.
type Module struct {
	Label string `json:"label"`
	Rect  Rect   `json:"rect"`
}

// Placement is the position of a module inside an evaluated floorplan.
// X grows to the right and Y grows upwards from the bottom-left corner.
type Placement struct {
	Rect   int `json:"rect"` // Index into the rectangle table
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the area covered by the placed module.
func (p Placement) Area() float64 {
	return float64(p.Width) * float64(p.Height)
}

// Overlaps reports whether two placements share any interior area.
func (p Placement) Overlaps(o Placement) bool {
	return p.X < o.X+o.Width && o.X < p.X+p.Width &&
		p.Y < o.Y+o.Height && o.Y < p.Y+p.Height
}

// Efficiency returns the percentage of bbox covered by the placements.
func Efficiency(bbox Rect, placements []Placement) float64 {
	total := bbox.Cost()
	if total == 0 {
		return 0
	}
	var used float64
	for _, p := range placements {
		used += p.Area()
	}
	return (used / total) * 100.0
}
