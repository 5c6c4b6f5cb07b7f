// Package problem reads and writes floorplanning problem instances in their
// plain-text form and builds initial expressions for them.
//
// The text form is the rectangle count, one "width height" line per
// rectangle, then the expression tokens on one line:
//
//	2
//	4 2
//	4 2
//	0 1 H
package problem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/npe"
	"github.com/piwi3910/slicefloor/internal/slicing"
)

// ErrDuplicateOperand is returned when a rectangle appears twice in an
// expression, or not at all.
var ErrDuplicateOperand = errors.New("each rectangle must appear exactly once")

// Problem is a rectangle table with an expression over it.
type Problem struct {
	ID     string
	Rects  []model.Rect
	Labels []string // Optional module names, parallel to Rects
	Expr   *npe.NPE
}

func newID() string {
	return uuid.New().String()[:8]
}

// FromTree flattens a slicing tree into a problem.
func FromTree(t *slicing.Tree) Problem {
	return Problem{
		ID:    newID(),
		Rects: append([]model.Rect(nil), t.Rects...),
		Expr:  t.Postorder(),
	}
}

// FromModules builds a problem whose initial expression places the modules
// in a row of alternating cuts: 0 1 V 2 H 3 V ...
func FromModules(modules []model.Module) (Problem, error) {
	if len(modules) == 0 {
		return Problem{}, fmt.Errorf("no modules to place")
	}

	p := Problem{ID: newID()}
	items := make([]model.TreeItem, 0, 2*len(modules)-1)
	cut := model.Vertical
	for i, m := range modules {
		p.Rects = append(p.Rects, m.Rect)
		p.Labels = append(p.Labels, m.Label)
		items = append(items, model.Operand(i))
		if i > 0 {
			items = append(items, model.Operator(cut))
			cut = cut.Opposite()
		}
	}
	p.Expr = npe.New(items)
	return p, nil
}

// Generate cuts a width x height rectangle cuts times at random and then
// applies scramble random moves to the resulting expression, so that the
// optimum (the starting rectangle) is known but not obvious.
func Generate(rng *rand.Rand, width, height, cuts, scramble int) Problem {
	p := FromTree(slicing.RandomTree(rng, width, height, cuts))
	p.Expr.Perturb(rng, scramble)
	return p
}

// Label returns the name of rectangle i, falling back to its index.
func (p Problem) Label(i int) string {
	if i < len(p.Labels) && p.Labels[i] != "" {
		return p.Labels[i]
	}
	return strconv.Itoa(i)
}

// Write renders the problem in its text form.
func Write(w io.Writer, p Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(p.Rects))
	for _, r := range p.Rects {
		fmt.Fprintf(bw, "%d %d\n", r.Width, r.Height)
	}
	fmt.Fprintln(bw, p.Expr.String())
	return bw.Flush()
}

// String returns the text form of the problem.
func (p Problem) String() string {
	var sb strings.Builder
	_ = Write(&sb, p)
	return sb.String()
}

// Read parses a problem in text form and validates its expression.
func Read(r io.Reader) (Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return Problem{}, fmt.Errorf("failed to read problem: missing rectangle count")
	}
	count, err := strconv.Atoi(header)
	if err != nil || count < 1 {
		return Problem{}, fmt.Errorf("line %d: invalid rectangle count %q", line, header)
	}

	p := Problem{ID: newID(), Rects: make([]model.Rect, 0, count)}
	for range count {
		s, ok := next()
		if !ok {
			return Problem{}, fmt.Errorf("failed to read problem: expected %d rectangles, got %d", count, len(p.Rects))
		}
		fields := strings.Fields(s)
		if len(fields) != 2 {
			return Problem{}, fmt.Errorf("line %d: expected \"width height\", got %q", line, s)
		}
		w, errW := strconv.Atoi(fields[0])
		h, errH := strconv.Atoi(fields[1])
		if errW != nil || errH != nil || w < 0 || h < 0 {
			return Problem{}, fmt.Errorf("line %d: invalid rectangle %q", line, s)
		}
		p.Rects = append(p.Rects, model.NewRect(w, h))
	}

	s, ok := next()
	if !ok {
		return Problem{}, fmt.Errorf("failed to read problem: missing expression")
	}
	items, err := ParseTokens(s)
	if err != nil {
		return Problem{}, fmt.Errorf("line %d: %w", line, err)
	}
	if err := sc.Err(); err != nil {
		return Problem{}, fmt.Errorf("failed to read problem: %w", err)
	}

	p.Expr = npe.New(items)
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// ParseTokens parses a space separated expression such as "0 1 H 2 V".
func ParseTokens(s string) ([]model.TreeItem, error) {
	var items []model.TreeItem
	for _, tok := range strings.Fields(s) {
		if c, err := model.ParseCut(tok); err == nil {
			items = append(items, model.Operator(c))
			continue
		}
		idx, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid token %q", tok)
		}
		items = append(items, model.Operand(idx))
	}
	return items, nil
}

// Validate checks that the expression is decodable and references every
// rectangle exactly once.
func (p Problem) Validate() error {
	if p.Expr == nil {
		return npe.ErrEmpty
	}
	if err := p.Expr.Validate(len(p.Rects)); err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	seen := make([]bool, len(p.Rects))
	for _, item := range p.Expr.Items() {
		if !item.IsOperand() {
			continue
		}
		if seen[item.Index()] {
			return fmt.Errorf("%w: rectangle %d repeated", ErrDuplicateOperand, item.Index())
		}
		seen[item.Index()] = true
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: rectangle %d missing", ErrDuplicateOperand, i)
		}
	}
	return nil
}
