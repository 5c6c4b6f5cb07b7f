// Package npe implements Normalized Polish Expressions: the postfix encoding
// of a slicing floorplan together with the bookkeeping needed to perturb it
// without ever producing an undecodable expression.
package npe

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/piwi3910/slicefloor/internal/model"
)

var (
	ErrEmpty         = errors.New("expression is empty")
	ErrSkew          = errors.New("expression violates the balloting property")
	ErrNotNormalized = errors.New("expression contains adjacent identical operators")
	ErrOperandRange  = errors.New("operand references a missing rectangle")
)

// Ballot holds running token counts up to and including a position.
type Ballot struct {
	Operands  int
	Operators int
}

// NPE is a Polish expression with its ballot sequence.
type NPE struct {
	expr   []model.TreeItem
	ballot []Ballot
}

// New builds an expression from postfix tokens. The caller owns validity;
// use Validate for untrusted input.
func New(items []model.TreeItem) *NPE {
	e := &NPE{
		expr:   slices.Clone(items),
		ballot: make([]Ballot, len(items)),
	}
	e.calculateBallot()
	return e
}

func (e *NPE) calculateBallot() {
	var b Ballot
	for i, item := range e.expr {
		if item.IsOperand() {
			b.Operands++
		} else {
			b.Operators++
		}
		e.ballot[i] = b
	}
}

// Items returns a copy of the token sequence.
func (e *NPE) Items() []model.TreeItem {
	return slices.Clone(e.expr)
}

// Ballot returns a copy of the ballot sequence.
func (e *NPE) Ballot() []Ballot {
	return slices.Clone(e.ballot)
}

func (e *NPE) Len() int {
	return len(e.expr)
}

// At returns the token at position i.
func (e *NPE) At(i int) model.TreeItem {
	return e.expr[i]
}

// Clone returns an independent copy.
func (e *NPE) Clone() *NPE {
	return &NPE{
		expr:   slices.Clone(e.expr),
		ballot: slices.Clone(e.ballot),
	}
}

// Equal reports whether both expressions have the same tokens.
func (e *NPE) Equal(o *NPE) bool {
	return slices.Equal(e.expr, o.expr)
}

// CountOperands returns the number of rectangle tokens.
func (e *NPE) CountOperands() int {
	if len(e.ballot) == 0 {
		return 0
	}
	return e.ballot[len(e.ballot)-1].Operands
}

// CountOperators returns the number of cut tokens.
func (e *NPE) CountOperators() int {
	if len(e.ballot) == 0 {
		return 0
	}
	return e.ballot[len(e.ballot)-1].Operators
}

// AABB evaluates the expression against rects and returns the bounding box
// of the whole floorplan. A malformed expression panics.
func (e *NPE) AABB(rects []model.Rect) model.Rect {
	stack := make([]model.Rect, 0, len(rects))
	for i, item := range e.expr {
		if item.IsOperand() {
			stack = append(stack, rects[item.Index()])
			continue
		}
		if len(stack) < 2 {
			panic(fmt.Sprintf("npe: operand stack underflow at position %d in %s", i, e))
		}
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		stack = append(stack, model.AABB(left, right, item.Cut()))
	}
	if len(stack) != 1 {
		panic(fmt.Sprintf("npe: %d operands left after evaluating %s", len(stack), e))
	}
	return stack[0]
}

// Cost returns the area of the bounding box.
func (e *NPE) Cost(rects []model.Rect) float64 {
	return e.AABB(rects).Cost()
}

// Validate checks the whole expression for decodability: every prefix holds
// more operands than operators, exactly one more operand than operator
// overall, and no two adjacent operators share an orientation.
// If rectCount is positive, operand indexes are checked against it.
func (e *NPE) Validate(rectCount int) error {
	if len(e.expr) == 0 {
		return ErrEmpty
	}

	var b Ballot
	for i, item := range e.expr {
		if item.IsOperand() {
			b.Operands++
			if rectCount > 0 && (item.Index() < 0 || item.Index() >= rectCount) {
				return fmt.Errorf("%w: index %d at position %d", ErrOperandRange, item.Index(), i)
			}
		} else {
			b.Operators++
			if b.Operators >= b.Operands {
				return fmt.Errorf("%w: position %d", ErrSkew, i)
			}
		}
		if e.ballot[i] != b {
			return fmt.Errorf("%w: stale ballot at position %d", ErrSkew, i)
		}
	}
	if b.Operands != b.Operators+1 {
		return fmt.Errorf("%w: %d operands for %d operators", ErrSkew, b.Operands, b.Operators)
	}

	if !e.isNormalized(0, len(e.expr)-1) {
		return ErrNotNormalized
	}
	return nil
}

// isNormalized reports whether no two adjacent tokens in [a, b] are equal.
// Distinct operands never compare equal, so only repeated operators fail.
func (e *NPE) isNormalized(a, b int) bool {
	a = max(a, 0)
	b = min(b, len(e.expr)-1)
	for i := a; i < b; i++ {
		if e.expr[i] == e.expr[i+1] {
			return false
		}
	}
	return true
}

func (e *NPE) String() string {
	var sb strings.Builder
	for i, item := range e.expr {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.String())
	}
	return sb.String()
}
