package npe

import (
	"fmt"
	"math/rand"
)

// Move identifies one of the three neighborhood operators.
type Move int

const (
	MoveNone       Move = iota // No move was applied
	MoveExchange               // M1: swap two adjacent operands
	MoveComplement             // M2: complement a chain of operators
	MoveSwap                   // M3: swap an adjacent operand and operator
)

func (m Move) String() string {
	switch m {
	case MoveExchange:
		return "M1"
	case MoveComplement:
		return "M2"
	case MoveSwap:
		return "M3"
	default:
		return "none"
	}
}

func (e *NPE) swap(a, b int) {
	e.expr[a], e.expr[b] = e.expr[b], e.expr[a]
}

// M1 swaps the a-th operand with the operand that follows it.
// Operators do not move, so the ballot and normalization are unaffected.
func (e *NPE) M1(a int) {
	if a < 0 || a >= e.CountOperands()-1 {
		panic(fmt.Sprintf("npe: M1 rank %d out of range for %d operands", a, e.CountOperands()))
	}

	first := -1
	seen := 0
	for i, item := range e.expr {
		if !item.IsOperand() {
			continue
		}
		if first >= 0 {
			e.swap(first, i)
			return
		}
		if seen == a {
			first = i
		}
		seen++
	}
	panic(fmt.Sprintf("npe: M1 found no operand after rank %d", a))
}

// M2 complements every operator in the n-th chain. Ranks past the last chain
// wrap around to the first one.
func (e *NPE) M2(n int) {
	if n < 0 {
		panic(fmt.Sprintf("npe: M2 rank %d is negative", n))
	}
	ch, ok := e.Cursor().Nth(n)
	if !ok {
		panic("npe: M2 on an expression without operators")
	}
	for i := ch.Start; i < ch.End; i++ {
		e.expr[i] = e.expr[i].Complement()
	}
}

// boundaries returns every i where tokens i and i+1 are one operand and one
// operator, in either order.
func (e *NPE) boundaries() []int {
	var out []int
	for i := 0; i+1 < len(e.expr); i++ {
		if e.expr[i].IsOperand() != e.expr[i+1].IsOperand() {
			out = append(out, i)
		}
	}
	return out
}

// satisfiesBallot checks the skew condition for swapping the boundary at a
// and b = a+1 against the ballot before the swap. Only moving an operator
// to the left can break the skew; it then needs 2*N(b) < a+1, with N(b) the
// operators up to and including b.
func (e *NPE) satisfiesBallot(a, b int) bool {
	if e.expr[a].IsOperator() {
		return true
	}
	return 2*e.ballot[b].Operators < a+1
}

// M3 swaps an adjacent operand and operator. Boundaries are tried in random
// order; the first swap that keeps the expression skewed and normalized is
// kept and the ballot is recomputed. It returns false if no boundary
// qualified, in which case the expression is unchanged.
func (e *NPE) M3(rng *rand.Rand) bool {
	candidates := e.boundaries()
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, i := range candidates {
		if !e.satisfiesBallot(i, i+1) {
			continue
		}
		e.swap(i, i+1)
		if e.isNormalized(i-1, i+2) {
			e.calculateBallot()
			return true
		}
		e.swap(i, i+1)
	}
	return false
}

// PerturbOnce applies one uniformly chosen move and reports which one
// changed the expression. Expressions with fewer than two operands have no
// neighbors and are left alone.
func (e *NPE) PerturbOnce(rng *rand.Rand) Move {
	operands := e.CountOperands()
	if operands < 2 {
		return MoveNone
	}

	switch rng.Intn(3) {
	case 0:
		e.M1(rng.Intn(operands - 1))
		return MoveExchange
	case 1:
		e.M2(rng.Intn(e.NumberChains()))
		return MoveComplement
	default:
		if e.M3(rng) {
			return MoveSwap
		}
		return MoveNone
	}
}

// Perturb applies iterations random moves in sequence.
func (e *NPE) Perturb(rng *rand.Rand, iterations int) {
	for range iterations {
		e.PerturbOnce(rng)
	}
}
