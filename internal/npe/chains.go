package npe

import "iter"

// Chain is a maximal run of consecutive operators, as the half-open
// token range [Start, End).
type Chain struct {
	Start int
	End   int
}

// Len returns the number of operators in the chain.
func (c Chain) Len() int {
	return c.End - c.Start
}

// nextChain returns the first chain starting at or after from.
func (e *NPE) nextChain(from int) (Chain, bool) {
	i := from
	for i < len(e.expr) && e.expr[i].IsOperand() {
		i++
	}
	if i == len(e.expr) {
		return Chain{}, false
	}
	j := i
	for j < len(e.expr) && e.expr[j].IsOperator() {
		j++
	}
	return Chain{Start: i, End: j}, true
}

// Chains yields every chain once, left to right. Each range over the
// sequence rescans the expression.
func (e *NPE) Chains() iter.Seq[Chain] {
	return func(yield func(Chain) bool) {
		pos := 0
		for {
			c, ok := e.nextChain(pos)
			if !ok || !yield(c) {
				return
			}
			pos = c.End
		}
	}
}

// NumberChains returns the number of chains in the expression.
func (e *NPE) NumberChains() int {
	n := 0
	for range e.Chains() {
		n++
	}
	return n
}

// ChainCursor walks the chains of an expression cyclically: after the last
// chain it starts over from the beginning.
type ChainCursor struct {
	e   *NPE
	pos int
}

// Cursor returns a cyclic chain cursor positioned before the first chain.
func (e *NPE) Cursor() *ChainCursor {
	return &ChainCursor{e: e}
}

// Next returns the next chain. ok is false only when the expression has no
// operators at all.
func (c *ChainCursor) Next() (Chain, bool) {
	ch, ok := c.e.nextChain(c.pos)
	if !ok {
		ch, ok = c.e.nextChain(0)
		if !ok {
			return Chain{}, false
		}
	}
	c.pos = ch.End
	return ch, true
}

// Nth returns the n-th chain, wrapping around cyclically.
func (c *ChainCursor) Nth(n int) (Chain, bool) {
	var ch Chain
	ok := false
	for i := 0; i <= n; i++ {
		if ch, ok = c.Next(); !ok {
			return Chain{}, false
		}
	}
	return ch, true
}
