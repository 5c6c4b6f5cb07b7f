package npe

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/slicefloor/internal/model"
)

// parse builds an expression from a space separated token string.
func parse(t *testing.T, s string) *NPE {
	t.Helper()
	var items []model.TreeItem
	for _, tok := range strings.Fields(s) {
		if c, err := model.ParseCut(tok); err == nil {
			items = append(items, model.Operator(c))
			continue
		}
		idx, err := strconv.Atoi(tok)
		require.NoError(t, err, "bad token %q", tok)
		items = append(items, model.Operand(idx))
	}
	return New(items)
}

// chainExpr returns "0 1 V 2 H 3 V ..." over n operands.
func chainExpr(n int) *NPE {
	items := []model.TreeItem{model.Operand(0)}
	cut := model.Vertical
	for i := 1; i < n; i++ {
		items = append(items, model.Operand(i), model.Operator(cut))
		cut = cut.Opposite()
	}
	return New(items)
}

func makeTestRects(n int) []model.Rect {
	rects := make([]model.Rect, n)
	for i := range rects {
		rects[i] = model.NewRect(10+(i*7)%23, 5+(i*11)%17)
	}
	return rects
}

func operatorCounts(e *NPE) map[model.Cut]int {
	counts := map[model.Cut]int{}
	for _, item := range e.Items() {
		if item.IsOperator() {
			counts[item.Cut()]++
		}
	}
	return counts
}

func TestNew_ComputesBallot(t *testing.T) {
	e := parse(t, "0 1 H")

	require.Equal(t, []Ballot{{1, 0}, {2, 0}, {2, 1}}, e.Ballot())
	assert.Equal(t, 2, e.CountOperands())
	assert.Equal(t, 1, e.CountOperators())
	assert.Equal(t, "0 1 H", e.String())
	require.NoError(t, e.Validate(2))
}

func TestAABB_EvaluatesPostfix(t *testing.T) {
	rects := []model.Rect{
		model.NewRect(10, 10), // area 100
		model.NewRect(10, 30), // area 300
		model.NewRect(5, 5),
	}

	e := parse(t, "0 1 V")
	box := e.AABB(rects)
	assert.Equal(t, model.NewRect(20, 30), box)
	assert.Equal(t, 600.0, e.Cost(rects))

	e = parse(t, "0 1 V 2 H")
	assert.Equal(t, model.NewRect(20, 35), e.AABB(rects))
}

func TestAABB_PanicsOnUnderflow(t *testing.T) {
	e := parse(t, "0 H 1")
	assert.Panics(t, func() { e.AABB(makeTestRects(2)) })
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		expr string
		want error
	}{
		{"", ErrEmpty},
		{"0 H", ErrSkew},
		{"0 1", ErrSkew},
		{"0 1 2 H H", ErrNotNormalized},
		{"0 1 H 2", ErrSkew},
		{"0 5 V", ErrOperandRange},
	} {
		err := parse(t, tc.expr).Validate(3)
		assert.ErrorIs(t, err, tc.want, "expression %q", tc.expr)
	}

	assert.NoError(t, parse(t, "0 1 2 V H").Validate(3))
	assert.NoError(t, parse(t, "0 1 H 2 H").Validate(3))
}

func TestClone_IsIndependent(t *testing.T) {
	e := chainExpr(5)
	c := e.Clone()
	c.M1(0)

	assert.False(t, e.Equal(c))
	assert.Equal(t, "0 1 V 2 H 3 V 4 H", e.String())
}

func TestPerturb_ZeroIsIdentity(t *testing.T) {
	e := chainExpr(8)
	before := e.Clone()

	e.Perturb(rand.New(rand.NewSource(1)), 0)

	assert.True(t, before.Equal(e))
	assert.Equal(t, before.Ballot(), e.Ballot())
}

func TestPerturb_SingleOperandIsNoop(t *testing.T) {
	e := parse(t, "0")
	assert.Equal(t, MoveNone, e.PerturbOnce(rand.New(rand.NewSource(1))))
	assert.Equal(t, "0", e.String())
}

func TestM1_SwapsAdjacentOperands(t *testing.T) {
	e := parse(t, "0 1 V 2 H 3 V")
	chains := e.NumberChains()
	ops := operatorCounts(e)

	e.M1(1)
	assert.Equal(t, "0 2 V 1 H 3 V", e.String())

	e.M1(0)
	assert.Equal(t, "2 0 V 1 H 3 V", e.String())

	assert.Equal(t, chains, e.NumberChains())
	assert.Equal(t, ops, operatorCounts(e))
	require.NoError(t, e.Validate(4))
}

func TestM1_PanicsOnBadRank(t *testing.T) {
	e := chainExpr(3)
	assert.Panics(t, func() { e.M1(2) })
	assert.Panics(t, func() { e.M1(-1) })
}

func TestM2_ComplementsChain(t *testing.T) {
	e := parse(t, "0 1 2 3 V H V 4 H")
	operands := e.CountOperands()
	operators := e.CountOperators()

	e.M2(0)
	assert.Equal(t, "0 1 2 3 H V H 4 H", e.String())

	e.M2(1)
	assert.Equal(t, "0 1 2 3 H V H 4 V", e.String())

	// Ranks wrap around to the first chain
	e.M2(2)
	assert.Equal(t, "0 1 2 3 V H V 4 V", e.String())

	assert.Equal(t, operands, e.CountOperands())
	assert.Equal(t, operators, e.CountOperators())
	require.NoError(t, e.Validate(5))
}

func TestM2_PanicsWithoutOperators(t *testing.T) {
	e := parse(t, "0")
	assert.Panics(t, func() { e.M2(0) })
}

func TestM3_SwapsOperandAndOperator(t *testing.T) {
	// Only boundary is between 3 and V.
	e := parse(t, "0 1 2 3 V H V")

	ok := e.M3(rand.New(rand.NewSource(1)))

	require.True(t, ok)
	assert.Equal(t, "0 1 2 V 3 H V", e.String())
	assert.Equal(t, []Ballot{{1, 0}, {2, 0}, {3, 0}, {3, 1}, {4, 1}, {4, 2}, {4, 3}}, e.Ballot())
	require.NoError(t, e.Validate(4))
}

func TestM3_RejectsUnnormalizedSwap(t *testing.T) {
	// Moving the first H right would produce "H H"; the other boundaries
	// fail the ballot check.
	e := parse(t, "0 1 H 2 H")
	before := e.Clone()

	ok := e.M3(rand.New(rand.NewSource(7)))

	assert.False(t, ok)
	assert.True(t, before.Equal(e))
}

func TestM3_NoCandidates(t *testing.T) {
	e := parse(t, "0 1 H")
	assert.False(t, e.M3(rand.New(rand.NewSource(3))))
	assert.Equal(t, "0 1 H", e.String())
}

func TestM3_MovesOperatorRight(t *testing.T) {
	// Of the three boundaries only V<->2 qualifies.
	e := parse(t, "0 1 V 2 H")

	require.True(t, e.M3(rand.New(rand.NewSource(5))))
	assert.Equal(t, "0 1 2 V H", e.String())
	require.NoError(t, e.Validate(3))
}

// The ballot check accepts exactly the operand/operator swaps that keep
// every prefix skewed: operators may always move right, and move left only
// while operands still outnumber operators in front of them.
func TestM3_BallotCheckAcceptsSkewPreservingSwaps(t *testing.T) {
	tests := []struct {
		name string
		expr string
		at   int
		want bool
	}{
		{"operator right inside chain", "0 1 V 2 H 3 V", 2, true},
		{"operator right near chain end", "0 1 V 2 H 3 V", 4, true},
		{"operator left to second token", "0 1 V 2 H 3 V", 1, false},
		{"operator left into balanced prefix", "0 1 V 2 H 3 V", 3, false},
		{"operator left with operands to spare", "0 1 2 V H", 2, true},
		{"operator left in deep stack", "0 1 2 3 V H V", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parse(t, tt.expr)
			require.NotEqual(t, e.expr[tt.at].IsOperand(), e.expr[tt.at+1].IsOperand())

			assert.Equal(t, tt.want, e.satisfiesBallot(tt.at, tt.at+1))

			e.swap(tt.at, tt.at+1)
			e.calculateBallot()
			if tt.want {
				assert.NoError(t, e.Validate(e.CountOperands()))
			} else {
				assert.ErrorIs(t, e.Validate(e.CountOperands()), ErrSkew)
			}
		})
	}
}

func TestM3_ChainHasLegalSwaps(t *testing.T) {
	for n := 3; n <= 12; n++ {
		e := chainExpr(n)
		legal := 0
		for _, i := range e.boundaries() {
			if e.satisfiesBallot(i, i+1) {
				legal++
			}
		}
		assert.Positive(t, legal, "chain of %d", n)
		assert.True(t, e.M3(rand.New(rand.NewSource(int64(n)))), "chain of %d", n)
	}
}

func TestM3_ChangesAtMostOnePair(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e := chainExpr(20)
	e.Perturb(rng, 200)

	for range 500 {
		before := e.Items()
		changed := e.M3(rng)
		after := e.Items()

		var diff []int
		for i := range before {
			if before[i] != after[i] {
				diff = append(diff, i)
			}
		}
		if !changed {
			require.Empty(t, diff)
			continue
		}
		require.Len(t, diff, 2)
		require.Equal(t, diff[0]+1, diff[1])
		require.Equal(t, before[diff[0]], after[diff[1]])
		require.Equal(t, before[diff[1]], after[diff[0]])
		require.NoError(t, e.Validate(20))
	}
}

func TestPerturbOnce_PreservesInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	e := chainExpr(30)
	rects := makeTestRects(30)

	counts := map[Move]int{}
	for i := range 5000 {
		m := e.PerturbOnce(rng)
		counts[m]++
		require.NoError(t, e.Validate(30), "after move %d (%s): %s", i, m, e)
		require.Equal(t, 30, e.CountOperands())
	}
	e.AABB(rects)

	assert.Positive(t, counts[MoveExchange])
	assert.Positive(t, counts[MoveComplement])
	assert.Positive(t, counts[MoveSwap])
}

func TestChains_Enumeration(t *testing.T) {
	e := parse(t, "0 1 2 V H 3 V 4 5 H V H")

	var got []Chain
	for c := range e.Chains() {
		got = append(got, c)
	}
	want := []Chain{{3, 5}, {6, 7}, {9, 12}}
	require.Equal(t, want, got)
	assert.Equal(t, 3, e.NumberChains())

	// A second pass yields the same ranges.
	var again []Chain
	for c := range e.Chains() {
		again = append(again, c)
	}
	assert.Equal(t, got, again)
}

func TestChainCursor_Wraps(t *testing.T) {
	e := parse(t, "0 1 V 2 H")
	cur := e.Cursor()

	var got []Chain
	for range 5 {
		c, ok := cur.Next()
		require.True(t, ok)
		got = append(got, c)
	}
	assert.Equal(t, []Chain{{2, 3}, {4, 5}, {2, 3}, {4, 5}, {2, 3}}, got)

	_, ok := parse(t, "0").Cursor().Next()
	assert.False(t, ok)
}

func TestLayout_MatchesAABB(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	rects := makeTestRects(16)
	e := chainExpr(16)

	for range 50 {
		e.Perturb(rng, 10)

		box, placements := e.Layout(rects)
		require.Equal(t, e.AABB(rects), box)
		require.Len(t, placements, 16)

		for i, p := range placements {
			require.Equal(t, rects[p.Rect].Width, p.Width)
			require.Equal(t, rects[p.Rect].Height, p.Height)
			require.LessOrEqual(t, p.X+p.Width, box.Width)
			require.LessOrEqual(t, p.Y+p.Height, box.Height)
			for _, q := range placements[i+1:] {
				require.False(t, p.Overlaps(q), "%v overlaps %v", p, q)
			}
		}
		require.LessOrEqual(t, model.Efficiency(box, placements), 100.0)
	}
}

func TestLayout_Positions(t *testing.T) {
	rects := []model.Rect{model.NewRect(4, 2), model.NewRect(3, 5), model.NewRect(7, 1)}
	e := parse(t, "0 1 V 2 H")

	box, placements := e.Layout(rects)

	assert.Equal(t, model.NewRect(7, 6), box)
	assert.Equal(t, []model.Placement{
		{Rect: 0, X: 0, Y: 0, Width: 4, Height: 2},
		{Rect: 1, X: 4, Y: 0, Width: 3, Height: 5},
		{Rect: 2, X: 0, Y: 5, Width: 7, Height: 1},
	}, placements)
}

func TestMove_String(t *testing.T) {
	assert.Equal(t, "M1", MoveExchange.String())
	assert.Equal(t, "M2", MoveComplement.String())
	assert.Equal(t, "M3", MoveSwap.String())
	assert.Equal(t, "none", MoveNone.String())
}
