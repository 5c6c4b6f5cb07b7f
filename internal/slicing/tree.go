// Package slicing holds the arena-indexed slicing tree that seeds the
// search. Once flattened into a Polish expression the tree is no longer used.
package slicing

import (
	"fmt"
	"math/rand"

	"github.com/piwi3910/slicefloor/internal/model"
	"github.com/piwi3910/slicefloor/internal/npe"
)

const none = -1

// Node is an arena slot. A leaf references a rectangle; an internal node
// carries a cut and both children. Indexes of -1 mean "absent".
type Node struct {
	cut    model.Cut
	rect   int
	left   int
	right  int
	parent int
}

// NewLeaf returns a leaf node referencing rect under parent (-1 for the root).
func NewLeaf(rect, parent int) Node {
	return Node{rect: rect, left: none, right: none, parent: parent}
}

func (n Node) IsLeaf() bool { return n.rect != none }

// Rect returns the rectangle index of a leaf.
func (n Node) Rect() int {
	if !n.IsLeaf() {
		panic("slicing: Rect called on internal node")
	}
	return n.rect
}

// Cut returns the orientation of an internal node.
func (n Node) Cut() model.Cut {
	if n.IsLeaf() {
		panic("slicing: Cut called on leaf node")
	}
	return n.cut
}

func (n Node) Left() int  { return n.left }
func (n Node) Right() int { return n.right }

// Parent returns the parent index and false for the root.
func (n Node) Parent() (int, bool) {
	return n.parent, n.parent != none
}

// Tree owns append-only arenas of rectangles and nodes. The root is node 0.
type Tree struct {
	Rects []model.Rect
	Nodes []Node
}

// New creates a single-leaf tree for a width x height rectangle.
func New(width, height int) *Tree {
	return &Tree{
		Rects: []model.Rect{model.NewRect(width, height)},
		Nodes: []Node{NewLeaf(0, none)},
	}
}

// PushRect appends a rectangle and returns its index.
func (t *Tree) PushRect(r model.Rect) int {
	t.Rects = append(t.Rects, r)
	return len(t.Rects) - 1
}

// PushNode appends a node and returns its index.
func (t *Tree) PushNode(n Node) int {
	t.Nodes = append(t.Nodes, n)
	return len(t.Nodes) - 1
}

// Split turns the leaf at idx into an internal node cutting its rectangle.
// The left child reuses the leaf's rectangle slot, the right child gets a
// new one. It returns the indexes of the two new leaves.
func (t *Tree) Split(idx int, cut model.Cut) (left, right int) {
	n := t.Nodes[idx]
	if !n.IsLeaf() {
		panic(fmt.Sprintf("slicing: node %d is already split", idx))
	}

	lr, rr := t.Rects[n.rect].Cut(cut)
	t.Rects[n.rect] = lr
	rightRect := t.PushRect(rr)

	left = t.PushNode(NewLeaf(n.rect, idx))
	right = t.PushNode(NewLeaf(rightRect, idx))

	t.Nodes[idx] = Node{
		cut:    cut,
		rect:   none,
		left:   left,
		right:  right,
		parent: n.parent,
	}
	return left, right
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Leaves returns the number of leaf nodes.
func (t *Tree) Leaves() int {
	count := 0
	for _, n := range t.Nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

// RandomTree cuts a width x height rectangle cuts times. Each cut descends
// randomly from the root to a leaf and splits it; a child's cut is always
// the opposite of its parent's, which skews the tree.
func RandomTree(rng *rand.Rand, width, height, cuts int) *Tree {
	t := New(width, height)

	for range cuts {
		current := 0
		for !t.Nodes[current].IsLeaf() {
			if rng.Intn(2) == 0 {
				current = t.child(current, t.Nodes[current].left)
			} else {
				current = t.child(current, t.Nodes[current].right)
			}
		}

		var cut model.Cut
		if parent, ok := t.Nodes[current].Parent(); ok {
			cut = t.Nodes[parent].Cut().Opposite()
		} else if rng.Intn(2) == 0 {
			cut = model.Vertical
		} else {
			cut = model.Horizontal
		}
		t.Split(current, cut)
	}
	return t
}

// child validates a child reference of node idx.
func (t *Tree) child(idx, c int) int {
	if c < 0 || c >= len(t.Nodes) {
		panic(fmt.Sprintf("slicing: node %d has invalid child %d", idx, c))
	}
	return c
}

// Postorder flattens the tree into a Polish expression.
func (t *Tree) Postorder() *npe.NPE {
	items := make([]model.TreeItem, 0, len(t.Nodes))
	items = t.postorder(0, items)
	return npe.New(items)
}

func (t *Tree) postorder(idx int, items []model.TreeItem) []model.TreeItem {
	n := t.Nodes[idx]
	if n.IsLeaf() {
		return append(items, model.Operand(n.rect))
	}
	items = t.postorder(t.child(idx, n.left), items)
	items = t.postorder(t.child(idx, n.right), items)
	return append(items, model.Operator(n.cut))
}

// AABB computes the bounding box of the subtree rooted at idx directly on
// the tree. It is the reference that expression evaluation must match.
func (t *Tree) AABB(idx int) model.Rect {
	n := t.Nodes[idx]
	if n.IsLeaf() {
		return t.Rects[n.rect]
	}
	left := t.AABB(t.child(idx, n.left))
	right := t.AABB(t.child(idx, n.right))
	return model.AABB(left, right, n.cut)
}
