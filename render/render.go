// Package render walks the laid out tree once per frame and hands every visible node
// to a Painter together with its accumulated transform and opacity.
package render

import (
	"sort"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/layout"
)

// Painter is the paint backend. Clipping is its responsibility.
type Painter interface {
	Paint(n *dom.Node, area geom.Area, transform geom.Matrix, opacity float32)
	// Wireframe outlines area for debugging.
	Wireframe(area geom.Area)
}

// Visit is called once per visible node in paint order.
type Visit func(n *dom.Node, area geom.Area, transform geom.Matrix, opacity float32)

// ============================================================================
// Accumulators
// ============================================================================

// TransformEntry is a cumulative transform and the node that pushed it.
type TransformEntry struct {
	Matrix geom.Matrix
	Owner  dom.NodeID
}

// OpacityEntry is a cumulative opacity and the node that pushed it.
type OpacityEntry struct {
	Opacity float32
	Owner   dom.NodeID
}

// Accumulators are the per-traversal stacks. An entry is pushed when the walk enters
// a node and popped when it leaves the node's subtree, so the top always holds the
// values for the node being visited.
type Accumulators struct {
	Transforms []TransformEntry
	Opacities  []OpacityEntry
}

// Transform returns the cumulative transform on top of the stack.
func (a *Accumulators) Transform() geom.Matrix {
	if len(a.Transforms) == 0 {
		return geom.Identity()
	}
	return a.Transforms[len(a.Transforms)-1].Matrix
}

// Opacity returns the cumulative opacity on top of the stack.
func (a *Accumulators) Opacity() float32 {
	if len(a.Opacities) == 0 {
		return 1
	}
	return a.Opacities[len(a.Opacities)-1].Opacity
}

// Push composes n's own transform and opacity onto the stacks.
func (a *Accumulators) Push(n *dom.Node, area geom.Area) {
	a.Transforms = append(a.Transforms, TransformEntry{Matrix: a.Transform().Mul(n.Transform(area)), Owner: n.ID})
	a.Opacities = append(a.Opacities, OpacityEntry{Opacity: a.Opacity() * n.Opacity, Owner: n.ID})
}

// Pop removes the entries pushed for the innermost node.
func (a *Accumulators) Pop() {
	a.Transforms = a.Transforms[:len(a.Transforms)-1]
	a.Opacities = a.Opacities[:len(a.Opacities)-1]
}

// ============================================================================
// Traversal
// ============================================================================

type item struct {
	node      *dom.Node
	area      geom.Area
	transform geom.Matrix
	opacity   float32
	layer     int
}

type frame struct {
	id   dom.NodeID
	exit bool
}

// Traverse walks the tree depth-first and calls visit in paint order: tree order,
// stably sorted by effective layer ascending. Nodes without a layout area are skipped
// with their subtree, as are nodes whose accumulated opacity is zero.
func Traverse(tree *dom.Tree, l *layout.Layout, visit Visit) {
	layers := tree.Layers()
	var acc Accumulators

	itemsBuf, stackBuf := acquireItems(), acquireFrames()
	defer releaseItems(itemsBuf)
	defer releaseFrames(stackBuf)
	items, stack := *itemsBuf, append(*stackBuf, frame{id: dom.RootID})

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.exit {
			acc.Pop()
			continue
		}

		n, ok := tree.Get(f.id)
		if !ok {
			continue
		}
		area, ok := l.Get(f.id)
		if !ok {
			continue
		}

		acc.Push(n, area)
		if acc.Opacity() <= 0 {
			acc.Pop()
			continue
		}
		items = append(items, item{
			node:      n,
			area:      area,
			transform: acc.Transform(),
			opacity:   acc.Opacity(),
			layer:     layers.LayerOf(n.ID),
		})

		stack = append(stack, frame{id: f.id, exit: true})
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: n.Children[i]})
		}
	}

	// Keep the grown buffers for the next frame.
	*itemsBuf, *stackBuf = items, stack

	sort.SliceStable(items, func(i, j int) bool { return items[i].layer < items[j].layer })
	for _, it := range items {
		visit(it.node, it.area, it.transform, it.opacity)
	}
}

// Renderer paints frames through a Painter.
type Renderer struct {
	Painter Painter
}

// Render paints every visible node and returns how many were painted. When hovered
// is set, that node alone also gets a wireframe.
func (r *Renderer) Render(tree *dom.Tree, l *layout.Layout, hovered dom.NodeID) int {
	painted := 0
	Traverse(tree, l, func(n *dom.Node, area geom.Area, transform geom.Matrix, opacity float32) {
		r.Painter.Paint(n, area, transform, opacity)
		if hovered != dom.NoNode && n.ID == hovered {
			r.Painter.Wireframe(area)
		}
		painted++
	})
	return painted
}
