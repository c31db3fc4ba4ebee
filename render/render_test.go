package render

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/layout"
)

type visited struct {
	id        dom.NodeID
	transform geom.Matrix
	opacity   float32
}

type fakePainter struct {
	painted    []dom.NodeID
	wireframes []geom.Area
}

func (p *fakePainter) Paint(n *dom.Node, _ geom.Area, _ geom.Matrix, _ float32) {
	p.painted = append(p.painted, n.ID)
}

func (p *fakePainter) Wireframe(area geom.Area) {
	p.wireframes = append(p.wireframes, area)
}

func build(t *testing.T, batch dom.Mutations) (*dom.Tree, *layout.Layout) {
	t.Helper()
	tree := dom.NewTree(zerolog.Nop())
	tree.Apply(batch)
	l := layout.New()
	tree.Walk(func(n *dom.Node, depth int) bool {
		l.Set(n.ID, geom.Area{
			Origin: geom.Point{X: float32(depth * 10), Y: float32(n.ID)},
			Size:   geom.Size{Width: 10, Height: 10},
		})
		return true
	})
	return tree, l
}

func collect(tree *dom.Tree, l *layout.Layout) []visited {
	var out []visited
	Traverse(tree, l, func(n *dom.Node, _ geom.Area, m geom.Matrix, opacity float32) {
		out = append(out, visited{id: n.ID, transform: m, opacity: opacity})
	})
	return out
}

func TestOpacityIsMultiplied(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 4, Parent: 3, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: 2, Name: dom.AttrOpacity, Value: "1.0"},
		dom.SetAttribute{ID: 3, Name: dom.AttrOpacity, Value: "0.5"},
		dom.SetAttribute{ID: 4, Name: dom.AttrOpacity, Value: "0.8"},
	})

	got := collect(tree, l)
	require.Len(t, got, 4)
	assert.Equal(t, dom.NodeID(4), got[3].id)
	assert.InDelta(t, 0.4, got[3].opacity, 1e-6)
	assert.InDelta(t, 0.5, got[2].opacity, 1e-6)
}

func TestZeroOpacitySkipsSubtree(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 4, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: 2, Name: dom.AttrOpacity, Value: "0"},
	})

	var ids []dom.NodeID
	for _, v := range collect(tree, l) {
		ids = append(ids, v.id)
	}
	assert.Equal(t, []dom.NodeID{dom.RootID, 4}, ids)
}

func TestTransformsCompose(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: 2, Name: dom.AttrTranslate, Value: "10 0"},
		dom.SetAttribute{ID: 3, Name: dom.AttrTranslate, Value: "0 5"},
	})

	got := collect(tree, l)
	require.Len(t, got, 3)
	assert.True(t, got[0].transform.IsIdentity())
	assert.Equal(t, geom.Point{X: 10, Y: 0}, got[1].transform.Apply(geom.Point{}))
	assert.Equal(t, geom.Point{X: 10, Y: 5}, got[2].transform.Apply(geom.Point{}))
}

func TestPaintOrderRespectsLayers(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 4, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 5, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: 2, Name: dom.AttrLayer, Value: "2"},
		dom.SetAttribute{ID: 5, Name: dom.AttrLayer, Value: "-1"},
	})

	var ids []dom.NodeID
	for _, v := range collect(tree, l) {
		ids = append(ids, v.id)
	}
	// 3 inherits layer 2 from its parent.
	assert.Equal(t, []dom.NodeID{5, dom.RootID, 4, 2, 3}, ids)
}

func TestUnlaidNodesAreSkipped(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
	})
	tree.Apply(dom.Mutations{dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagRect, Index: -1}})

	assert.Len(t, collect(tree, l), 2)
}

func TestWireframeOnlyForHovered(t *testing.T) {
	tree, l := build(t, dom.Mutations{
		dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.CreateElement{ID: 3, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
	})
	p := &fakePainter{}
	r := &Renderer{Painter: p}

	assert.Equal(t, 3, r.Render(tree, l, 3))
	want, _ := l.Get(3)
	assert.Equal(t, []geom.Area{want}, p.wireframes)

	p.wireframes = nil
	r.Render(tree, l, dom.NoNode)
	assert.Empty(t, p.wireframes)
}

func TestReleasedItemsDropNodes(t *testing.T) {
	s := acquireItems()
	*s = append(*s, item{node: &dom.Node{ID: 9}})
	releaseItems(s)

	assert.Empty(t, *s)
	assert.Nil(t, (*s)[:1][0].node)
}
