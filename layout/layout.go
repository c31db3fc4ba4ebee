// Package layout maps the node tree onto absolute areas. The constraint solving is
// delegated to an Engine; the Driver sequences a recompute with the accessibility and
// paint stages.
package layout

import (
	"github.com/google/uuid"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
)

// Layout stores the computed area of every laid out node.
type Layout struct {
	areas map[dom.NodeID]geom.Area
}

// New returns an empty layout.
func New() *Layout {
	return &Layout{areas: make(map[dom.NodeID]geom.Area)}
}

// Get returns the area of id.
func (l *Layout) Get(id dom.NodeID) (geom.Area, bool) {
	a, ok := l.areas[id]
	return a, ok
}

// Set records the area of id.
func (l *Layout) Set(id dom.NodeID, a geom.Area) {
	l.areas[id] = a
}

// Len returns the number of laid out nodes.
func (l *Layout) Len() int {
	return len(l.areas)
}

// Reset invalidates every cached area.
func (l *Layout) Reset() {
	clear(l.areas)
}

// Engine is the layout algorithm.
type Engine interface {
	// Measure lays out the whole tree inside viewport.
	Measure(tree *dom.Tree, out *Layout, viewport geom.Area, fonts []string, scale float32)

	// MeasureTextGroup re-measures one text group in place. It returns false when the
	// group is unknown.
	MeasureTextGroup(tree *dom.Tree, out *Layout, group uuid.UUID, fonts []string, scale float32) bool
}

// Accessibility is the stage rebuilt after every layout.
type Accessibility interface {
	Clear()
	Process(tree *dom.Tree, l *Layout)
}

// Observer sees the layout right before and after a recompute.
type Observer interface {
	StartedLayout(l *Layout)
	FinishedLayout(l *Layout)
}
