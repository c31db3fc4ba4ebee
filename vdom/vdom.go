// Package vdom defines the boundary to the virtual-tree reconciler. The runtime only
// calls into it; diffing lives on the other side.
package vdom

import (
	"github.com/agiangrant/lattice/dom"
)

// VirtualTree is the reconciler the Application drives.
type VirtualTree interface {
	// HandleEvent queues a semantic event for the component owning target.
	HandleEvent(name string, payload any, target dom.NodeID, bubbles bool)

	// ProcessEvents runs the handlers of all queued events.
	ProcessEvents()

	// WorkReady delivers a value whenever the tree has pending work. It is the
	// suspension point of the polling loop and must never be closed.
	WorkReady() <-chan struct{}

	// RenderMutations returns the diff produced since the previous call.
	RenderMutations() dom.Mutations

	// ReplaceTemplate swaps a hot-reloaded template.
	ReplaceTemplate(t Template)

	// InsertRootContext makes v available to every component.
	InsertRootContext(v any)
}

// Template is a named, pre-built fragment of mutations.
type Template struct {
	Name      string
	Mutations dom.Mutations
}
