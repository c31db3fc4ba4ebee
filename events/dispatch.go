package events

import (
	"slices"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/layout"
)

// NodesState is the pointer state derived from input. Only ProcessEvents writes it;
// the render stage reads Hovered for debug highlighting.
type NodesState struct {
	// Hovered is the deepest node under the cursor.
	Hovered dom.NodeID
	// HoveredChain runs from the root to Hovered.
	HoveredChain []dom.NodeID
	// Pressed holds pointer capture between mouse down and up.
	Pressed       dom.NodeID
	PressedButton MouseButton
}

// ============================================================================
// Hit Testing
// ============================================================================

// HitTest returns the topmost node whose area contains p: the highest effective layer
// wins, then the latest node in tree order. The chain runs from the root to the
// target. Returns dom.NoNode when nothing is hit.
func HitTest(tree *dom.Tree, l *layout.Layout, p geom.Point) (dom.NodeID, []dom.NodeID) {
	target := dom.NoNode
	tree.Layers().Descending(func(_ int, ids []dom.NodeID) {
		if target != dom.NoNode {
			return
		}
		// Later nodes paint on top within a layer.
		for i := len(ids) - 1; i >= 0; i-- {
			if a, ok := l.Get(ids[i]); ok && a.Contains(p) {
				target = ids[i]
				return
			}
		}
	})
	if target == dom.NoNode {
		return dom.NoNode, nil
	}
	return target, chainOf(tree, target)
}

func chainOf(tree *dom.Tree, id dom.NodeID) []dom.NodeID {
	var chain []dom.NodeID
	for id != dom.NoNode {
		chain = append(chain, id)
		n, ok := tree.Get(id)
		if !ok {
			break
		}
		id = n.Parent
	}
	slices.Reverse(chain)
	return chain
}

// ============================================================================
// Dispatch
// ============================================================================

// ProcessEvents drains queue in arrival order, updates state and emits the derived
// tree events. Layout areas are in physical pixels; element coordinates are divided
// by scale so handlers see logical pixels.
func ProcessEvents(tree *dom.Tree, l *layout.Layout, queue *Queue, out *Emitter, state *NodesState, scale float32) {
	if scale <= 0 {
		scale = 1
	}
	for _, ev := range queue.Drain() {
		if ev.Type.IsKeyboard() {
			// Keyboard listeners are global.
			out.Emit(DomEvent{
				Name: ev.Type.String(),
				Node: dom.RootID,
				Data: KeyData{Key: ev.Key, Modifiers: ev.Modifiers},
			})
			continue
		}

		target, chain := HitTest(tree, l, ev.Cursor)
		pointer := func(node dom.NodeID) PointerData {
			d := PointerData{Screen: ev.Cursor, Button: ev.Button, Modifiers: ev.Modifiers}
			if a, ok := l.Get(node); ok {
				local := a.Local(ev.Cursor)
				d.Element = geom.Point{X: local.X / scale, Y: local.Y / scale}
			}
			return d
		}

		switch ev.Type {
		case EventMouseMove:
			if target != state.Hovered {
				if state.Hovered != dom.NoNode {
					out.Emit(DomEvent{Name: NameMouseLeave, Node: state.Hovered, Data: pointer(state.Hovered)})
				}
				if target != dom.NoNode {
					out.Emit(DomEvent{Name: NameMouseEnter, Node: target, Data: pointer(target)})
				}
			}
			state.Hovered = target
			state.HoveredChain = chain
			if target != dom.NoNode {
				out.Emit(DomEvent{Name: ev.Type.String(), Node: target, Data: pointer(target), Bubbles: true})
			}

		case EventMouseDown:
			if target == dom.NoNode {
				continue
			}
			state.Pressed = target
			state.PressedButton = ev.Button
			out.Emit(DomEvent{Name: ev.Type.String(), Node: target, Data: pointer(target), Bubbles: true})

		case EventMouseUp:
			if target != dom.NoNode {
				out.Emit(DomEvent{Name: ev.Type.String(), Node: target, Data: pointer(target), Bubbles: true})
			}
			if state.Pressed != dom.NoNode && target == state.Pressed && ev.Button == state.PressedButton {
				out.Emit(DomEvent{Name: NameClick, Node: target, Data: pointer(target), Bubbles: true})
			}
			state.Pressed = dom.NoNode
			state.PressedButton = MouseButtonNone

		case EventWheel:
			if target == dom.NoNode {
				continue
			}
			out.Emit(DomEvent{
				Name:    ev.Type.String(),
				Node:    target,
				Data:    WheelData{DeltaX: ev.DeltaX, DeltaY: ev.DeltaY, Modifiers: ev.Modifiers},
				Bubbles: true,
			})
		}
	}
}
