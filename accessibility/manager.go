// Package accessibility rebuilds the accessibility tree after every layout and owns
// the focus and navigation-mode state.
package accessibility

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/layout"
)

// Node is one entry of the accessibility tree.
type Node struct {
	ID       dom.AccessibilityID
	NodeID   dom.NodeID
	Parent   dom.AccessibilityID
	Children []dom.AccessibilityID
	Area     geom.Area
	Role     string
	Label    string
}

// Tree is a snapshot handed to the accessibility host.
type Tree struct {
	Root  dom.AccessibilityID
	Focus dom.AccessibilityID
	Nodes map[dom.AccessibilityID]Node
	// Order is the traversal order used for focus navigation.
	Order []dom.AccessibilityID
}

// Manager holds the accessibility tree and the focused id. It is owned by the UI
// goroutine; focus changes are published on a FocusChannel for other goroutines.
type Manager struct {
	title   string
	nodes   map[dom.AccessibilityID]*Node
	order   []dom.AccessibilityID
	focused dom.AccessibilityID
	channel *FocusChannel
	log     zerolog.Logger
}

// NewManager returns a manager labelling the root with title. channel may be nil.
func NewManager(title string, channel *FocusChannel, logger zerolog.Logger) *Manager {
	if channel == nil {
		channel = NewFocusChannel(dom.RootAccessibilityID)
	}
	return &Manager{
		title:   title,
		nodes:   make(map[dom.AccessibilityID]*Node),
		focused: dom.RootAccessibilityID,
		channel: channel,
		log:     logger,
	}
}

var _ layout.Accessibility = (*Manager)(nil)

// Clear drops every node. Focus is kept so it survives a rebuild that keeps the
// focused node.
func (m *Manager) Clear() {
	clear(m.nodes)
	m.order = m.order[:0]
}

// Process rebuilds the tree in paint order, top layer first and tree order within a
// layer. The parent of a node is its nearest accessible ancestor. Focus on a node
// the rebuild dropped falls back to the root.
func (m *Manager) Process(tree *dom.Tree, l *layout.Layout) {
	m.Clear()

	tree.Layers().Descending(func(_ int, ids []dom.NodeID) {
		for _, id := range ids {
			n, ok := tree.Get(id)
			if !ok || !n.Accessible {
				continue
			}
			if _, dup := m.nodes[n.AccessibilityID]; dup {
				m.log.Debug().Uint64("a11y_id", uint64(n.AccessibilityID)).Msg("duplicate accessibility id")
				continue
			}
			area, _ := l.Get(id)
			entry := &Node{
				ID:     n.AccessibilityID,
				NodeID: id,
				Parent: accessibleAncestor(tree, n),
				Area:   area,
				Role:   n.Role,
				Label:  n.Label,
			}
			if id == dom.RootID && entry.Label == "" {
				entry.Label = m.title
			}
			m.nodes[entry.ID] = entry
			m.order = append(m.order, entry.ID)
		}
	})

	// Children are linked after insertion since a parent on a lower layer is
	// visited after its children.
	for _, id := range m.order {
		n := m.nodes[id]
		if n.ID == dom.RootAccessibilityID && n.NodeID == dom.RootID {
			continue
		}
		if parent, ok := m.nodes[n.Parent]; ok {
			parent.Children = append(parent.Children, id)
		}
	}

	if _, ok := m.nodes[m.focused]; !ok && m.focused != dom.RootAccessibilityID {
		m.log.Debug().Uint64("a11y_id", uint64(m.focused)).Msg("focused node removed")
		m.setFocus(dom.RootAccessibilityID)
	}
}

func accessibleAncestor(tree *dom.Tree, n *dom.Node) dom.AccessibilityID {
	for id := n.Parent; id != dom.NoNode; {
		p, ok := tree.Get(id)
		if !ok {
			break
		}
		if p.Accessible {
			return p.AccessibilityID
		}
		id = p.Parent
	}
	return dom.RootAccessibilityID
}

// Len returns the number of nodes.
func (m *Manager) Len() int {
	return len(m.nodes)
}

// NodeFor resolves an accessibility id to its tree node.
func (m *Manager) NodeFor(id dom.AccessibilityID) (dom.NodeID, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return dom.NoNode, false
	}
	return n.NodeID, true
}

// Snapshot copies the current tree.
func (m *Manager) Snapshot() Tree {
	t := Tree{
		Root:  dom.RootAccessibilityID,
		Focus: m.focused,
		Nodes: make(map[dom.AccessibilityID]Node, len(m.nodes)),
		Order: slices.Clone(m.order),
	}
	for id, n := range m.nodes {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		t.Nodes[id] = cp
	}
	return t
}

// ============================================================================
// Focus
// ============================================================================

// Focused returns the focused id.
func (m *Manager) Focused() dom.AccessibilityID {
	return m.focused
}

// Focus moves focus to id if it is in the current tree. Stale ids are ignored.
func (m *Manager) Focus(id dom.AccessibilityID) bool {
	if _, ok := m.nodes[id]; !ok {
		m.log.Debug().Uint64("a11y_id", uint64(id)).Msg("focus of unknown node")
		return false
	}
	m.setFocus(id)
	return true
}

// FocusNext moves focus forward in traversal order, wrapping.
func (m *Manager) FocusNext() dom.AccessibilityID {
	return m.step(1)
}

// FocusPrev moves focus backward in traversal order, wrapping.
func (m *Manager) FocusPrev() dom.AccessibilityID {
	return m.step(-1)
}

func (m *Manager) step(delta int) dom.AccessibilityID {
	if len(m.order) == 0 {
		return m.focused
	}
	i := slices.Index(m.order, m.focused)
	var next int
	switch {
	case i < 0 && delta > 0:
		next = 0
	case i < 0:
		next = len(m.order) - 1
	default:
		next = (i + delta + len(m.order)) % len(m.order)
	}
	m.setFocus(m.order[next])
	return m.focused
}

func (m *Manager) setFocus(id dom.AccessibilityID) {
	m.focused = id
	m.channel.Set(id)
}
