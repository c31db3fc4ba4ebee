package dom

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tree is the persistent node tree. It is owned by the UI goroutine and is not safe
// for concurrent use.
type Tree struct {
	nodes map[NodeID]*Node

	// Text groups: group id -> members (container first, then text leaves).
	groups      map[uuid.UUID][]NodeID
	dirtyGroups map[uuid.UUID]struct{}

	log zerolog.Logger
}

// NewTree creates a tree holding only the root node.
func NewTree(logger zerolog.Logger) *Tree {
	root := newNode(RootID, NoNode, TagRoot)
	root.Width = Fill()
	root.Height = Fill()
	root.Accessible = true
	root.AccessibilityID = RootAccessibilityID
	root.Role = "window"

	return &Tree{
		nodes:       map[NodeID]*Node{RootID: root},
		groups:      make(map[uuid.UUID][]NodeID),
		dirtyGroups: make(map[uuid.UUID]struct{}),
		log:         logger,
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Get returns the node with the given id.
func (t *Tree) Get(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Walk visits the tree depth-first in pre-order. Returning false from fn skips the
// node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(n *Node, depth int, fn func(n *Node, depth int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, id := range n.Children {
		if child, ok := t.nodes[id]; ok {
			t.walk(child, depth+1, fn)
		}
	}
}

// Contains reports whether ancestor is id itself or one of its ancestors.
func (t *Tree) Contains(ancestor, id NodeID) bool {
	for id != NoNode {
		if id == ancestor {
			return true
		}
		n, ok := t.nodes[id]
		if !ok {
			return false
		}
		id = n.Parent
	}
	return false
}

// ============================================================================
// Text groups
// ============================================================================

// TextGroup returns the members of a text group, or nil if the group is unknown.
func (t *Tree) TextGroup(id uuid.UUID) []NodeID {
	return t.groups[id]
}

// TextGroupCount returns the number of live text groups.
func (t *Tree) TextGroupCount() int {
	return len(t.groups)
}

// TakeDirtyTextGroups returns the groups whose text changed since the last call.
func (t *Tree) TakeDirtyTextGroups() []uuid.UUID {
	if len(t.dirtyGroups) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(t.dirtyGroups))
	for id := range t.dirtyGroups {
		out = append(out, id)
	}
	clear(t.dirtyGroups)
	return out
}

func (t *Tree) joinGroup(n *Node, group uuid.UUID) {
	n.TextGroup = group
	t.groups[group] = append(t.groups[group], n.ID)
	t.dirtyGroups[group] = struct{}{}
}

func (t *Tree) leaveGroup(n *Node) {
	if n.TextGroup == uuid.Nil {
		return
	}
	members := t.groups[n.TextGroup]
	for i, id := range members {
		if id == n.ID {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(t.groups, n.TextGroup)
		delete(t.dirtyGroups, n.TextGroup)
		return
	}
	t.groups[n.TextGroup] = members
	t.dirtyGroups[n.TextGroup] = struct{}{}
}

// ============================================================================
// Layers
// ============================================================================

// Layers groups node ids by effective layer, each group in tree order.
type Layers struct {
	keys  []int
	nodes map[int][]NodeID
	of    map[NodeID]int
}

// Layers computes the effective layer of every node: the parent's effective layer
// plus the node's own Layer.
func (t *Tree) Layers() Layers {
	l := Layers{
		nodes: make(map[int][]NodeID),
		of:    make(map[NodeID]int, len(t.nodes)),
	}
	t.Walk(func(n *Node, _ int) bool {
		layer := n.Layer
		if n.Parent != NoNode {
			layer += l.of[n.Parent]
		}
		l.of[n.ID] = layer
		if _, seen := l.nodes[layer]; !seen {
			l.keys = append(l.keys, layer)
		}
		l.nodes[layer] = append(l.nodes[layer], n.ID)
		return true
	})
	sort.Ints(l.keys)
	return l
}

// Len returns the number of distinct layers.
func (l Layers) Len() int {
	return len(l.keys)
}

// LayerOf returns the effective layer of id.
func (l Layers) LayerOf(id NodeID) int {
	return l.of[id]
}

// Ascending calls fn for each layer from bottom to top.
func (l Layers) Ascending(fn func(layer int, ids []NodeID)) {
	for _, k := range l.keys {
		fn(k, l.nodes[k])
	}
}

// Descending calls fn for each layer from top to bottom.
func (l Layers) Descending(fn func(layer int, ids []NodeID)) {
	for i := len(l.keys) - 1; i >= 0; i-- {
		fn(l.keys[i], l.nodes[l.keys[i]])
	}
}

// ============================================================================
// Mutation Applier
// ============================================================================

// Apply applies a diff batch in order and reports whether the result needs a
// repaint and/or a relayout. An empty batch reports (false, false). Mutations that
// reference unknown nodes are skipped.
func (t *Tree) Apply(batch Mutations) (repaint, relayout bool) {
	for _, m := range batch {
		switch m := m.(type) {
		case CreateElement:
			if t.insert(newNode(m.ID, m.Parent, m.Tag), m.Index) {
				if m.Tag == TagParagraph || m.Tag == TagLabel {
					t.joinGroup(t.nodes[m.ID], uuid.New())
				}
				relayout = true
			}
		case CreateText:
			n := newNode(m.ID, m.Parent, TagText)
			n.Text = m.Text
			if t.insert(n, m.Index) {
				group := t.nodes[m.Parent].TextGroup
				if group == uuid.Nil {
					group = uuid.New()
				}
				t.joinGroup(n, group)
				relayout = true
			}
		case Remove:
			if t.remove(m.ID) {
				relayout = true
			}
		case SetAttribute:
			n, ok := t.nodes[m.ID]
			if !ok {
				t.log.Debug().Uint64("node", uint64(m.ID)).Str("attr", m.Name).Msg("set attribute on unknown node")
				continue
			}
			if !n.setAttribute(m.Name, m.Value) {
				t.log.Debug().Uint64("node", uint64(m.ID)).Str("attr", m.Name).Str("value", m.Value).Msg("invalid attribute value")
				continue
			}
			if EffectOf(m.Name) == EffectLayout {
				relayout = true
			}
			repaint = true
		case SetText:
			n, ok := t.nodes[m.ID]
			if !ok || !n.IsText() {
				t.log.Debug().Uint64("node", uint64(m.ID)).Msg("set text on unknown node")
				continue
			}
			if n.Text == m.Text {
				continue
			}
			n.Text = m.Text
			if n.TextGroup != uuid.Nil {
				t.dirtyGroups[n.TextGroup] = struct{}{}
			}
			relayout = true
		}
	}
	if relayout {
		repaint = true
	}
	return repaint, relayout
}

func (t *Tree) insert(n *Node, index int) bool {
	if n.ID == NoNode {
		return false
	}
	if _, exists := t.nodes[n.ID]; exists {
		t.log.Debug().Uint64("node", uint64(n.ID)).Msg("create of existing node")
		return false
	}
	parent, ok := t.nodes[n.Parent]
	if !ok {
		t.log.Debug().Uint64("node", uint64(n.ID)).Uint64("parent", uint64(n.Parent)).Msg("create under unknown parent")
		return false
	}
	t.nodes[n.ID] = n
	if index < 0 || index >= len(parent.Children) {
		parent.Children = append(parent.Children, n.ID)
	} else {
		parent.Children = append(parent.Children, NoNode)
		copy(parent.Children[index+1:], parent.Children[index:])
		parent.Children[index] = n.ID
	}
	return true
}

func (t *Tree) remove(id NodeID) bool {
	n, ok := t.nodes[id]
	if !ok || id == RootID {
		return false
	}
	if parent, ok := t.nodes[n.Parent]; ok {
		for i, c := range parent.Children {
			if c == id {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
	}
	t.drop(n)
	return true
}

func (t *Tree) drop(n *Node) {
	for _, c := range n.Children {
		if child, ok := t.nodes[c]; ok {
			t.drop(child)
		}
	}
	t.leaveGroup(n)
	delete(t.nodes, n.ID)
}
