// Package dom holds the persistent node tree that the virtual tree's mutations are applied to.
// Layout, accessibility and rendering all read from it; only the UI goroutine writes.
package dom

import (
	"github.com/google/uuid"

	"github.com/agiangrant/lattice/geom"
)

// NodeID identifies a node in the persistent tree.
type NodeID uint64

const (
	// NoNode is the zero id; no node ever carries it.
	NoNode NodeID = 0
	// RootID is the id of the tree root, created with the tree.
	RootID NodeID = 1
)

// AccessibilityID identifies a node in the accessibility tree.
type AccessibilityID uint64

// RootAccessibilityID is reserved for the tree root.
const RootAccessibilityID AccessibilityID = 0

// Tag names understood by the layout and paint stages.
const (
	TagRoot      = "root"
	TagRect      = "rect"
	TagLabel     = "label"
	TagParagraph = "paragraph"
	TagText      = "text"
)

// ============================================================================
// Lengths
// ============================================================================

// LengthKind selects how a Length is resolved by the layout engine.
type LengthKind uint8

const (
	// LengthAuto sizes to content.
	LengthAuto LengthKind = iota
	// LengthPixels is a fixed size, multiplied by the scale factor.
	LengthPixels
	// LengthPercent is relative to the parent's inner size.
	LengthPercent
	// LengthFill takes the remaining space of the parent.
	LengthFill
)

// Length is a sizing hint for one axis.
type Length struct {
	Kind  LengthKind
	Value float32
}

// Pixels returns a fixed length.
func Pixels(v float32) Length { return Length{Kind: LengthPixels, Value: v} }

// Percent returns a parent-relative length.
func Percent(v float32) Length { return Length{Kind: LengthPercent, Value: v} }

// Fill returns a length taking the remaining space.
func Fill() Length { return Length{Kind: LengthFill} }

// Direction is the stacking axis for a node's children.
type Direction uint8

const (
	Vertical Direction = iota
	Horizontal
)

// ============================================================================
// Node
// ============================================================================

// Node is one element of the persistent tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Tag      string

	// Text content, only meaningful for TagText nodes.
	Text string
	// TextGroup is shared by a paragraph/label and its text children so they can be
	// re-measured together.
	TextGroup uuid.UUID

	// Layout attributes
	Width     Length
	Height    Length
	Direction Direction
	Padding   float32

	// Paint attributes
	Background string
	Color      string
	Opacity    float32
	Rotate     float32 // degrees, about the area center
	ScaleX     float32
	ScaleY     float32
	TranslateX float32
	TranslateY float32
	// Layer is relative to the parent's effective layer. Higher paints later.
	Layer int

	// Accessibility
	Accessible      bool
	AccessibilityID AccessibilityID
	Role            string
	Label           string

	// Extra keeps attributes no stage interprets, for plugins and painters.
	Extra map[string]string
}

func newNode(id, parent NodeID, tag string) *Node {
	return &Node{
		ID:      id,
		Parent:  parent,
		Tag:     tag,
		Opacity: 1,
		ScaleX:  1,
		ScaleY:  1,
	}
}

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool {
	return n.Tag == TagText
}

// HasTransform reports whether the node declares any transform.
func (n *Node) HasTransform() bool {
	return n.Rotate != 0 || n.ScaleX != 1 || n.ScaleY != 1 || n.TranslateX != 0 || n.TranslateY != 0
}

// Transform returns the node's own transform for the given area. Rotation and scale
// are applied about the area center, then the translation.
func (n *Node) Transform(area geom.Area) geom.Matrix {
	if !n.HasTransform() {
		return geom.Identity()
	}
	c := area.Center()
	m := geom.Translate(n.TranslateX, n.TranslateY)
	m = m.Mul(geom.Translate(c.X, c.Y))
	if n.Rotate != 0 {
		m = m.Mul(geom.Rotate(n.Rotate))
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		m = m.Mul(geom.Scale(n.ScaleX, n.ScaleY))
	}
	return m.Mul(geom.Translate(-c.X, -c.Y))
}
