package layout

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
)

// TextMeasurer returns the unscaled size of a run of text.
type TextMeasurer interface {
	MeasureText(text string, fonts []string) geom.Size
}

// fixedTextMeasurer assumes a monospace font of the given cell size.
type fixedTextMeasurer struct {
	cell geom.Size
}

func (m fixedTextMeasurer) MeasureText(text string, _ []string) geom.Size {
	return geom.Size{Width: float32(utf8.RuneCountInString(text)) * m.cell.Width, Height: m.cell.Height}
}

// StackEngine is a small stacking layout: each node places its children one after
// another along its direction. Paragraphs and labels always flow horizontally.
// Sizes resolve as pixels (times scale), percent of the parent's inner size, fill
// (an equal share of what is left) or auto (content size).
type StackEngine struct {
	Text TextMeasurer
}

// NewStackEngine returns an engine measuring text with m. A nil m assumes a
// 7x14 monospace cell.
func NewStackEngine(m TextMeasurer) *StackEngine {
	if m == nil {
		m = fixedTextMeasurer{cell: geom.Size{Width: 7, Height: 14}}
	}
	return &StackEngine{Text: m}
}

// Measure implements Engine.
func (e *StackEngine) Measure(tree *dom.Tree, out *Layout, viewport geom.Area, fonts []string, scale float32) {
	out.Reset()
	e.layoutNode(tree, out, tree.Root(), viewport, fonts, scale)
}

// MeasureTextGroup implements Engine. The group's container keeps its area and its
// subtree is laid out again inside it.
func (e *StackEngine) MeasureTextGroup(tree *dom.Tree, out *Layout, group uuid.UUID, fonts []string, scale float32) bool {
	members := tree.TextGroup(group)
	if len(members) == 0 {
		return false
	}
	container, ok := tree.Get(members[0])
	if !ok {
		return false
	}
	if container.IsText() && container.Parent != dom.NoNode {
		// A text leaf without a paragraph owns its group; reflow inside its parent.
		if parent, ok := tree.Get(container.Parent); ok {
			container = parent
		}
	}
	area, ok := out.Get(container.ID)
	if !ok {
		return false
	}
	e.layoutNode(tree, out, container, area, fonts, scale)
	return true
}

func (e *StackEngine) direction(n *dom.Node) dom.Direction {
	if n.Tag == dom.TagParagraph || n.Tag == dom.TagLabel {
		return dom.Horizontal
	}
	return n.Direction
}

func (e *StackEngine) layoutNode(tree *dom.Tree, out *Layout, n *dom.Node, area geom.Area, fonts []string, scale float32) {
	out.Set(n.ID, area)
	if len(n.Children) == 0 {
		return
	}

	pad := n.Padding * scale
	inner := geom.Area{
		Origin: geom.Point{X: area.Origin.X + pad, Y: area.Origin.Y + pad},
		Size:   geom.Size{Width: max(0, area.Size.Width-2*pad), Height: max(0, area.Size.Height-2*pad)},
	}
	horizontal := e.direction(n) == dom.Horizontal

	children := make([]*dom.Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c, ok := tree.Get(id); ok {
			children = append(children, c)
		}
	}

	mainAvail, crossAvail := inner.Size.Height, inner.Size.Width
	if horizontal {
		mainAvail, crossAvail = inner.Size.Width, inner.Size.Height
	}

	// First pass: everything except fill on the main axis.
	sizes := make([]geom.Size, len(children))
	used := float32(0)
	fills := 0
	for i, c := range children {
		intrinsic := e.intrinsic(tree, c, fonts, scale)
		w := resolveLength(c.Width, inner.Size.Width, intrinsic.Width, scale)
		h := resolveLength(c.Height, inner.Size.Height, intrinsic.Height, scale)
		mainLen := c.Height
		if horizontal {
			mainLen = c.Width
		}
		if mainLen.Kind == dom.LengthFill {
			fills++
		} else if horizontal {
			used += w
		} else {
			used += h
		}
		sizes[i] = geom.Size{Width: w, Height: h}
	}

	share := float32(0)
	if fills > 0 {
		share = max(0, mainAvail-used) / float32(fills)
	}

	cursor := inner.Origin
	for i, c := range children {
		s := sizes[i]
		if horizontal {
			if c.Width.Kind == dom.LengthFill {
				s.Width = share
			}
			if c.Height.Kind == dom.LengthFill {
				s.Height = crossAvail
			}
		} else {
			if c.Height.Kind == dom.LengthFill {
				s.Height = share
			}
			if c.Width.Kind == dom.LengthFill {
				s.Width = crossAvail
			}
		}
		e.layoutNode(tree, out, c, geom.Area{Origin: cursor, Size: s}, fonts, scale)
		if horizontal {
			cursor.X += s.Width
		} else {
			cursor.Y += s.Height
		}
	}
}

// intrinsic returns the content size of n. Fill and percent lengths contribute
// nothing since they depend on the parent.
func (e *StackEngine) intrinsic(tree *dom.Tree, n *dom.Node, fonts []string, scale float32) geom.Size {
	if n.IsText() {
		s := e.Text.MeasureText(n.Text, fonts)
		return geom.Size{Width: s.Width * scale, Height: s.Height * scale}
	}

	horizontal := e.direction(n) == dom.Horizontal
	var content geom.Size
	for _, id := range n.Children {
		c, ok := tree.Get(id)
		if !ok {
			continue
		}
		ci := e.intrinsic(tree, c, fonts, scale)
		cw := resolveLength(c.Width, 0, ci.Width, scale)
		ch := resolveLength(c.Height, 0, ci.Height, scale)
		if horizontal {
			content.Width += cw
			content.Height = max(content.Height, ch)
		} else {
			content.Height += ch
			content.Width = max(content.Width, cw)
		}
	}
	pad := 2 * n.Padding * scale
	return geom.Size{Width: content.Width + pad, Height: content.Height + pad}
}

func resolveLength(l dom.Length, available, intrinsic, scale float32) float32 {
	switch l.Kind {
	case dom.LengthPixels:
		return l.Value * scale
	case dom.LengthPercent:
		return available * l.Value / 100
	case dom.LengthFill:
		return 0
	default:
		return intrinsic
	}
}
