package term

import (
	"container/list"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
)

// ============================================================================
// Text measurement
// ============================================================================

// Measurer measures text in terminal cells. Line widths are kept in a bounded LRU
// since layout measures the same labels on every pass.
type Measurer struct {
	mu     sync.Mutex
	limit  int
	widths map[string]*list.Element
	recent *list.List // of *measuredLine, front is newest
	hits   uint64
	misses uint64
}

type measuredLine struct {
	text  string
	width float32
}

// NewMeasurer returns a measurer remembering up to limit lines.
func NewMeasurer(limit int) *Measurer {
	if limit < 1 {
		limit = 1024
	}
	return &Measurer{
		limit:  limit,
		widths: make(map[string]*list.Element),
		recent: list.New(),
	}
}

// MeasureText implements layout.TextMeasurer. Each line is one row; the width is
// that of the widest line.
func (m *Measurer) MeasureText(text string, _ []string) geom.Size {
	lines := strings.Split(text, "\n")

	m.mu.Lock()
	defer m.mu.Unlock()
	var width float32
	for _, line := range lines {
		width = max(width, m.lineWidth(line))
	}
	return geom.Size{Width: width, Height: float32(len(lines))}
}

// lineWidth must be called with mu held.
func (m *Measurer) lineWidth(line string) float32 {
	if line == "" {
		return 0
	}
	if e, ok := m.widths[line]; ok {
		m.hits++
		m.recent.MoveToFront(e)
		return e.Value.(*measuredLine).width
	}

	m.misses++
	w := float32(runewidth.StringWidth(line))
	if m.recent.Len() >= m.limit {
		oldest := m.recent.Remove(m.recent.Back()).(*measuredLine)
		delete(m.widths, oldest.text)
	}
	m.widths[line] = m.recent.PushFront(&measuredLine{text: line, width: w})
	return w
}

// Len returns the number of remembered lines.
func (m *Measurer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recent.Len()
}

// Stats returns how many line measurements were served from memory and how many
// were computed.
func (m *Measurer) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// ============================================================================
// Painter
// ============================================================================

// Painter draws nodes into a tcell screen. Rotation cannot be represented in cells,
// so only the translation and scale of a transform are honoured. Translucent nodes
// are drawn dim.
type Painter struct {
	screen    tcell.Screen
	base      tcell.Style
	wireframe tcell.Style
}

// NewPainter returns a painter for screen.
func NewPainter(screen tcell.Screen) *Painter {
	return &Painter{
		screen:    screen,
		base:      tcell.StyleDefault,
		wireframe: tcell.StyleDefault.Foreground(tcell.ColorYellow),
	}
}

// cells converts a transformed area to a clipped cell rectangle.
func (p *Painter) cells(area geom.Area, m geom.Matrix) (x0, y0, x1, y1 int) {
	origin := m.Apply(area.Origin)
	x0 = int(math.Round(float64(origin.X)))
	y0 = int(math.Round(float64(origin.Y)))
	x1 = x0 + int(math.Round(float64(area.Size.Width*m.A)))
	y1 = y0 + int(math.Round(float64(area.Size.Height*m.D)))

	cols, rows := p.screen.Size()
	return max(x0, 0), max(y0, 0), min(x1, cols), min(y1, rows)
}

// Paint implements render.Painter.
func (p *Painter) Paint(n *dom.Node, area geom.Area, m geom.Matrix, opacity float32) {
	x0, y0, x1, y1 := p.cells(area, m)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	if n.Background != "" {
		style := p.base.Background(tcell.GetColor(n.Background)).Dim(opacity < 1)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				p.screen.SetContent(x, y, ' ', nil, style)
			}
		}
	}

	if !n.IsText() {
		return
	}
	y := y0
	for _, line := range strings.Split(n.Text, "\n") {
		if y >= y1 {
			break
		}
		x := x0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if x+w > x1 {
				break
			}
			// Keep whatever background is already under the text.
			_, _, under, _ := p.screen.GetContent(x, y)
			style := under.Dim(opacity < 1)
			if n.Color != "" {
				style = style.Foreground(tcell.GetColor(n.Color))
			}
			p.screen.SetContent(x, y, r, nil, style)
			x += w
		}
		y++
	}
}

// Wireframe implements render.Painter by outlining area.
func (p *Painter) Wireframe(area geom.Area) {
	x0, y0, x1, y1 := p.cells(area, geom.Identity())
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}
	right, bottom := x1-1, y1-1
	for x := x0 + 1; x < right; x++ {
		p.screen.SetContent(x, y0, tcell.RuneHLine, nil, p.wireframe)
		p.screen.SetContent(x, bottom, tcell.RuneHLine, nil, p.wireframe)
	}
	for y := y0 + 1; y < bottom; y++ {
		p.screen.SetContent(x0, y, tcell.RuneVLine, nil, p.wireframe)
		p.screen.SetContent(right, y, tcell.RuneVLine, nil, p.wireframe)
	}
	p.screen.SetContent(x0, y0, tcell.RuneULCorner, nil, p.wireframe)
	p.screen.SetContent(right, y0, tcell.RuneURCorner, nil, p.wireframe)
	p.screen.SetContent(x0, bottom, tcell.RuneLLCorner, nil, p.wireframe)
	p.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, p.wireframe)
}
