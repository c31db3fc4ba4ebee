// Package term hosts an Application in a terminal. tcell plays the native windowing
// system: its event queue is the host event loop, one cell is one physical pixel and
// the scale factor is always 1.
package term

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/platform"
)

// ErrUnsupported is returned for window operations a terminal cannot perform.
var ErrUnsupported = errors.New("term: unsupported window operation")

// Window adapts a tcell screen to retained.Window. It is only used on the host loop
// goroutine.
type Window struct {
	screen   tcell.Screen
	redraw   bool
	closed   bool
	cursor   platform.CursorIcon
	position geom.Point
}

// NewWindow wraps screen.
func NewWindow(screen tcell.Screen) *Window {
	return &Window{screen: screen, cursor: platform.CursorDefault}
}

func (w *Window) ScaleFactor() float32 { return 1 }

func (w *Window) InnerSize() geom.Size {
	cols, rows := w.screen.Size()
	return geom.Size{Width: float32(cols), Height: float32(rows)}
}

func (w *Window) RequestRedraw() { w.redraw = true }

// SetCursor records the icon; terminals do not expose the pointer shape.
func (w *Window) SetCursor(icon platform.CursorIcon) { w.cursor = icon }

// Cursor returns the last requested pointer icon.
func (w *Window) Cursor() platform.CursorIcon { return w.cursor }

func (w *Window) DragWindow() error { return ErrUnsupported }

func (w *Window) DragResizeWindow(platform.ResizeDirection) error { return ErrUnsupported }

func (w *Window) SetInnerSize(size geom.Size) {
	w.screen.SetSize(int(size.Width), int(size.Height))
}

// SetOuterPosition records the position; a terminal cannot be moved.
func (w *Window) SetOuterPosition(pos geom.Point) { w.position = pos }

func (w *Window) Close() { w.closed = true }

// Closed reports whether Close was called.
func (w *Window) Closed() bool { return w.closed }

// takeRedraw reports and clears a pending redraw request.
func (w *Window) takeRedraw() bool {
	r := w.redraw
	w.redraw = false
	return r
}
