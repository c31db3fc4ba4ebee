package retained

import (
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/platform"
)

// Window is the host window as seen by the Application. Hosts implement it over
// their native handle; every method is called on the UI goroutine.
type Window interface {
	// ScaleFactor returns the DPI scale of the monitor the window is on.
	ScaleFactor() float32

	// InnerSize returns the drawable size in physical pixels.
	InnerSize() geom.Size

	// RequestRedraw schedules a redraw callback on a later host turn.
	RequestRedraw()

	SetCursor(icon platform.CursorIcon)

	// DragWindow starts an interactive move. Hosts without support return an error.
	DragWindow() error

	// DragResizeWindow starts an interactive resize from the given edge.
	DragResizeWindow(dir platform.ResizeDirection) error

	SetInnerSize(size geom.Size)
	SetOuterPosition(pos geom.Point)

	// Close ends the host event loop.
	Close()
}
