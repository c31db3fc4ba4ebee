// Package platform is the command channel between UI code and the host window. UI code
// never holds the native window; it sends Commands that the Application executes on
// the UI goroutine.
package platform

import (
	"github.com/google/uuid"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/vdom"
)

// CursorIcon names a pointer shape. Hosts map it to their native cursor set.
type CursorIcon string

const (
	CursorDefault  CursorIcon = "default"
	CursorPointer  CursorIcon = "pointer"
	CursorText     CursorIcon = "text"
	CursorMove     CursorIcon = "move"
	CursorNotAllow CursorIcon = "not-allowed"
	CursorEWResize CursorIcon = "ew-resize"
	CursorNSResize CursorIcon = "ns-resize"
)

// ResizeDirection is the window edge or corner being dragged.
type ResizeDirection uint8

const (
	ResizeEast ResizeDirection = iota
	ResizeNorth
	ResizeNorthEast
	ResizeNorthWest
	ResizeSouth
	ResizeSouthEast
	ResizeSouthWest
	ResizeWest
)

// AccessibilityActionKind is the action an assistive technology requested.
type AccessibilityActionKind uint8

const (
	// ActionFocus moves focus to the target.
	ActionFocus AccessibilityActionKind = iota
	// ActionDefault activates the target (a click).
	ActionDefault
)

// Command is a request to the host or the Application. Exactly one command is
// handled per send.
type Command interface {
	command()
}

// Window commands.
type (
	// SetCursor changes the pointer icon.
	SetCursor struct{ Icon CursorIcon }
	// DragWindow starts moving the window with the pointer.
	DragWindow struct{}
	// DragResizeWindow starts resizing the window from an edge.
	DragResizeWindow struct{ Direction ResizeDirection }
	// SetWindowSize resizes the window.
	SetWindowSize struct{ Size geom.Size }
	// SetWindowPosition moves the window.
	SetWindowPosition struct{ Position geom.Point }
	// SetWindowSizeAndPosition resizes and moves the window.
	SetWindowSizeAndPosition struct {
		Size     geom.Size
		Position geom.Point
	}
	// RequestRerender asks for another frame.
	RequestRerender struct{}
	// ExitApp closes the application.
	ExitApp struct{}
)

// Focus commands.
type (
	// FocusNode focuses an accessibility node. Unknown ids are ignored.
	FocusNode struct{ ID dom.AccessibilityID }
	// FocusNext moves focus forward, wrapping.
	FocusNext struct{}
	// FocusPrev moves focus backward, wrapping.
	FocusPrev struct{}
)

// Tree update signals.
type (
	// UpdateTemplate hot-swaps a template in the virtual tree.
	UpdateTemplate struct{ Template vdom.Template }
	// PollPending resumes the polling loop; sent by the waker.
	PollPending struct{}
	// RemeasureTextGroup re-measures one text group without a full relayout.
	RemeasureTextGroup struct{ ID uuid.UUID }
)

// Host-native events forwarded through the channel.
type (
	// ScaleFactorChanged reports a new DPI scale.
	ScaleFactorChanged struct{ Scale float32 }
	// AccessibilityAction is an action request from the accessibility host.
	AccessibilityAction struct {
		Action AccessibilityActionKind
		Target dom.AccessibilityID
	}
	// WindowMoved reports the new outer position of the window.
	WindowMoved struct{ Position geom.Point }
)

func (SetCursor) command()                {}
func (DragWindow) command()               {}
func (DragResizeWindow) command()         {}
func (SetWindowSize) command()            {}
func (SetWindowPosition) command()        {}
func (SetWindowSizeAndPosition) command() {}
func (RequestRerender) command()          {}
func (ExitApp) command()                  {}
func (FocusNode) command()                {}
func (FocusNext) command()                {}
func (FocusPrev) command()                {}
func (UpdateTemplate) command()           {}
func (PollPending) command()              {}
func (RemeasureTextGroup) command()       {}
func (ScaleFactorChanged) command()       {}
func (AccessibilityAction) command()      {}
func (WindowMoved) command()              {}
