// Package events turns raw host input into semantic tree events. Host callbacks push
// PlatformEvents onto a Queue; ProcessEvents drains it once per host turn, derives
// hover and press state, and emits DomEvents for the polling loop.
package events

import (
	"sync"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
)

// ============================================================================
// Event Types
// ============================================================================

// EventType identifies the kind of host input.
type EventType uint8

const (
	// Pointer events
	EventMouseMove EventType = iota + 1
	EventMouseDown
	EventMouseUp
	EventWheel

	// Keyboard events
	EventKeyDown
	EventKeyUp
)

var eventNames = [...]string{
	EventMouseMove: "mousemove",
	EventMouseDown: "mousedown",
	EventMouseUp:   "mouseup",
	EventWheel:     "wheel",
	EventKeyDown:   "keydown",
	EventKeyUp:     "keyup",
}

// String returns the tree event name.
func (t EventType) String() string {
	if int(t) < len(eventNames) && eventNames[t] != "" {
		return eventNames[t]
	}
	return "unknown"
}

// IsKeyboard reports whether the event comes from the keyboard.
func (t EventType) IsKeyboard() bool {
	return t == EventKeyDown || t == EventKeyUp
}

// Semantic event names derived by the dispatcher.
const (
	NameMouseEnter = "mouseenter"
	NameMouseLeave = "mouseleave"
	NameClick      = "click"
)

// MouseButton identifies which mouse button was pressed.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper // Cmd on Mac, Win on Windows
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// PlatformEvent is one raw input event from the host. Cursor is in physical pixels,
// the same space as layout areas.
type PlatformEvent struct {
	Type      EventType
	Cursor    geom.Point
	Button    MouseButton
	DeltaX    float32
	DeltaY    float32
	Key       string
	Modifiers Modifiers
}

// ============================================================================
// Queue
// ============================================================================

// Queue is the FIFO of input events awaiting dispatch. It is filled by the host
// event callback and drained on the same goroutine.
type Queue struct {
	events []PlatformEvent
}

// Push appends ev to the tail.
func (q *Queue) Push(ev PlatformEvent) {
	q.events = append(q.events, ev)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Drain removes and returns all pending events in arrival order.
func (q *Queue) Drain() []PlatformEvent {
	out := q.events
	q.events = nil
	return out
}

// ============================================================================
// Tree events
// ============================================================================

// PointerData is the payload of pointer events.
type PointerData struct {
	Screen geom.Point
	// Element is relative to the target's origin, in logical pixels.
	Element   geom.Point
	Button    MouseButton
	Modifiers Modifiers
}

// WheelData is the payload of wheel events.
type WheelData struct {
	DeltaX, DeltaY float32
	Modifiers      Modifiers
}

// KeyData is the payload of keyboard events.
type KeyData struct {
	Key       string
	Modifiers Modifiers
}

// DomEvent is a semantic event addressed to a tree node.
type DomEvent struct {
	Name    string
	Node    dom.NodeID
	Data    any
	Bubbles bool
}

// Emitter is the unbounded channel of DomEvents between the dispatcher and the
// polling loop. Emit never blocks.
type Emitter struct {
	mu     sync.Mutex
	events []DomEvent
	notify chan struct{}
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{notify: make(chan struct{}, 1)}
}

// Emit appends ev and signals Notify.
func (e *Emitter) Emit(ev DomEvent) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

// TryRecv pops the oldest event without blocking.
func (e *Emitter) TryRecv() (DomEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return DomEvent{}, false
	}
	ev := e.events[0]
	e.events[0] = DomEvent{}
	e.events = e.events[1:]
	return ev, true
}

// Len returns the number of undelivered events.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

// Notify delivers a value after one or more emits. A receiver must re-check with
// TryRecv since several emits may share one signal.
func (e *Emitter) Notify() <-chan struct{} {
	return e.notify
}
