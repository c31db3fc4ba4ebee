// Package plugins lets observers follow the application lifecycle: window creation,
// tree updates, layout and rendering.
package plugins

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/layout"
)

// EventType identifies a lifecycle notification.
type EventType int

const (
	WindowCreated EventType = iota
	StartedUpdatingDOM
	FinishedUpdatingDOM
	StartedLayout
	FinishedLayout
	BeforeRender
	AfterRender
)

var eventTypeNames = [...]string{
	WindowCreated:       "window_created",
	StartedUpdatingDOM:  "started_updating_dom",
	FinishedUpdatingDOM: "finished_updating_dom",
	StartedLayout:       "started_layout",
	FinishedLayout:      "finished_layout",
	BeforeRender:        "before_render",
	AfterRender:         "after_render",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Event is passed to every plugin. Tree and Layout are read-only views owned by the
// UI goroutine and must not be retained.
type Event struct {
	Type   EventType
	Tree   *dom.Tree
	Layout *layout.Layout
}

// Plugin receives lifecycle events on the UI goroutine.
type Plugin interface {
	OnEvent(ev Event)
}

// Func adapts a function to Plugin.
type Func func(ev Event)

// OnEvent implements Plugin.
func (f Func) OnEvent(ev Event) { f(ev) }

// Manager broadcasts events to registered plugins in registration order.
type Manager struct {
	mu      sync.RWMutex
	plugins []Plugin
}

// NewManager creates a manager holding plugins.
func NewManager(plugins ...Plugin) *Manager {
	return &Manager{plugins: append([]Plugin(nil), plugins...)}
}

// Add registers a plugin.
func (m *Manager) Add(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins = append(m.plugins, p)
}

// Remove unregisters a plugin. p must be comparable, so Func values cannot be
// removed.
func (m *Manager) Remove(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.plugins {
		if q == p {
			m.plugins = append(m.plugins[:i], m.plugins[i+1:]...)
			break
		}
	}
}

// Len returns the number of plugins.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// Send delivers ev to every plugin.
func (m *Manager) Send(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		p.OnEvent(ev)
	}
}

// LayoutObserver forwards layout notifications about tree to the plugins.
func (m *Manager) LayoutObserver(tree *dom.Tree) layout.Observer {
	return layoutObserver{m: m, tree: tree}
}

type layoutObserver struct {
	m    *Manager
	tree *dom.Tree
}

func (o layoutObserver) StartedLayout(l *layout.Layout) {
	o.m.Send(Event{Type: StartedLayout, Tree: o.tree, Layout: l})
}

func (o layoutObserver) FinishedLayout(l *layout.Layout) {
	o.m.Send(Event{Type: FinishedLayout, Tree: o.tree, Layout: l})
}

// Logger returns a plugin that traces every event.
func Logger(logger zerolog.Logger) Plugin {
	return Func(func(ev Event) {
		e := logger.Trace().Stringer("event", ev.Type)
		if ev.Tree != nil {
			e = e.Int("nodes", ev.Tree.Len())
		}
		e.Msg("lifecycle")
	})
}
