package vdom

import (
	"sync"

	"github.com/agiangrant/lattice/dom"
)

// Event is a semantic event delivered to Scripted handlers.
type Event struct {
	Name    string
	Payload any
	Target  dom.NodeID
	// Current is the node whose handler is running while the event bubbles.
	Current dom.NodeID
	Bubbles bool

	stopped bool
}

// StopPropagation prevents ancestors from seeing the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Handler reacts to an event, typically by queueing mutations.
type Handler func(ev *Event)

// Scripted is a reference VirtualTree: components are plain Go code that register
// handlers and queue mutation batches, from the UI goroutine or any other goroutine.
// It is what the demo binary and the tests run against.
type Scripted struct {
	mu        sync.Mutex
	pending   dom.Mutations
	queued    []Event
	handlers  map[dom.NodeID]map[string]Handler
	parents   map[dom.NodeID]dom.NodeID
	contexts  []any
	templates map[string]Template

	work chan struct{}
}

// NewScripted returns a tree whose first render produces initial.
func NewScripted(initial dom.Mutations) *Scripted {
	s := &Scripted{
		handlers:  make(map[dom.NodeID]map[string]Handler),
		parents:   make(map[dom.NodeID]dom.NodeID),
		templates: make(map[string]Template),
		work:      make(chan struct{}, 1),
	}
	if len(initial) > 0 {
		s.Queue(initial)
	}
	return s
}

// Queue appends a mutation batch and wakes the polling loop. Safe from any goroutine.
func (s *Scripted) Queue(batch dom.Mutations) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, batch...)
	for _, m := range batch {
		switch m := m.(type) {
		case dom.CreateElement:
			s.parents[m.ID] = m.Parent
		case dom.CreateText:
			s.parents[m.ID] = m.Parent
		case dom.Remove:
			delete(s.parents, m.ID)
			delete(s.handlers, m.ID)
		}
	}
	s.mu.Unlock()
	s.signal()
}

func (s *Scripted) signal() {
	select {
	case s.work <- struct{}{}:
	default:
	}
}

// On registers h for events named name targeted at (or bubbling through) id.
func (s *Scripted) On(id dom.NodeID, name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[id] == nil {
		s.handlers[id] = make(map[string]Handler)
	}
	s.handlers[id][name] = h
}

// HandleEvent implements VirtualTree.
func (s *Scripted) HandleEvent(name string, payload any, target dom.NodeID, bubbles bool) {
	s.mu.Lock()
	s.queued = append(s.queued, Event{Name: name, Payload: payload, Target: target, Bubbles: bubbles})
	s.mu.Unlock()
}

// ProcessEvents implements VirtualTree. Handlers run without the lock held so they
// may call Queue.
func (s *Scripted) ProcessEvents() {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	for i := range queued {
		ev := &queued[i]
		for id := ev.Target; id != dom.NoNode; {
			if h := s.handler(id, ev.Name); h != nil {
				ev.Current = id
				h(ev)
			}
			if !ev.Bubbles || ev.stopped {
				break
			}
			id = s.parent(id)
		}
	}
}

func (s *Scripted) handler(id dom.NodeID, name string) Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[id][name]
}

func (s *Scripted) parent(id dom.NodeID) dom.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parents[id]
}

// WorkReady implements VirtualTree.
func (s *Scripted) WorkReady() <-chan struct{} {
	return s.work
}

// RenderMutations implements VirtualTree.
func (s *Scripted) RenderMutations() dom.Mutations {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// ReplaceTemplate implements VirtualTree. The template's mutations are queued as the
// next diff.
func (s *Scripted) ReplaceTemplate(t Template) {
	s.mu.Lock()
	s.templates[t.Name] = t
	s.mu.Unlock()
	s.Queue(t.Mutations)
}

// Template returns a template previously installed by ReplaceTemplate.
func (s *Scripted) Template(name string) (Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[name]
	return t, ok
}

// InsertRootContext implements VirtualTree.
func (s *Scripted) InsertRootContext(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = append(s.contexts, v)
}

// Contexts returns the root context values in insertion order.
func (s *Scripted) Contexts() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.contexts...)
}

// Consume returns the most recently inserted root context of type T.
func Consume[T any](s *Scripted) (T, bool) {
	ctx := s.Contexts()
	for i := len(ctx) - 1; i >= 0; i-- {
		if v, ok := ctx[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
