package accessibility

import (
	"sync"
	"sync/atomic"

	"github.com/agiangrant/lattice/dom"
)

// FocusChannel broadcasts the focused id with last-value semantics: a subscriber
// always sees the most recent value, intermediate values may be skipped.
type FocusChannel struct {
	mu    sync.Mutex
	value dom.AccessibilityID
	subs  map[*FocusSubscription]struct{}
}

// NewFocusChannel returns a channel holding initial.
func NewFocusChannel(initial dom.AccessibilityID) *FocusChannel {
	return &FocusChannel{value: initial, subs: make(map[*FocusSubscription]struct{})}
}

// Get returns the current value.
func (c *FocusChannel) Get() dom.AccessibilityID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores id and notifies every subscriber.
func (c *FocusChannel) Set(id dom.AccessibilityID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = id
	for s := range c.subs {
		s.offer(id)
	}
}

// Subscribe returns a subscription whose channel already holds the current value.
func (c *FocusChannel) Subscribe() *FocusSubscription {
	s := &FocusSubscription{src: c, ch: make(chan dom.AccessibilityID, 1)}
	c.mu.Lock()
	c.subs[s] = struct{}{}
	s.offer(c.value)
	c.mu.Unlock()
	return s
}

// FocusSubscription receives focus changes.
type FocusSubscription struct {
	src *FocusChannel
	ch  chan dom.AccessibilityID
}

// offer replaces any unread value. Called with the channel lock held, so it is the
// only sender.
func (s *FocusSubscription) offer(id dom.AccessibilityID) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- id
}

// C delivers the latest focused id.
func (s *FocusSubscription) C() <-chan dom.AccessibilityID {
	return s.ch
}

// Close unsubscribes.
func (s *FocusSubscription) Close() {
	s.src.mu.Lock()
	delete(s.src.subs, s)
	s.src.mu.Unlock()
}

// ============================================================================
// Navigation mode
// ============================================================================

// NavigationMode tells focus rings whether the user is navigating by keyboard.
type NavigationMode uint32

const (
	NotKeyboard NavigationMode = iota
	Keyboard
)

func (m NavigationMode) String() string {
	if m == Keyboard {
		return "keyboard"
	}
	return "not_keyboard"
}

// NavigatorState holds the current NavigationMode. Safe for concurrent use.
type NavigatorState struct {
	mode atomic.Uint32
}

// Get returns the current mode.
func (n *NavigatorState) Get() NavigationMode {
	return NavigationMode(n.mode.Load())
}

// Set stores mode and reports whether it changed.
func (n *NavigatorState) Set(mode NavigationMode) bool {
	return NavigationMode(n.mode.Swap(uint32(mode))) != mode
}
