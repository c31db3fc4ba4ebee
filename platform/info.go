package platform

import (
	"context"
	"sync"

	"github.com/agiangrant/lattice/geom"
)

// Information is a snapshot of the window geometry.
type Information struct {
	WindowSize     geom.Size
	WindowPosition geom.Point
}

// SharedInformation is the mutex-guarded geometry cell. The Application's resize and
// move handlers write it; UI code on any goroutine reads snapshots.
type SharedInformation struct {
	mu   sync.Mutex
	info Information
}

// NewSharedInformation returns a cell holding info.
func NewSharedInformation(info Information) *SharedInformation {
	return &SharedInformation{info: info}
}

// Get returns a copy of the current geometry.
func (s *SharedInformation) Get() Information {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// SetWindowSize records a host-reported size.
func (s *SharedInformation) SetWindowSize(size geom.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info.WindowSize = size
}

// SetWindowPosition records a host-reported position.
func (s *SharedInformation) SetWindowPosition(p geom.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info.WindowPosition = p
}

// ============================================================================
// Ticker
// ============================================================================

// DefaultTickerCapacity is how many ticks a slow subscriber may fall behind before
// ticks are dropped for it.
const DefaultTickerCapacity = 5

// TickerSource broadcasts one notification per host frame. Sending never blocks: a
// subscriber whose buffer is full misses the tick.
type TickerSource struct {
	mu       sync.Mutex
	subs     map[*Ticker]struct{}
	capacity int
}

// NewTickerSource returns a source with the given per-subscriber buffer.
func NewTickerSource(capacity int) *TickerSource {
	if capacity < 1 {
		capacity = DefaultTickerCapacity
	}
	return &TickerSource{
		subs:     make(map[*Ticker]struct{}),
		capacity: capacity,
	}
}

// Send notifies every subscriber and returns how many received the tick.
func (s *TickerSource) Send() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivered := 0
	for t := range s.subs {
		select {
		case t.ch <- struct{}{}:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribe returns a new ticker that sees ticks sent from now on.
func (s *TickerSource) Subscribe() *Ticker {
	t := &Ticker{src: s, ch: make(chan struct{}, s.capacity)}
	s.mu.Lock()
	s.subs[t] = struct{}{}
	s.mu.Unlock()
	return t
}

// Subscribers returns the number of live tickers.
func (s *TickerSource) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Ticker receives frame ticks.
type Ticker struct {
	src *TickerSource
	ch  chan struct{}
}

// C delivers one value per received tick.
func (t *Ticker) C() <-chan struct{} {
	return t.ch
}

// Tick waits for the next tick or for ctx to end.
func (t *Ticker) Tick(ctx context.Context) error {
	select {
	case <-t.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resubscribe returns an independent ticker on the same source.
func (t *Ticker) Resubscribe() *Ticker {
	return t.src.Subscribe()
}

// Close unsubscribes the ticker.
func (t *Ticker) Close() {
	t.src.mu.Lock()
	delete(t.src.subs, t)
	t.src.mu.Unlock()
}
