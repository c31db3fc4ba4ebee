package platform

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrProxyClosed is returned when the host event loop no longer accepts commands.
	ErrProxyClosed = errors.New("platform: event loop proxy closed")

	// ErrEmitterClosed is returned when the receiver of the fallback channel is gone.
	ErrEmitterClosed = errors.New("platform: emitter closed")
)

// Transport delivers commands to the Application. Delivery is in send order.
type Transport interface {
	Send(cmd Command) error
}

// Sender holds the two transport slots. The proxy reaches the host event loop
// directly and is available on the UI goroutine; the emitter is a plain channel
// reachable from background goroutines. No ordering holds across the two.
type Sender struct {
	proxy   Transport
	emitter Transport
}

// NewSender builds a sender. Either transport may be nil.
func NewSender(proxy, emitter Transport) Sender {
	return Sender{proxy: proxy, emitter: emitter}
}

// Send delivers cmd through the proxy if one is registered, else through the
// emitter. With neither registered the command is dropped and Send returns nil.
func (s Sender) Send(cmd Command) error {
	if s.proxy != nil {
		if err := s.proxy.Send(cmd); err != nil {
			if errors.Is(err, ErrProxyClosed) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrProxyClosed, err)
		}
		return nil
	}
	if s.emitter != nil {
		if err := s.emitter.Send(cmd); err != nil {
			if errors.Is(err, ErrEmitterClosed) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrEmitterClosed, err)
		}
	}
	return nil
}

// HasTransport reports whether any transport is registered.
func (s Sender) HasTransport() bool {
	return s.proxy != nil || s.emitter != nil
}

// ============================================================================
// LoopProxy
// ============================================================================

// LoopProxy is an in-process event-loop proxy: an unbounded FIFO the host drains on
// its own goroutine, plus a wake signal. Hosts whose native event queue is bounded
// forward the wake into it and drain on the loop goroutine.
type LoopProxy struct {
	mu     sync.Mutex
	queue  []Command
	closed bool
	wake   chan struct{}
}

// NewLoopProxy returns an open proxy.
func NewLoopProxy() *LoopProxy {
	return &LoopProxy{wake: make(chan struct{}, 1)}
}

// Send implements Transport.
func (p *LoopProxy) Send(cmd Command) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProxyClosed
	}
	p.queue = append(p.queue, cmd)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Wake delivers a value after one or more sends.
func (p *LoopProxy) Wake() <-chan struct{} {
	return p.wake
}

// Drain returns all queued commands in send order.
func (p *LoopProxy) Drain() []Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.queue
	p.queue = nil
	return out
}

// Close stops accepting commands. Queued commands stay drainable.
func (p *LoopProxy) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// ============================================================================
// Emitter
// ============================================================================

// Emitter is the channel transport for goroutines without access to the host loop.
// Send blocks while the buffer is full, until the receiver drains or closes it.
type Emitter struct {
	ch        chan Command
	done      chan struct{}
	closeOnce sync.Once
}

// NewEmitter returns an emitter with the given buffer size.
func NewEmitter(buffer int) *Emitter {
	if buffer < 0 {
		buffer = 0
	}
	return &Emitter{
		ch:   make(chan Command, buffer),
		done: make(chan struct{}),
	}
}

// Send implements Transport.
func (e *Emitter) Send(cmd Command) error {
	select {
	case <-e.done:
		return ErrEmitterClosed
	default:
	}
	select {
	case e.ch <- cmd:
		return nil
	case <-e.done:
		return ErrEmitterClosed
	}
}

// C is the receiving end.
func (e *Emitter) C() <-chan Command {
	return e.ch
}

// Close is called by the receiver when it stops reading.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() { close(e.done) })
}
