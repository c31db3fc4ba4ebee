package retained

import (
	"sync"
	"sync/atomic"
)

// waker resumes the polling loop when it went idle. Poll arms it when neither an
// event nor tree work is ready; one goroutine then waits on both sources and calls
// wake once. Only one waker is armed at a time, so an idle loop never spins.
type waker struct {
	armed atomic.Bool
	// workPending records a work signal the waker goroutine consumed, so the next
	// poll still sees it.
	workPending atomic.Bool

	wake     func()
	stop     chan struct{}
	stopOnce sync.Once
}

func newWaker(wake func()) *waker {
	return &waker{wake: wake, stop: make(chan struct{})}
}

// arm starts waiting on events and work. It is a no-op while already armed or after
// close.
func (w *waker) arm(events, work <-chan struct{}) bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	if !w.armed.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		select {
		case <-events:
		case <-work:
			w.workPending.Store(true)
		case <-w.stop:
			w.armed.Store(false)
			return
		}
		// Disarm before waking so the resumed poll can arm again.
		w.armed.Store(false)
		w.wake()
	}()
	return true
}

// takeWork reports and clears a consumed work signal.
func (w *waker) takeWork() bool {
	return w.workPending.CompareAndSwap(true, false)
}

func (w *waker) isArmed() bool {
	return w.armed.Load()
}

func (w *waker) close() {
	w.stopOnce.Do(func() { close(w.stop) })
}
