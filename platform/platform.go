package platform

import (
	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/geom"
)

// ProxyHandle wraps the event-loop proxy when it is installed as a root context value.
type ProxyHandle struct{ Transport Transport }

// EmitterHandle wraps the fallback emitter when it is installed as a root context value.
type EmitterHandle struct{ Transport Transport }

// Platform gives UI code access to window features without a window reference.
// The convenience methods are best effort: a closed channel means the window is
// going away, so errors are logged and dropped.
type Platform struct {
	sender Sender
	ticker *TickerSource
	info   *SharedInformation
	log    zerolog.Logger
}

// New builds a Platform. ticker and info may be nil.
func New(sender Sender, ticker *TickerSource, info *SharedInformation, logger zerolog.Logger) *Platform {
	if ticker == nil {
		ticker = NewTickerSource(DefaultTickerCapacity)
	}
	if info == nil {
		info = NewSharedInformation(Information{})
	}
	return &Platform{sender: sender, ticker: ticker, info: info, log: logger}
}

// FromContext assembles a Platform from the root context values the Application
// installs. Missing values leave the matching slot empty.
func FromContext(values []any, logger zerolog.Logger) *Platform {
	var (
		proxy, emitter Transport
		ticker         *TickerSource
		info           *SharedInformation
	)
	for _, v := range values {
		switch v := v.(type) {
		case ProxyHandle:
			proxy = v.Transport
		case EmitterHandle:
			emitter = v.Transport
		case *TickerSource:
			ticker = v
		case *SharedInformation:
			info = v
		}
	}
	return New(NewSender(proxy, emitter), ticker, info, logger)
}

// Detached returns a copy for a background goroutine: the proxy slot is cleared and
// commands go through emitter.
func (p *Platform) Detached(emitter Transport) *Platform {
	cp := *p
	cp.sender = NewSender(nil, emitter)
	return &cp
}

// Send delivers cmd and reports channel errors.
func (p *Platform) Send(cmd Command) error {
	return p.sender.Send(cmd)
}

func (p *Platform) send(cmd Command) {
	if err := p.sender.Send(cmd); err != nil {
		p.log.Debug().Err(err).Type("command", cmd).Msg("platform command dropped")
	}
}

// SetCursor changes the pointer icon.
func (p *Platform) SetCursor(icon CursorIcon) { p.send(SetCursor{Icon: icon}) }

// DragWindow starts a window move.
func (p *Platform) DragWindow() { p.send(DragWindow{}) }

// DragResizeWindow starts a window resize from the given edge.
func (p *Platform) DragResizeWindow(dir ResizeDirection) { p.send(DragResizeWindow{Direction: dir}) }

// SetWindowSize resizes the window.
func (p *Platform) SetWindowSize(size geom.Size) { p.send(SetWindowSize{Size: size}) }

// SetWindowPosition moves the window.
func (p *Platform) SetWindowPosition(pos geom.Point) { p.send(SetWindowPosition{Position: pos}) }

// SetWindowSizeAndPosition resizes and moves the window.
func (p *Platform) SetWindowSizeAndPosition(size geom.Size, pos geom.Point) {
	p.send(SetWindowSizeAndPosition{Size: size, Position: pos})
}

// RequestAnimationFrame asks for another frame.
func (p *Platform) RequestAnimationFrame() { p.send(RequestRerender{}) }

// Focus focuses an accessibility node.
func (p *Platform) Focus(id dom.AccessibilityID) { p.send(FocusNode{ID: id}) }

// FocusNext moves focus forward.
func (p *Platform) FocusNext() { p.send(FocusNext{}) }

// FocusPrev moves focus backward.
func (p *Platform) FocusPrev() { p.send(FocusPrev{}) }

// Exit closes the whole app.
func (p *Platform) Exit() { p.send(ExitApp{}) }

// NewTicker subscribes to frame ticks.
func (p *Platform) NewTicker() *Ticker {
	return p.ticker.Subscribe()
}

// Info returns the current window geometry. It does not subscribe to changes.
func (p *Platform) Info() Information {
	return p.info.Get()
}
