package term

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/events"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/internal/metrics"
	"github.com/agiangrant/lattice/layout"
	"github.com/agiangrant/lattice/platform"
	"github.com/agiangrant/lattice/plugins"
	"github.com/agiangrant/lattice/retained"
	"github.com/agiangrant/lattice/vdom"
)

// DefaultTickInterval paces OnFrameTick at roughly 60 frames per second.
const DefaultTickInterval = 16 * time.Millisecond

// Config configures a Host.
type Config struct {
	VirtualTree vdom.VirtualTree
	Title       string

	// State is installed as a root context value.
	State any

	Plugins      []plugins.Plugin
	DefaultFonts []string

	// TickInterval paces frame ticks. Zero means DefaultTickInterval, negative
	// disables ticking.
	TickInterval time.Duration

	// Wireframe outlines the hovered node.
	Wireframe bool

	// MeasureCacheSize bounds the text width cache.
	MeasureCacheSize int

	// BackgroundBuffer sizes the background command channel (default 16).
	BackgroundBuffer int

	// TickerCapacity is the per-subscriber tick buffer.
	TickerCapacity int

	// InitialSize resizes the screen on start. Zero keeps the terminal's size.
	InitialSize geom.Size

	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

type (
	drainEvent struct{}
	tickEvent  struct{}
	quitEvent  struct{}
)

// Host runs an Application on a tcell screen.
type Host struct {
	cfg      Config
	screen   tcell.Screen
	app      *retained.Application
	window   *Window
	painter  *Painter
	measurer *Measurer
	proxy    *platform.LoopProxy
	bg       *platform.Emitter
	log      zerolog.Logger
	stopped  chan struct{}

	cursor  geom.Point
	buttons tcell.ButtonMask
}

// New builds a host for screen. The screen is initialized by Run.
func New(screen tcell.Screen, cfg Config) (*Host, error) {
	if cfg.BackgroundBuffer <= 0 {
		cfg.BackgroundBuffer = 16
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	h := &Host{
		cfg:      cfg,
		screen:   screen,
		window:   NewWindow(screen),
		painter:  NewPainter(screen),
		measurer: NewMeasurer(cfg.MeasureCacheSize),
		proxy:    platform.NewLoopProxy(),
		bg:       platform.NewEmitter(cfg.BackgroundBuffer),
		log:      cfg.Logger.With().Str("component", "term").Logger(),
		stopped:  make(chan struct{}),
		cursor:   geom.Point{X: -1, Y: -1},
	}

	app, err := retained.NewApplication(retained.Config{
		VirtualTree:    cfg.VirtualTree,
		Proxy:          h.proxy,
		Background:     h.bg,
		Engine:         layout.NewStackEngine(h.measurer),
		Title:          cfg.Title,
		DefaultFonts:   cfg.DefaultFonts,
		Plugins:        cfg.Plugins,
		InitialSize:    cfg.InitialSize,
		TickerCapacity: cfg.TickerCapacity,
		Logger:         cfg.Logger,
		Metrics:        cfg.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	h.app = app
	return h, nil
}

// App returns the hosted application. It must only be touched from the host loop.
func (h *Host) App() *retained.Application { return h.app }

// Window returns the terminal window adapter.
func (h *Host) Window() *Window { return h.window }

// Run initializes the screen and runs the event loop until the application exits,
// Ctrl-C is pressed or ctx is canceled.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer h.screen.Fini()

	h.screen.EnableMouse()
	if h.cfg.Title != "" {
		h.screen.SetTitle(h.cfg.Title)
	}

	if size := h.cfg.InitialSize; size.Width > 0 && size.Height > 0 {
		h.window.SetInnerSize(size)
	}
	h.app.OnResize(h.window.InnerSize())
	h.app.Init(h.window.ScaleFactor(), h.cfg.State)
	h.draw()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if h.cfg.TickInterval > 0 {
		g.Go(func() error { return h.tick(gctx) })
	}
	g.Go(func() error { return h.forwardWakes(gctx) })
	g.Go(func() error { return h.pumpBackground(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		h.post(quitEvent{})
		return nil
	})

	h.log.Info().Str("title", h.cfg.Title).Msg("host started")
	h.loop()
	h.app.Close()

	close(h.stopped)
	cancel()
	h.proxy.Close()
	h.bg.Close()
	err := g.Wait()
	hits, misses := h.measurer.Stats()
	h.log.Info().
		Uint64("frames", h.app.Stats().Frames).
		Uint64("measure_hits", hits).
		Uint64("measure_misses", misses).
		Msg("host stopped")
	return err
}

// post delivers an interrupt to the loop, retrying while tcell's bounded queue is
// full, until the loop has stopped.
func (h *Host) post(data any) {
	for h.screen.PostEvent(tcell.NewEventInterrupt(data)) != nil {
		select {
		case <-h.stopped:
			return
		case <-time.After(time.Millisecond):
		}
	}
}

// forwardWakes turns proxy wake signals into drain interrupts.
func (h *Host) forwardWakes(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.proxy.Wake():
			h.post(drainEvent{})
		}
	}
}

// tick drops ticks while the loop is behind.
func (h *Host) tick(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = h.screen.PostEvent(tcell.NewEventInterrupt(tickEvent{}))
		}
	}
}

// pumpBackground forwards background commands into the host loop.
func (h *Host) pumpBackground(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-h.bg.C():
			if err := h.proxy.Send(cmd); err != nil {
				if errors.Is(err, platform.ErrProxyClosed) {
					return nil
				}
				h.log.Warn().Err(err).Msg("dropped background command")
			}
		}
	}
}

func (h *Host) loop() {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		if h.handle(ev) || h.window.Closed() {
			return
		}
		if h.window.takeRedraw() {
			h.draw()
		}
	}
}

// handle processes one tcell event and reports whether the loop should stop.
func (h *Host) handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		h.app.OnResize(h.window.InnerSize())
		h.window.RequestRedraw()
	case *tcell.EventKey:
		if e.Key() == tcell.KeyCtrlC {
			return true
		}
		h.handleKey(e)
	case *tcell.EventMouse:
		h.handleMouse(e)
	case *tcell.EventInterrupt:
		switch e.Data().(type) {
		case drainEvent:
			for _, cmd := range h.proxy.Drain() {
				h.app.HandleCommand(cmd, h.window)
				if h.window.Closed() {
					return true
				}
			}
		case tickEvent:
			h.app.OnFrameTick()
		case quitEvent:
			return true
		}
	}
	return false
}

func (h *Host) draw() {
	h.screen.Clear()
	hovered := dom.NoNode
	if h.cfg.Wireframe {
		hovered = h.app.NodesState().Hovered
	}
	h.app.OnRedrawRequested(h.window, h.painter, hovered)
	// The frame polled first, so anything it requested is on screen.
	h.window.takeRedraw()
	h.screen.Show()
}

// ============================================================================
// Input translation
// ============================================================================

func (h *Host) handleKey(e *tcell.EventKey) {
	mods := convertModifiers(e.Modifiers())
	name := e.Name()
	if e.Key() == tcell.KeyRune {
		name = string(e.Rune())
	}

	// Terminals report presses only, so every press is followed by its release.
	h.app.SendEvent(events.PlatformEvent{Type: events.EventKeyDown, Key: name, Modifiers: mods})
	h.app.SendEvent(events.PlatformEvent{Type: events.EventKeyUp, Key: name, Modifiers: mods})

	switch e.Key() {
	case tcell.KeyTab:
		h.app.FocusNextNode(retained.FocusForward)
		h.window.RequestRedraw()
	case tcell.KeyBacktab:
		h.app.FocusNextNode(retained.FocusBackward)
		h.window.RequestRedraw()
	}
	h.app.Poll(h.window)
}

var pointerButtons = [...]struct {
	mask   tcell.ButtonMask
	button events.MouseButton
}{
	{tcell.Button1, events.MouseButtonLeft},
	{tcell.Button2, events.MouseButtonRight},
	{tcell.Button3, events.MouseButtonMiddle},
}

// handleMouse turns tcell's button-state snapshots into move, press, release and
// wheel transitions.
func (h *Host) handleMouse(e *tcell.EventMouse) {
	x, y := e.Position()
	cursor := geom.Point{X: float32(x), Y: float32(y)}
	mods := convertModifiers(e.Modifiers())
	buttons := e.Buttons()

	if cursor != h.cursor {
		h.cursor = cursor
		h.app.SendEvent(events.PlatformEvent{Type: events.EventMouseMove, Cursor: cursor, Modifiers: mods})
	}

	pressed := buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	for _, pb := range pointerButtons {
		was, now := h.buttons&pb.mask != 0, pressed&pb.mask != 0
		switch {
		case now && !was:
			h.app.SendEvent(events.PlatformEvent{Type: events.EventMouseDown, Cursor: cursor, Button: pb.button, Modifiers: mods})
		case was && !now:
			h.app.SendEvent(events.PlatformEvent{Type: events.EventMouseUp, Cursor: cursor, Button: pb.button, Modifiers: mods})
		}
	}
	h.buttons = pressed

	if dx, dy := wheelDelta(buttons); dx != 0 || dy != 0 {
		h.app.SendEvent(events.PlatformEvent{Type: events.EventWheel, Cursor: cursor, DeltaX: dx, DeltaY: dy, Modifiers: mods})
	}

	h.app.Poll(h.window)
}

func wheelDelta(b tcell.ButtonMask) (dx, dy float32) {
	if b&tcell.WheelUp != 0 {
		dy--
	}
	if b&tcell.WheelDown != 0 {
		dy++
	}
	if b&tcell.WheelLeft != 0 {
		dx--
	}
	if b&tcell.WheelRight != 0 {
		dx++
	}
	return dx, dy
}

func convertModifiers(m tcell.ModMask) events.Modifiers {
	var out events.Modifiers
	if m&tcell.ModShift != 0 {
		out |= events.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= events.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= events.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= events.ModSuper
	}
	return out
}
