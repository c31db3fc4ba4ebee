// Package retained is the application host core. An Application owns the node tree
// and drives it from host callbacks: it polls the virtual tree for work, applies the
// resulting mutations, recomputes layout and accessibility when needed and renders.
package retained

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/accessibility"
	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/events"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/internal/metrics"
	"github.com/agiangrant/lattice/layout"
	"github.com/agiangrant/lattice/platform"
	"github.com/agiangrant/lattice/plugins"
	"github.com/agiangrant/lattice/render"
	"github.com/agiangrant/lattice/vdom"
)

// Tree event names for host-native notifications.
const (
	EventWindowMoved        = "windowmoved"
	EventScaleFactorChanged = "scalefactorchanged"
)

// Config configures an Application.
type Config struct {
	// VirtualTree is the reconciler producing mutations. Required.
	VirtualTree vdom.VirtualTree

	// Proxy reaches the host event loop from any goroutine. Required: the polling
	// loop resumes by sending PollPending through it.
	Proxy platform.Transport

	// Background is the command channel for goroutines without access to the host
	// loop. The host drains it. Optional.
	Background *platform.Emitter

	// Engine computes layout. Defaults to a StackEngine with a monospace measurer.
	Engine layout.Engine

	// Title labels the accessibility root.
	Title string

	InitialSize  geom.Size
	DefaultFonts []string

	Plugins []plugins.Plugin

	// MutationsNotifier is signaled without blocking after every apply that needs a
	// repaint.
	MutationsNotifier chan<- struct{}

	// TickerCapacity is the per-subscriber tick buffer (default 5).
	TickerCapacity int

	Logger  zerolog.Logger
	Metrics *metrics.Recorder
}

// FocusDirection selects FocusNextNode's direction.
type FocusDirection int

const (
	FocusForward FocusDirection = iota
	FocusBackward
)

// Stats counts work done by the Application.
type Stats struct {
	Frames  uint64
	Layouts uint64
	Polls   uint64
	Applied uint64
}

// Application is the façade the host drives. All methods except Platform's
// commands must be called on the UI goroutine.
type Application struct {
	cfg  Config
	vdom vdom.VirtualTree
	tree *dom.Tree

	driver    *layout.Driver
	a11y      *accessibility.Manager
	focus     *accessibility.FocusChannel
	navigator *accessibility.NavigatorState
	renderer  render.Renderer

	queue   events.Queue
	emitter *events.Emitter
	nodes   events.NodesState

	sender  platform.Sender
	info    *platform.SharedInformation
	ticker  *platform.TickerSource
	plugins *plugins.Manager
	waker   *waker

	scale         float32
	measureLayout bool
	stats         Stats

	log     zerolog.Logger
	metrics *metrics.Recorder
}

// NewApplication builds an Application around cfg.
func NewApplication(cfg Config) (*Application, error) {
	if cfg.VirtualTree == nil {
		return nil, errors.New("retained: config requires a virtual tree")
	}
	if cfg.Proxy == nil {
		return nil, errors.New("retained: config requires an event loop proxy")
	}
	if cfg.Engine == nil {
		cfg.Engine = layout.NewStackEngine(nil)
	}

	a := &Application{
		cfg:       cfg,
		vdom:      cfg.VirtualTree,
		tree:      dom.NewTree(cfg.Logger),
		focus:     accessibility.NewFocusChannel(dom.RootAccessibilityID),
		navigator: &accessibility.NavigatorState{},
		emitter:   events.NewEmitter(),
		info:      platform.NewSharedInformation(platform.Information{WindowSize: cfg.InitialSize}),
		ticker:    platform.NewTickerSource(cfg.TickerCapacity),
		plugins:   plugins.NewManager(cfg.Plugins...),
		scale:     1,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if cfg.Background != nil {
		a.sender = platform.NewSender(cfg.Proxy, cfg.Background)
	} else {
		a.sender = platform.NewSender(cfg.Proxy, nil)
	}
	a.a11y = accessibility.NewManager(cfg.Title, a.focus, cfg.Logger)
	a.driver = layout.NewDriver(a.tree, layout.DriverConfig{
		Engine:        cfg.Engine,
		Accessibility: a.a11y,
		Observers:     []layout.Observer{a.plugins.LayoutObserver(a.tree)},
		Repaint:       a.notifyPaint,
		Logger:        cfg.Logger,
		Metrics:       cfg.Metrics,
	})
	a.waker = newWaker(func() {
		if err := cfg.Proxy.Send(platform.PollPending{}); err != nil {
			a.log.Debug().Err(err).Msg("waker could not reach the event loop")
		}
	})
	return a, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// Init seeds the root context and applies the first render. state, if non-nil, is
// installed as a root context value too.
func (a *Application) Init(scale float32, state any) {
	if scale > 0 {
		a.scale = scale
	}

	if state != nil {
		a.vdom.InsertRootContext(state)
	}
	a.vdom.InsertRootContext(platform.ProxyHandle{Transport: a.cfg.Proxy})
	if a.cfg.Background != nil {
		a.vdom.InsertRootContext(platform.EmitterHandle{Transport: a.cfg.Background})
	}
	a.vdom.InsertRootContext(a.focus)
	a.vdom.InsertRootContext(a.ticker)
	a.vdom.InsertRootContext(a.navigator)
	a.vdom.InsertRootContext(a.info)

	a.plugins.Send(plugins.Event{Type: plugins.WindowCreated, Tree: a.tree, Layout: a.driver.Layout()})

	a.ApplyChanges()
	a.measureLayout = true

	a.log.Info().Float32("scale", a.scale).Int("nodes", a.tree.Len()).Msg("application initialized")
}

// OnResize records the new size. Layout is recomputed on the next redraw.
func (a *Application) OnResize(size geom.Size) {
	a.info.SetWindowSize(size)
	a.driver.Reset()
	a.measureLayout = true
}

// OnMoved records the new window position and forwards it to the tree.
func (a *Application) OnMoved(pos geom.Point) {
	a.info.SetWindowPosition(pos)
	a.emitter.Emit(events.DomEvent{Name: EventWindowMoved, Node: dom.RootID, Data: pos})
}

// OnRedrawRequested runs one frame: poll, layout and accessibility if a mutation or
// resize asked for it, then render. hovered, when set, gets a debug wireframe.
func (a *Application) OnRedrawRequested(w Window, p render.Painter, hovered dom.NodeID) {
	a.Poll(w)

	if a.measureLayout {
		a.processLayout()
		a.measureLayout = false
	}

	a.plugins.Send(plugins.Event{Type: plugins.BeforeRender, Tree: a.tree, Layout: a.driver.Layout()})
	a.renderer.Painter = p
	a.renderer.Render(a.tree, a.driver.Layout(), hovered)
	a.plugins.Send(plugins.Event{Type: plugins.AfterRender, Tree: a.tree, Layout: a.driver.Layout()})

	a.stats.Frames++
	a.metrics.FrameRendered(context.Background())
}

func (a *Application) processLayout() {
	viewport := geom.AreaFromSize(a.info.Get().WindowSize)
	a.driver.Recompute(viewport, a.cfg.DefaultFonts, a.scale)
	// A full recompute measured every text group.
	a.tree.TakeDirtyTextGroups()
	a.stats.Layouts++
}

// OnFrameTick fires the ticker. Subscribers are optional.
func (a *Application) OnFrameTick() {
	a.ticker.Send()
}

// Shutdown asks the host to exit.
func (a *Application) Shutdown() error {
	a.waker.close()
	return a.sender.Send(platform.ExitApp{})
}

// Close stops the idle waker. Hosts call it once their loop has returned, however
// it ended; nothing is polled afterwards.
func (a *Application) Close() {
	a.waker.close()
}

// ============================================================================
// Polling loop
// ============================================================================

// Poll feeds ready events into the virtual tree and applies its work until neither
// is ready, then arms the waker and returns.
func (a *Application) Poll(w Window) {
	for {
		if ev, ok := a.emitter.TryRecv(); ok {
			a.vdom.HandleEvent(ev.Name, ev.Data, ev.Node, ev.Bubbles)
			a.vdom.ProcessEvents()
		} else if !a.waker.takeWork() && !ready(a.vdom.WorkReady()) {
			a.waker.arm(a.emitter.Notify(), a.vdom.WorkReady())
			return
		}

		a.stats.Polls++
		a.metrics.PollCycle(context.Background())

		repaint, relayout := a.ApplyChanges()
		if relayout {
			a.measureLayout = true
		}
		if repaint {
			w.RequestRedraw()
		}
	}
}

func ready(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// ApplyChanges applies the virtual tree's pending mutations. The paint notifier is
// signaled once if anything needs repainting.
func (a *Application) ApplyChanges() (repaint, relayout bool) {
	a.plugins.Send(plugins.Event{Type: plugins.StartedUpdatingDOM, Tree: a.tree})
	batch := a.vdom.RenderMutations()
	repaint, relayout = a.tree.Apply(batch)
	a.plugins.Send(plugins.Event{Type: plugins.FinishedUpdatingDOM, Tree: a.tree})

	if len(batch) > 0 {
		a.stats.Applied++
		a.metrics.MutationsApplied(context.Background(), relayout)
		a.log.Debug().Int("mutations", len(batch)).Bool("repaint", repaint).Bool("relayout", relayout).Msg("applied mutations")
	}
	if repaint {
		a.notifyPaint()
	}
	return repaint, relayout
}

func (a *Application) notifyPaint() {
	if a.cfg.MutationsNotifier == nil {
		return
	}
	select {
	case a.cfg.MutationsNotifier <- struct{}{}:
	default:
	}
}

// ============================================================================
// Input
// ============================================================================

// SendEvent queues a host input event and dispatches the queue. Keyboard input
// switches navigation to keyboard mode, pointer input switches it off.
func (a *Application) SendEvent(ev events.PlatformEvent) {
	if ev.Type.IsKeyboard() {
		a.SetNavigationMode(accessibility.Keyboard)
	} else {
		a.SetNavigationMode(accessibility.NotKeyboard)
	}
	a.queue.Push(ev)
	events.ProcessEvents(a.tree, a.driver.Layout(), &a.queue, a.emitter, &a.nodes, a.scale)
}

// SetNavigationMode updates the navigator state.
func (a *Application) SetNavigationMode(mode accessibility.NavigationMode) {
	if a.navigator.Set(mode) {
		a.log.Trace().Stringer("mode", mode).Msg("navigation mode changed")
	}
}

// FocusNextNode moves accessibility focus and returns the new id.
func (a *Application) FocusNextNode(dir FocusDirection) dom.AccessibilityID {
	if dir == FocusBackward {
		return a.a11y.FocusPrev()
	}
	return a.a11y.FocusNext()
}

// MeasureTextGroup re-measures one text group. Unknown groups are ignored.
func (a *Application) MeasureTextGroup(id uuid.UUID) bool {
	return a.driver.MeasureTextGroup(id, a.cfg.DefaultFonts, a.scale)
}

// ReplaceTemplate hot-swaps a template in the virtual tree.
func (a *Application) ReplaceTemplate(t vdom.Template) {
	a.vdom.ReplaceTemplate(t)
}

// ============================================================================
// Accessors
// ============================================================================

// Tree returns the node tree.
func (a *Application) Tree() *dom.Tree { return a.tree }

// Layout returns the current layout results.
func (a *Application) Layout() *layout.Layout { return a.driver.Layout() }

// Accessibility returns a snapshot of the accessibility tree.
func (a *Application) Accessibility() accessibility.Tree { return a.a11y.Snapshot() }

// NodesState returns the pointer state derived from input.
func (a *Application) NodesState() events.NodesState { return a.nodes }

// NavigationMode returns the current navigation mode.
func (a *Application) NavigationMode() accessibility.NavigationMode { return a.navigator.Get() }

// Info returns the window geometry snapshot.
func (a *Application) Info() platform.Information { return a.info.Get() }

// ScaleFactor returns the scale used for layout and events.
func (a *Application) ScaleFactor() float32 { return a.scale }

// Plugins returns the plugin manager.
func (a *Application) Plugins() *plugins.Manager { return a.plugins }

// Stats returns work counters.
func (a *Application) Stats() Stats { return a.stats }

// Platform returns a Platform bound to the Application's transports.
func (a *Application) Platform() *platform.Platform {
	return platform.New(a.sender, a.ticker, a.info, a.log)
}
