package term

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/lattice/accessibility"
	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/events"
	"github.com/agiangrant/lattice/geom"
	"github.com/agiangrant/lattice/platform"
	"github.com/agiangrant/lattice/plugins"
	"github.com/agiangrant/lattice/vdom"
)

// ============================================================================
// Measurer
// ============================================================================

func TestMeasureText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want geom.Size
	}{
		{"empty", "", geom.Size{Width: 0, Height: 1}},
		{"ascii", "hello", geom.Size{Width: 5, Height: 1}},
		{"wide runes", "日本", geom.Size{Width: 4, Height: 1}},
		{"widest line wins", "a\nbcd\nef", geom.Size{Width: 3, Height: 3}},
	}

	m := NewMeasurer(16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.MeasureText(tt.text, nil))
		})
	}
}

func TestMeasurerEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMeasurer(2)
	m.MeasureText("a", nil)
	m.MeasureText("bb", nil)
	m.MeasureText("a", nil) // refresh
	m.MeasureText("ccc", nil)

	assert.Equal(t, 2, m.Len())
	hits, misses := m.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(3), misses)

	// a is still remembered.
	assert.Equal(t, geom.Size{Width: 1, Height: 1}, m.MeasureText("a", nil))
	hits, misses = m.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(3), misses)

	// bb was least recently used, so it is measured again.
	assert.Equal(t, geom.Size{Width: 2, Height: 1}, m.MeasureText("bb", nil))
	_, misses = m.Stats()
	assert.Equal(t, uint64(4), misses)
	assert.Equal(t, 2, m.Len())
}

func TestMeasurerSkipsEmptyLines(t *testing.T) {
	m := NewMeasurer(4)
	assert.Equal(t, geom.Size{Width: 2, Height: 3}, m.MeasureText("\nab\n", nil))
	assert.Equal(t, 1, m.Len())
}

// ============================================================================
// Painter
// ============================================================================

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	s.Clear()
	t.Cleanup(s.Fini)
	return s
}

func TestPaintBackgroundAndText(t *testing.T) {
	s := newSimScreen(t, 10, 4)
	p := NewPainter(s)

	rect := &dom.Node{ID: 2, Tag: dom.TagRect, Background: "red", Opacity: 1}
	p.Paint(rect, geom.Area{Size: geom.Size{Width: 4, Height: 2}}, geom.Identity(), 1)

	text := &dom.Node{ID: 3, Tag: dom.TagText, Text: "hi", Color: "white", Opacity: 1}
	p.Paint(text, geom.Area{Origin: geom.Point{X: 1, Y: 1}, Size: geom.Size{Width: 2, Height: 1}}, geom.Identity(), 1)

	r, _, style, _ := s.GetContent(0, 0)
	assert.Equal(t, ' ', r)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, bg)

	r, _, style, _ = s.GetContent(1, 1)
	assert.Equal(t, 'h', r)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorWhite, fg)
	assert.Equal(t, tcell.ColorRed, bg, "text keeps the background under it")

	r, _, _, _ = s.GetContent(4, 0)
	assert.Equal(t, ' ', r, "nothing outside the area")
}

func TestPaintHonoursTranslationAndOpacity(t *testing.T) {
	s := newSimScreen(t, 10, 4)
	p := NewPainter(s)

	rect := &dom.Node{ID: 2, Tag: dom.TagRect, Background: "blue"}
	p.Paint(rect, geom.Area{Size: geom.Size{Width: 1, Height: 1}}, geom.Translate(3, 2), 0.5)

	_, _, style, _ := s.GetContent(3, 2)
	_, bg, attrs := style.Decompose()
	assert.Equal(t, tcell.ColorBlue, bg)
	assert.NotZero(t, attrs&tcell.AttrDim)

	_, _, style, _ = s.GetContent(0, 0)
	_, bg, _ = style.Decompose()
	assert.NotEqual(t, tcell.ColorBlue, bg)
}

func TestPaintClipsToScreen(t *testing.T) {
	s := newSimScreen(t, 4, 2)
	p := NewPainter(s)

	text := &dom.Node{ID: 2, Tag: dom.TagText, Text: "abcdef"}
	assert.NotPanics(t, func() {
		p.Paint(text, geom.Area{Origin: geom.Point{X: -2}, Size: geom.Size{Width: 6, Height: 1}}, geom.Identity(), 1)
	})
	r, _, _, _ := s.GetContent(0, 0)
	assert.Equal(t, 'a', r)
}

func TestWireframeOutlinesArea(t *testing.T) {
	s := newSimScreen(t, 10, 5)
	p := NewPainter(s)
	p.Wireframe(geom.Area{Size: geom.Size{Width: 4, Height: 3}})

	want := map[[2]int]rune{
		{0, 0}: tcell.RuneULCorner,
		{3, 0}: tcell.RuneURCorner,
		{0, 2}: tcell.RuneLLCorner,
		{3, 2}: tcell.RuneLRCorner,
		{1, 0}: tcell.RuneHLine,
		{2, 2}: tcell.RuneHLine,
		{0, 1}: tcell.RuneVLine,
		{3, 1}: tcell.RuneVLine,
		{1, 1}: ' ',
	}
	for pos, r := range want {
		got, _, _, _ := s.GetContent(pos[0], pos[1])
		assert.Equal(t, r, got, "cell %v", pos)
	}
}

// ============================================================================
// Window
// ============================================================================

func TestWindowAdapter(t *testing.T) {
	s := newSimScreen(t, 30, 8)
	w := NewWindow(s)

	assert.Equal(t, float32(1), w.ScaleFactor())
	assert.Equal(t, geom.Size{Width: 30, Height: 8}, w.InnerSize())
	assert.ErrorIs(t, w.DragWindow(), ErrUnsupported)
	assert.ErrorIs(t, w.DragResizeWindow(platform.ResizeEast), ErrUnsupported)

	w.SetCursor(platform.CursorPointer)
	assert.Equal(t, platform.CursorPointer, w.Cursor())

	w.SetInnerSize(geom.Size{Width: 12, Height: 6})
	assert.Equal(t, geom.Size{Width: 12, Height: 6}, w.InnerSize())

	w.RequestRedraw()
	assert.True(t, w.takeRedraw())
	assert.False(t, w.takeRedraw())

	assert.False(t, w.Closed())
	w.Close()
	assert.True(t, w.Closed())
}

// ============================================================================
// Host loop
// ============================================================================

// button is a 10x3 red rect at the origin holding the label "hi".
var button = dom.Mutations{
	dom.CreateElement{ID: 2, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
	dom.SetAttribute{ID: 2, Name: dom.AttrWidth, Value: "10"},
	dom.SetAttribute{ID: 2, Name: dom.AttrHeight, Value: "3"},
	dom.SetAttribute{ID: 2, Name: dom.AttrBackground, Value: "red"},
	dom.SetAttribute{ID: 2, Name: dom.AttrA11yID, Value: "7"},
	dom.CreateElement{ID: 3, Parent: 2, Tag: dom.TagLabel, Index: -1},
	dom.CreateText{ID: 4, Parent: 3, Text: "hi", Index: -1},
}

type running struct {
	host   *Host
	screen tcell.SimulationScreen
	tree   *vdom.Scripted
	done   chan error
	cancel context.CancelFunc
}

// start runs a host on a simulation screen and waits for its first frame.
func start(t *testing.T, tree *vdom.Scripted) *running {
	t.Helper()
	return startConfig(t, tree, Config{})
}

// startConfig is start with extra host settings. Tree, title, ticking, plugins and
// logger are always overridden.
func startConfig(t *testing.T, tree *vdom.Scripted, cfg Config) *running {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	rendered := make(chan struct{}, 1)
	cfg.VirtualTree = tree
	cfg.Title = "test"
	cfg.TickInterval = -1
	cfg.Plugins = []plugins.Plugin{plugins.Func(func(ev plugins.Event) {
		if ev.Type == plugins.AfterRender {
			select {
			case rendered <- struct{}{}:
			default:
			}
		}
	})}
	cfg.Logger = zerolog.Nop()
	host, err := New(screen, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := &running{host: host, screen: screen, tree: tree, done: make(chan error, 1), cancel: cancel}
	go func() { r.done <- host.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	})

	select {
	case <-rendered:
	case <-time.After(2 * time.Second):
		t.Fatal("host never rendered")
	}
	return r
}

func (r *running) post(t *testing.T, ev tcell.Event) {
	t.Helper()
	waitFor(t, func() bool { return r.screen.PostEvent(ev) == nil })
}

func (r *running) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("host did not stop")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestHostRendersInitialTree(t *testing.T) {
	r := start(t, vdom.NewScripted(button))

	waitFor(t, func() bool {
		ch, _, _, _ := r.screen.GetContent(0, 0)
		return ch == 'h'
	})
	_, _, style, _ := r.screen.GetContent(5, 1)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, bg)
}

func TestHostClickRunsHandler(t *testing.T) {
	tree := vdom.NewScripted(button)
	var clicks atomic.Int32
	tree.On(2, events.NameClick, func(ev *vdom.Event) {
		clicks.Add(1)
		tree.Queue(dom.Mutations{dom.SetText{ID: 4, Text: "ok"}})
	})
	r := start(t, tree)

	r.post(t, tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	r.post(t, tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone))

	waitFor(t, func() bool { return clicks.Load() == 1 })
	waitFor(t, func() bool {
		ch, _, _, _ := r.screen.GetContent(0, 0)
		return ch == 'o'
	})
}

func TestHostReleaseElsewhereIsNotAClick(t *testing.T) {
	tree := vdom.NewScripted(button)
	var clicks, ups atomic.Int32
	tree.On(2, events.NameClick, func(*vdom.Event) { clicks.Add(1) })
	tree.On(dom.RootID, events.EventMouseUp.String(), func(*vdom.Event) { ups.Add(1) })
	r := start(t, tree)

	r.post(t, tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	r.post(t, tcell.NewEventMouse(20, 10, tcell.ButtonNone, tcell.ModNone))

	waitFor(t, func() bool { return ups.Load() == 1 })
	assert.Zero(t, clicks.Load())
}

func TestHostKeysReachRoot(t *testing.T) {
	tree := vdom.NewScripted(button)
	keys := make(chan events.KeyData, 4)
	tree.On(dom.RootID, events.EventKeyDown.String(), func(ev *vdom.Event) {
		keys <- ev.Payload.(events.KeyData)
	})
	r := start(t, tree)

	r.post(t, tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	select {
	case k := <-keys:
		assert.Equal(t, "x", k.Key)
	case <-time.After(2 * time.Second):
		t.Fatal("keydown never delivered")
	}
}

func TestHostTabMovesFocus(t *testing.T) {
	tree := vdom.NewScripted(button)
	r := start(t, tree)

	focus, ok := vdom.Consume[*accessibility.FocusChannel](tree)
	require.True(t, ok)
	require.Equal(t, dom.RootAccessibilityID, focus.Get())

	r.post(t, tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	waitFor(t, func() bool { return focus.Get() == 7 })

	nav, ok := vdom.Consume[*accessibility.NavigatorState](tree)
	require.True(t, ok)
	assert.Equal(t, accessibility.Keyboard, nav.Get())
}

func TestHostBackgroundExit(t *testing.T) {
	tree := vdom.NewScripted(button)
	r := start(t, tree)

	emitter, ok := vdom.Consume[platform.EmitterHandle](tree)
	require.True(t, ok)
	require.NoError(t, emitter.Transport.Send(platform.ExitApp{}))

	assert.NoError(t, r.wait(t))
}

func TestHostCtrlCExits(t *testing.T) {
	r := start(t, vdom.NewScripted(button))
	r.post(t, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	assert.NoError(t, r.wait(t))
}

func TestHostContextCancelExits(t *testing.T) {
	r := start(t, vdom.NewScripted(button))
	r.cancel()
	assert.NoError(t, r.wait(t))
}

// wakerRunning reports whether any goroutine is parked in the application's idle
// waker.
func wakerRunning() bool {
	buf := make([]byte, 1<<20)
	buf = buf[:runtime.Stack(buf, true)]
	return strings.Contains(string(buf), "(*waker).arm")
}

func TestHostStopsIdleWaker(t *testing.T) {
	tests := []struct {
		name string
		stop func(t *testing.T, r *running)
	}{
		{"ctrl-c", func(t *testing.T, r *running) {
			r.post(t, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
		}},
		{"context cancel", func(_ *testing.T, r *running) { r.cancel() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := start(t, vdom.NewScripted(button))
			// The loop is idle after the first frame, so the waker is parked.
			waitFor(t, wakerRunning)

			tt.stop(t, r)
			require.NoError(t, r.wait(t))
			waitFor(t, func() bool { return !wakerRunning() })
		})
	}
}

func TestHostInitialSize(t *testing.T) {
	r := startConfig(t, vdom.NewScripted(button), Config{
		InitialSize: geom.Size{Width: 40, Height: 12},
	})

	cols, rows := r.screen.Size()
	assert.Equal(t, 40, cols)
	assert.Equal(t, 12, rows)

	// The app saw the configured size before the first frame.
	info := r.host.App().Platform().Info()
	assert.Equal(t, geom.Size{Width: 40, Height: 12}, info.WindowSize)
}

func TestHostTickerCapacity(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	h, err := New(screen, Config{VirtualTree: vdom.NewScripted(button), TickerCapacity: 3, Logger: zerolog.Nop()})
	require.NoError(t, err)

	ticker := h.App().Platform().NewTicker()
	defer ticker.Close()
	assert.Equal(t, 3, cap(ticker.C()))
}

func TestWheelDelta(t *testing.T) {
	tests := []struct {
		mask   tcell.ButtonMask
		dx, dy float32
	}{
		{tcell.ButtonNone, 0, 0},
		{tcell.WheelUp, 0, -1},
		{tcell.WheelDown, 0, 1},
		{tcell.WheelLeft, -1, 0},
		{tcell.WheelRight | tcell.WheelDown, 1, 1},
	}
	for _, tt := range tests {
		dx, dy := wheelDelta(tt.mask)
		assert.Equal(t, tt.dx, dx)
		assert.Equal(t, tt.dy, dy)
	}
}

func TestConvertModifiers(t *testing.T) {
	got := convertModifiers(tcell.ModShift | tcell.ModCtrl | tcell.ModMeta)
	assert.True(t, got.Shift())
	assert.True(t, got.Ctrl())
	assert.False(t, got.Alt())
	assert.True(t, got.Super())
}
