package commands

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/events"
	"github.com/agiangrant/lattice/platform"
	"github.com/agiangrant/lattice/plugins"
	"github.com/agiangrant/lattice/vdom"
)

// Demo node ids.
const (
	demoHeader      dom.NodeID = 2
	demoHeaderText  dom.NodeID = 4
	demoCounter     dom.NodeID = 5
	demoCounterText dom.NodeID = 7
	demoQuit        dom.NodeID = 8
	demoStatusText  dom.NodeID = 12
)

// framesPerStatus is how many ticks pass between status line updates.
const framesPerStatus = 30

// Demo is the counter app the run command hosts: a draggable header, an increment
// button, a quit button and a frame counter fed from a background goroutine.
type Demo struct {
	tree  *vdom.Scripted
	log   zerolog.Logger
	count int
}

// NewDemo builds the demo tree and registers its handlers.
func NewDemo(title string, logger zerolog.Logger) *Demo {
	d := &Demo{log: logger}
	d.tree = vdom.NewScripted(demoMutations(title))

	d.tree.On(demoHeader, events.EventMouseDown.String(), func(*vdom.Event) {
		d.platform().DragWindow()
	})
	d.tree.On(demoCounter, events.NameClick, func(*vdom.Event) { d.increment() })
	d.tree.On(demoQuit, events.NameClick, func(*vdom.Event) { d.platform().Exit() })
	for _, id := range []dom.NodeID{demoCounter, demoQuit} {
		d.tree.On(id, events.NameMouseEnter, d.hover(id, true))
		d.tree.On(id, events.NameMouseLeave, d.hover(id, false))
	}
	d.tree.On(dom.RootID, events.EventKeyDown.String(), func(ev *vdom.Event) {
		key, _ := ev.Payload.(events.KeyData)
		switch key.Key {
		case "q":
			d.platform().Exit()
		case "+", "Enter":
			d.increment()
		}
	})
	return d
}

func demoMutations(title string) dom.Mutations {
	return dom.Mutations{
		dom.SetAttribute{ID: dom.RootID, Name: dom.AttrPadding, Value: "1"},

		dom.CreateElement{ID: demoHeader, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: demoHeader, Name: dom.AttrWidth, Value: "fill"},
		dom.SetAttribute{ID: demoHeader, Name: dom.AttrHeight, Value: "1"},
		dom.SetAttribute{ID: demoHeader, Name: dom.AttrBackground, Value: "navy"},
		dom.CreateElement{ID: 3, Parent: demoHeader, Tag: dom.TagLabel, Index: -1},
		dom.SetAttribute{ID: 3, Name: dom.AttrColor, Value: "white"},
		dom.CreateText{ID: demoHeaderText, Parent: 3, Text: title + " (drag to move)", Index: -1},

		dom.CreateElement{ID: demoCounter, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrWidth, Value: "20"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrHeight, Value: "3"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrPadding, Value: "1"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrBackground, Value: "green"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrA11yID, Value: "1"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrRole, Value: "button"},
		dom.SetAttribute{ID: demoCounter, Name: dom.AttrLabel, Value: "increment"},
		dom.CreateElement{ID: 6, Parent: demoCounter, Tag: dom.TagLabel, Index: -1},
		dom.CreateText{ID: demoCounterText, Parent: 6, Text: counterText(0), Index: -1},

		dom.CreateElement{ID: demoQuit, Parent: dom.RootID, Tag: dom.TagRect, Index: -1},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrWidth, Value: "20"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrHeight, Value: "3"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrPadding, Value: "1"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrBackground, Value: "maroon"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrA11yID, Value: "2"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrRole, Value: "button"},
		dom.SetAttribute{ID: demoQuit, Name: dom.AttrLabel, Value: "quit"},
		dom.CreateElement{ID: 9, Parent: demoQuit, Tag: dom.TagLabel, Index: -1},
		dom.CreateText{ID: 10, Parent: 9, Text: "quit (q)", Index: -1},

		dom.CreateElement{ID: 11, Parent: dom.RootID, Tag: dom.TagLabel, Index: -1},
		dom.CreateText{ID: demoStatusText, Parent: 11, Text: statusText(0), Index: -1},
	}
}

func counterText(n int) string { return "count: " + strconv.Itoa(n) }
func statusText(n int) string  { return "frames: " + strconv.Itoa(n) }

// Tree returns the virtual tree to host.
func (d *Demo) Tree() *vdom.Scripted { return d.tree }

// Count returns the counter value. Only read it from the UI goroutine.
func (d *Demo) Count() int { return d.count }

func (d *Demo) platform() *platform.Platform {
	return platform.FromContext(d.tree.Contexts(), d.log)
}

func (d *Demo) increment() {
	d.count++
	d.tree.Queue(dom.Mutations{dom.SetText{ID: demoCounterText, Text: counterText(d.count)}})
}

func (d *Demo) hover(id dom.NodeID, on bool) vdom.Handler {
	return func(*vdom.Event) {
		icon, opacity := platform.CursorDefault, "1"
		if on {
			icon, opacity = platform.CursorPointer, "0.8"
		}
		d.platform().SetCursor(icon)
		d.tree.Queue(dom.Mutations{dom.SetAttribute{ID: id, Name: dom.AttrOpacity, Value: opacity}})
	}
}

// Plugin starts the frame counter once the window exists.
func (d *Demo) Plugin(ctx context.Context) plugins.Plugin {
	return plugins.Func(func(ev plugins.Event) {
		if ev.Type == plugins.WindowCreated {
			go d.countFrames(ctx, d.platform().NewTicker())
		}
	})
}

// countFrames runs off the UI goroutine and only talks to the tree through Queue.
func (d *Demo) countFrames(ctx context.Context, ticker *platform.Ticker) {
	if ticker == nil {
		return
	}
	defer ticker.Close()
	for frames := 1; ; frames++ {
		if err := ticker.Tick(ctx); err != nil {
			return
		}
		if frames%framesPerStatus == 0 {
			d.tree.Queue(dom.Mutations{dom.SetText{ID: demoStatusText, Text: statusText(frames)}})
		}
	}
}
