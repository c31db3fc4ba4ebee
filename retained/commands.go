package retained

import (
	"context"
	"fmt"

	"github.com/agiangrant/lattice/accessibility"
	"github.com/agiangrant/lattice/dom"
	"github.com/agiangrant/lattice/events"
	"github.com/agiangrant/lattice/platform"
)

// HandleCommand executes a platform command on the UI goroutine. Hosts call it for
// every command drained from the proxy or the background emitter.
func (a *Application) HandleCommand(cmd platform.Command, w Window) {
	a.metrics.CommandHandled(context.Background(), commandKind(cmd))

	switch c := cmd.(type) {
	case platform.SetCursor:
		w.SetCursor(c.Icon)
	case platform.DragWindow:
		if err := w.DragWindow(); err != nil {
			a.log.Debug().Err(err).Msg("drag window")
		}
	case platform.DragResizeWindow:
		if err := w.DragResizeWindow(c.Direction); err != nil {
			a.log.Debug().Err(err).Msg("drag resize window")
		}
	case platform.SetWindowSize:
		w.SetInnerSize(c.Size)
	case platform.SetWindowPosition:
		w.SetOuterPosition(c.Position)
	case platform.SetWindowSizeAndPosition:
		w.SetInnerSize(c.Size)
		w.SetOuterPosition(c.Position)
	case platform.RequestRerender:
		w.RequestRedraw()
	case platform.ExitApp:
		a.waker.close()
		w.Close()

	case platform.FocusNode:
		if a.a11y.Focus(c.ID) {
			w.RequestRedraw()
		}
	case platform.FocusNext:
		a.FocusNextNode(FocusForward)
		w.RequestRedraw()
	case platform.FocusPrev:
		a.FocusNextNode(FocusBackward)
		w.RequestRedraw()

	case platform.UpdateTemplate:
		a.ReplaceTemplate(c.Template)
		w.RequestRedraw()
	case platform.PollPending:
		a.Poll(w)
	case platform.RemeasureTextGroup:
		if a.MeasureTextGroup(c.ID) {
			w.RequestRedraw()
		}

	case platform.ScaleFactorChanged:
		if c.Scale > 0 {
			a.scale = c.Scale
		}
		a.OnResize(w.InnerSize())
		a.emitter.Emit(events.DomEvent{Name: EventScaleFactorChanged, Node: dom.RootID, Data: c.Scale})
		w.RequestRedraw()
	case platform.AccessibilityAction:
		a.handleAccessibilityAction(c, w)
	case platform.WindowMoved:
		a.OnMoved(c.Position)

	default:
		a.log.Warn().Str("command", commandKind(cmd)).Msg("unhandled platform command")
	}
}

func (a *Application) handleAccessibilityAction(c platform.AccessibilityAction, w Window) {
	switch c.Action {
	case platform.ActionFocus:
		if a.a11y.Focus(c.Target) {
			a.SetNavigationMode(accessibility.Keyboard)
			w.RequestRedraw()
		}
	case platform.ActionDefault:
		node, ok := a.a11y.NodeFor(c.Target)
		if !ok {
			a.log.Debug().Uint64("a11y_id", uint64(c.Target)).Msg("action on unknown accessibility node")
			return
		}
		a.emitter.Emit(events.DomEvent{Name: events.NameClick, Node: node, Bubbles: true})
		a.Poll(w)
	}
}

func commandKind(cmd platform.Command) string {
	return fmt.Sprintf("%T", cmd)
}
