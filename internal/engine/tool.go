package engine

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// DragDistance is how far, in page units, the pointer must travel from
// where it went down before a press becomes a drag.
const DragDistance = 5

// Data travels with tool and state transitions.
type Data struct {
	// Info is the event target that caused the transition.
	Info EventInfo
	// ReturnTo names the tool to go back to after a borrowed gesture.
	ReturnTo string
	// PrevTool and PrevState let the move tool undo a temporary switch.
	PrevTool  string
	PrevState string
	// Exit asks the move tool to hand control back to PrevTool.
	Exit bool
}

func dataOf(t fsm.Transition) Data {
	d, _ := t.Data.(Data)
	return d
}

type handlers = map[fsm.Kind]func(*Event)

func newTool(id string, b fsm.Behavior[*Event], states ...*fsm.Node[*Event]) *fsm.Node[*Event] {
	return fsm.NewNode(id, "idle", b, states...)
}

func newState(id string, b fsm.Behavior[*Event]) *fsm.Node[*Event] {
	return fsm.NewNode[*Event](id, "", b)
}

// dragged reports whether the pointer has left the press point.
func (a *App) dragged() bool {
	return a.inputs.CurrentPoint.Dist(a.inputs.OriginPoint) > DragDistance
}

// shiftLocked zeroes the smaller axis of delta while shift is held. A tie
// keeps the horizontal component.
func (a *App) shiftLocked(delta geom.Vec) geom.Vec {
	if !a.inputs.Shift {
		return delta
	}
	if math.Abs(delta.X) < math.Abs(delta.Y) {
		delta.X = 0
	} else {
		delta.Y = 0
	}
	return delta
}

// lockedOrIdle ends a creating gesture: with the tool lock on it stays in
// the tool, otherwise it switches to select.
func (a *App) lockedOrIdle(next func()) {
	if a.settings.IsToolLocked {
		a.tool().Transition("idle", nil)
		return
	}
	next()
}

// hoverEnter tracks the hovered shape for the idle states of select and
// the creating tools. It reports whether the pointer entered a selection
// handle that can be dragged.
func (a *App) hoverEnter(e *Event) bool {
	if !e.primary {
		return false
	}
	switch e.Info.Type {
	case TargetShape:
		a.SetHoveredShape(e.Info.ShapeID)
	case TargetCanvas:
		a.SetHoveredShape("")
	case TargetSelection:
		return e.Info.Handle != geom.HandleBackground && e.Info.Handle != geom.HandleCenter
	}
	return false
}

func (a *App) hoverLeave(e *Event) {
	if e.primary && e.Info.Type == TargetShape {
		a.SetHoveredShape("")
	}
}

// borrowPinch hands a pinch to the select tool and comes back to tool when
// it ends.
func (a *App) borrowPinch(tool string, e *Event) {
	a.Transition("select", Data{ReturnTo: tool})
	a.tool().Dispatch(fsm.PinchStart, e)
}

// pinchingState zooms the camera until the pinch ends.
func pinchingState(a *App) *fsm.Node[*Event] {
	return newState("pinching", fsm.Behavior[*Event]{On: handlers{
		fsm.Pinch: func(e *Event) {
			a.viewport.PinchZoom(e.Info.Point, e.Info.Delta, e.Info.Zoom)
		},
		fsm.PinchEnd: func(*Event) { a.tool().Transition("idle", nil) },
	}})
}
