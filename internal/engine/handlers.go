package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// Pointer buttons.
const (
	ButtonPrimary   = 0
	ButtonMiddle    = 1
	ButtonSecondary = 2
)

func (a *App) Wheel(info EventInfo, input Input)        { a.dispatch(fsm.Wheel, info, input) }
func (a *App) PointerDown(info EventInfo, input Input)  { a.dispatch(fsm.PointerDown, info, input) }
func (a *App) PointerUp(info EventInfo, input Input)    { a.dispatch(fsm.PointerUp, info, input) }
func (a *App) PointerMove(info EventInfo, input Input)  { a.dispatch(fsm.PointerMove, info, input) }
func (a *App) PointerEnter(info EventInfo, input Input) { a.dispatch(fsm.PointerEnter, info, input) }
func (a *App) PointerLeave(info EventInfo, input Input) { a.dispatch(fsm.PointerLeave, info, input) }
func (a *App) DoubleClick(info EventInfo, input Input)  { a.dispatch(fsm.DoubleClick, info, input) }
func (a *App) KeyDown(info EventInfo, input Input)      { a.dispatch(fsm.KeyDown, info, input) }
func (a *App) KeyUp(info EventInfo, input Input)        { a.dispatch(fsm.KeyUp, info, input) }
func (a *App) PinchStart(info EventInfo, input Input)   { a.dispatch(fsm.PinchStart, info, input) }
func (a *App) Pinch(info EventInfo, input Input)        { a.dispatch(fsm.Pinch, info, input) }
func (a *App) PinchEnd(info EventInfo, input Input)     { a.dispatch(fsm.PinchEnd, info, input) }

// Dispatch delivers an event of any kind.
func (a *App) Dispatch(kind fsm.Kind, info EventInfo, input Input) { a.dispatch(kind, info, input) }

func (a *App) dispatch(kind fsm.Kind, info EventInfo, input Input) {
	e := &Event{Kind: kind, Info: info, Input: input, primary: true}
	if d := info.Dispatch; d != nil {
		e.primary = !d.consumed
		d.consumed = true
	}
	a.root.Dispatch(kind, e)
}

func (a *App) pagePoint(e *Event) geom.Vec { return a.viewport.PagePoint(e.Input.Point) }

// The root handlers below keep Inputs current and run the tool-independent
// shortcuts. They act on primary deliveries only; the tools see every
// delivery after them.

func (a *App) onWheel(e *Event) {
	if !e.primary {
		return
	}
	if e.Input.Ctrl || e.Input.Meta {
		z := a.viewport.camera.Zoom
		a.viewport.PinchZoom(e.Input.Point, geom.Vec{}, z-e.Info.Delta.Y*zoomWheelFactor*z)
	} else {
		a.viewport.PanCamera(e.Info.Delta)
	}
	a.inputs.onWheel(a.pagePoint(e), e.Input)
}

func (a *App) onPointerDown(e *Event) {
	if !e.primary {
		return
	}
	a.inputs.onPointerDown(a.pagePoint(e), e.Input)
	switch e.Input.Button {
	case ButtonMiddle:
		if !a.IsIn("select.editingShape") && !a.IsIn("move") {
			a.holdMove()
		}
	case ButtonSecondary:
		if !a.IsIn("select") {
			a.Transition("select", nil)
		}
	}
}

func (a *App) onPointerUp(e *Event) {
	if !e.primary {
		return
	}
	a.inputs.onPointerUp(e.Input)
	if e.Input.Button == ButtonMiddle && a.IsIn("move") {
		a.releaseMove()
	}
}

func (a *App) onPointerMove(e *Event) {
	if !e.primary {
		return
	}
	a.inputs.onPointerMove(a.pagePoint(e), e.Input)
}

func (a *App) onKeyDown(e *Event) {
	if !e.primary {
		return
	}
	a.inputs.onKeyDown(e.Input)
	if e.Input.Key == " " && !a.IsIn("move") && !a.IsIn("select.editingShape") {
		a.holdMove()
	}
	if isModifier(e.Input.Key) {
		a.replayMove()
	}
}

func (a *App) onKeyUp(e *Event) {
	if !e.primary {
		return
	}
	a.inputs.onKeyUp(e.Input)
	if e.Input.Key == " " && a.IsIn("move") {
		a.releaseMove()
	}
	if isModifier(e.Input.Key) {
		a.replayMove()
	}
}

func (a *App) onPinchStart(e *Event) {
	if e.primary {
		a.inputs.onPinchStart(e.Input)
	}
}

func (a *App) onPinch(e *Event) {
	if e.primary {
		a.inputs.onPinch(e.Input)
	}
}

func (a *App) onPinchEnd(e *Event) {
	if e.primary {
		a.inputs.onPinchEnd(e.Input)
	}
}

// holdMove switches to the move tool until releaseMove.
func (a *App) holdMove() {
	prev := a.SelectedTool()
	a.Transition("move", Data{PrevTool: prev})
	a.tool().Transition("idleHold", Data{PrevTool: prev})
}

func (a *App) releaseMove() { a.tool().Transition("idle", Data{Exit: true}) }

// replayMove re-sends the last pointer position to the active tool so a
// drag reacts to a modifier change without the pointer moving.
func (a *App) replayMove() {
	if a.inputs.State != InputPointing {
		return
	}
	in := Input{
		Point: a.inputs.CurrentScreenPoint,
		Shift: a.inputs.Shift,
		Ctrl:  a.inputs.Ctrl,
		Alt:   a.inputs.Alt,
	}
	a.tool().Dispatch(fsm.PointerMove, &Event{Kind: fsm.PointerMove, Info: Canvas(), Input: in, primary: true})
}
