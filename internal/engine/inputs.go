package engine

import "github.com/inamate/inamate/whiteboard/internal/geom"

// InputState is what the pointer is doing.
type InputState string

const (
	InputIdle     InputState = "idle"
	InputPointing InputState = "pointing"
	InputPinching InputState = "pinching"
)

// Inputs tracks modifier keys and pointer positions across events. Points
// are kept in both screen and page space.
type Inputs struct {
	Shift    bool
	Ctrl     bool
	Alt      bool
	Space    bool
	ModKey   bool
	State    InputState
	Pointers map[int]struct{}

	CurrentScreenPoint  geom.Vec
	PreviousScreenPoint geom.Vec
	OriginScreenPoint   geom.Vec
	CurrentPoint        geom.Vec
	PreviousPoint       geom.Vec
	OriginPoint         geom.Vec
}

func newInputs() *Inputs {
	return &Inputs{State: InputIdle, Pointers: make(map[int]struct{})}
}

func (in *Inputs) updateModifiers(input Input, hasPoint bool) {
	if hasPoint {
		in.PreviousScreenPoint = in.CurrentScreenPoint
		in.CurrentScreenPoint = input.Point
	}
	in.Shift = input.Shift
	in.Ctrl = input.Ctrl || input.Meta
	in.ModKey = in.Ctrl
	in.Alt = input.Alt
}

func (in *Inputs) onWheel(page geom.Vec, input Input) {
	in.updateModifiers(input, true)
	in.PreviousPoint = in.CurrentPoint
	in.CurrentPoint = page
}

func (in *Inputs) onPointerDown(page geom.Vec, input Input) {
	in.Pointers[input.PointerID] = struct{}{}
	in.updateModifiers(input, true)
	in.OriginScreenPoint = in.CurrentScreenPoint
	in.PreviousPoint = in.CurrentPoint
	in.CurrentPoint = page
	in.OriginPoint = page
	in.State = InputPointing
}

func (in *Inputs) onPointerMove(page geom.Vec, input Input) {
	if in.State == InputPinching {
		return
	}
	in.updateModifiers(input, true)
	in.PreviousPoint = in.CurrentPoint
	in.CurrentPoint = page
}

func (in *Inputs) onPointerUp(input Input) {
	clear(in.Pointers)
	in.updateModifiers(input, true)
	in.State = InputIdle
}

func (in *Inputs) onKeyDown(input Input) {
	in.updateModifiers(input, false)
	switch input.Key {
	case " ":
		in.Space = true
	case "Shift":
		in.Shift = true
	case "Alt":
		in.Alt = true
	case "Control", "Meta":
		in.Ctrl, in.ModKey = true, true
	}
}

func (in *Inputs) onKeyUp(input Input) {
	in.updateModifiers(input, false)
	switch input.Key {
	case " ":
		in.Space = false
	case "Shift":
		in.Shift = false
	case "Alt":
		in.Alt = false
	case "Control", "Meta":
		in.Ctrl, in.ModKey = false, false
	}
}

func (in *Inputs) onPinchStart(input Input) {
	in.updateModifiers(input, false)
	in.State = InputPinching
}

func (in *Inputs) onPinch(input Input) {
	if in.State != InputPinching {
		return
	}
	in.updateModifiers(input, false)
}

func (in *Inputs) onPinchEnd(input Input) {
	if in.State != InputPinching {
		return
	}
	in.updateModifiers(input, false)
	in.State = InputIdle
}
