package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// moveTool pans the camera. It is also borrowed while space or the middle
// button is held, and then hands control back to the tool it interrupted.
func moveTool(a *App) *fsm.Node[*Event] {
	var node *fsm.Node[*Event]
	var prevTool string

	toPanning := func(from string) func(*Event) {
		return func(e *Event) {
			if e.primary {
				node.Transition("panning", Data{PrevState: from})
			}
		}
	}

	idle := newState("idle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			if dataOf(t).Exit && prevTool != "" {
				to := prevTool
				prevTool = ""
				a.Transition(to, nil)
			}
		},
		On: handlers{
			fsm.PointerDown: toPanning("idle"),
			fsm.PinchStart:  func(*Event) { node.Transition("pinching", nil) },
		},
	})

	idleHold := newState("idleHold", fsm.Behavior[*Event]{On: handlers{
		fsm.PointerDown: toPanning("idleHold"),
	}})

	var (
		prevState    string
		originScreen geom.Vec
		originCamera geom.Vec
	)
	panning := newState("panning", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			prevState = dataOf(t).PrevState
			originScreen = a.inputs.CurrentScreenPoint
			originCamera = a.viewport.camera.Point
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				d := originScreen.Sub(a.inputs.CurrentScreenPoint).Div(a.viewport.camera.Zoom)
				p := originCamera.Sub(d)
				a.viewport.Update(&p, nil)
			},
			fsm.PointerUp: func(*Event) {
				to := prevState
				if to == "" {
					to = "idle"
				}
				node.Transition(to, nil)
			},
		},
	})

	node = newTool("move", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			prevTool = dataOf(t).PrevTool
			if prevTool == "move" {
				prevTool = ""
			}
		},
	}, idle, idleHold, panning, pinchingState(a))
	return node
}
