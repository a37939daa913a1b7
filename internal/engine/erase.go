package engine

import (
	"slices"

	"github.com/inamate/inamate/whiteboard/internal/fsm"
)

// eraseTool deletes the shapes a click lands on, or every shape a drag
// passes over.
func eraseTool(a *App) *fsm.Node[*Event] {
	var node *fsm.Node[*Event]

	// Leave the state first so erasing resumes history before the delete
	// persists.
	commit := func(*Event) {
		ids := a.ErasingIDs()
		a.SetErasingShapes(nil)
		node.Transition("idle", nil)
		a.DeleteShapes(ids...)
	}

	pointing := newState("pointing", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			var ids []string
			for _, sh := range a.ShapesInViewport() {
				if sh.HitTestPoint(a.inputs.CurrentPoint) {
					ids = append(ids, sh.ID())
				}
			}
			a.SetErasingShapes(ids)
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if a.dragged() {
					node.Transition("erasing", nil)
					a.DeselectAll()
				}
			},
			fsm.PointerUp: commit,
		},
	})

	erasing := newState("erasing", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) { a.history.Pause() },
		Exit:  func(fsm.Transition) { a.history.Resume() },
		On: handlers{
			fsm.PointerMove: func(*Event) {
				prev, cur := a.inputs.PreviousPoint, a.inputs.CurrentPoint
				if prev.IsEqual(cur) {
					return
				}
				ids := a.ErasingIDs()
				for _, sh := range a.ShapesInViewport() {
					if !slices.Contains(ids, sh.ID()) && sh.HitTestLineSegment(prev, cur) {
						ids = append(ids, sh.ID())
					}
				}
				a.SetErasingShapes(ids)
			},
			fsm.PointerUp: commit,
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key == "Escape" {
					a.SetErasingShapes(nil)
					node.Transition("idle", nil)
				}
			},
		},
	})

	node = newTool("erase", fsm.Behavior[*Event]{},
		creatingIdle(a, "erase", "pointing"),
		pointing,
		erasing,
	)
	return node
}
