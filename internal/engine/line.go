package engine

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// lineTool creates lines and polylines by dragging out their last handle.
// Shift snaps the segment angle.
func lineTool(t shape.Type) ToolFunc {
	return func(a *App) *fsm.Node[*Event] {
		var (
			sh      *shape.Shape
			initial document.ShapeModel
		)

		move := func(*Event) {
			if sh == nil || len(initial.Handles) < 2 {
				return
			}
			in := a.inputs
			delta := in.CurrentPoint.Sub(in.OriginPoint)
			if in.Shift {
				angle := geom.SnapAngleToSegments(in.OriginPoint.Angle(in.CurrentPoint), rotateSegments)
				dist := in.OriginPoint.Dist(in.CurrentPoint)
				delta = geom.V(math.Cos(angle), math.Sin(angle)).Mul(dist)
			}
			last := initial.Handles[len(initial.Handles)-1]
			end := initial.Point.Add(last.Point).Add(delta)
			if a.settings.ShowGrid {
				end = end.Snap(a.CurrentGrid())
			} else {
				end = end.ToFixed()
			}
			start := initial.Point.Add(initial.Handles[0].Point)
			if end.IsEqual(start) {
				return
			}
			sh.OnHandleChange(initial, shape.HandleChangeInfo{
				ID:    last.ID,
				Delta: end.Sub(initial.Point.Add(last.Point)),
			})
		}

		creating := newState("creating", fsm.Behavior[*Event]{
			Enter: func(fsm.Transition) {
				a.history.Pause()
				origin := a.inputs.OriginPoint
				next, err := a.newToolShape(t, func(m *document.ShapeModel) {
					m.Point = origin
					m.StrokeWidth = a.settings.StrokeWidth
					m.Fill = ""
					if len(m.Handles) < 2 {
						m.Handles = []document.Handle{
							{ID: "start", Point: geom.Vec{}},
							{ID: "end", Point: geom.V(1, 1)},
						}
					}
				})
				if err != nil {
					a.log.Error("create shape", "type", t, "error", err)
					a.abortCreating(nil)
					return
				}
				sh = next
				initial = sh.Props()
				a.AddShapes(sh)
				a.SetSelectedShapes([]string{sh.ID()})
			},
			Exit: func(fsm.Transition) {
				sh = nil
				if a.history.IsPaused() {
					a.history.Resume()
				}
			},
			On: handlers{
				fsm.PointerMove: move,
				fsm.Wheel:       move,
				fsm.PointerUp: func(*Event) {
					created := sh
					a.history.Resume()
					a.tool().Transition("idle", nil)
					if created != nil {
						a.SetSelectedShapes([]string{created.ID()})
						a.lockedOrIdle(func() { a.Transition("select", nil) })
					}
					a.Persist()
				},
				fsm.KeyDown: func(e *Event) {
					if e.Input.Key == "Escape" {
						a.abortCreating(sh)
					}
				},
			},
		})

		return newTool(string(t), fsm.Behavior[*Event]{},
			creatingIdle(a, string(t), "pointing"),
			creatingPointing(a),
			creating,
			pinchingState(a),
		)
	}
}
