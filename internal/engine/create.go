package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
	"github.com/inamate/inamate/whiteboard/internal/typeid"
)

// drawSpacing is the step between points added when shift continues a
// freehand stroke with a straight segment.
const drawSpacing = 16

// newToolShape builds a detached shape of type t from the kind defaults,
// painted with the current color.
func (a *App) newToolShape(t shape.Type, fn func(m *document.ShapeModel)) (*shape.Shape, error) {
	return a.registry.New(string(t), typeid.NewShapeID(), func(m *document.ShapeModel) {
		m.ParentID = a.currentPageID
		m.Fill = a.settings.Color
		m.Stroke = a.settings.Color
		if fn != nil {
			fn(m)
		}
	})
}

// creatingIdle is the resting state of a creating tool. A press moves to
// next; a pinch is lent to the select tool.
func creatingIdle(a *App, tool, next string) *fsm.Node[*Event] {
	return newState("idle", fsm.Behavior[*Event]{On: handlers{
		fsm.PointerDown: func(e *Event) {
			if e.primary && e.Input.Button == ButtonPrimary {
				a.tool().Transition(next, nil)
			}
		},
		fsm.PinchStart: func(e *Event) { a.borrowPinch(tool, e) },
		fsm.PointerEnter: func(e *Event) {
			a.hoverEnter(e)
		},
		fsm.PointerLeave: a.hoverLeave,
		fsm.KeyDown: func(e *Event) {
			if e.Input.Key == "Escape" {
				a.Transition("select", nil)
			}
		},
	}})
}

// creatingPointing waits for a drag before creating.
func creatingPointing(a *App) *fsm.Node[*Event] {
	return newState("pointing", fsm.Behavior[*Event]{On: handlers{
		fsm.PointerMove: func(*Event) {
			if a.dragged() {
				a.tool().Transition("creating", nil)
			}
		},
		fsm.PointerUp:  func(*Event) { a.tool().Transition("idle", nil) },
		fsm.PinchStart: func(*Event) { a.tool().Transition("pinching", nil) },
	}})
}

// abortCreating removes a shape that was being created and leaves the
// history where it was before the gesture.
func (a *App) abortCreating(sh *shape.Shape) {
	if sh != nil {
		a.CurrentPage().RemoveShapes(sh)
		a.SetSelectedShapes(nil)
	}
	a.history.Resume()
	a.pendingSave = false
	a.tool().Transition("idle", nil)
}

// boxTool creates box-like shapes by dragging out their bottom right
// corner.
func boxTool(t shape.Type) ToolFunc {
	return func(a *App) *fsm.Node[*Event] {
		var (
			sh      *shape.Shape
			initial geom.Bounds
		)
		creating := newState("creating", fsm.Behavior[*Event]{
			Enter: func(fsm.Transition) {
				a.history.Pause()
				origin := a.inputs.OriginPoint
				next, err := a.newToolShape(t, func(m *document.ShapeModel) {
					m.Point = origin
					m.Size = geom.V(1, 1)
				})
				if err != nil {
					a.log.Error("create shape", "type", t, "error", err)
					a.abortCreating(nil)
					return
				}
				sh = next
				initial = geom.NewBounds(origin, geom.V(1, 1))
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
				fsm.PointerMove: func(e *Event) {
					if sh == nil || !e.primary {
						return
					}
					lock := a.inputs.Shift || sh.Props().IsAspectRatioLocked || !sh.Flags().CanChangeAspectRatio
					delta := a.inputs.CurrentPoint.Sub(a.inputs.OriginPoint)
					b := geom.TransformedBoundingBox(initial, geom.CornerBottomRight, delta, 0, lock).Bounds
					if a.settings.SnapToGrid {
						b = b.SnapToGrid(GridSize)
					}
					sh.Update(func(m *document.ShapeModel) {
						m.Point = b.Min()
						m.Size = b.Size()
					})
				},
				fsm.PointerUp: func(*Event) {
					created := sh
					a.history.Resume()
					a.tool().Transition("idle", nil)
					if created != nil {
						a.SetSelectedShapes([]string{created.ID()})
						a.lockedOrIdle(func() { a.api.EditShape(created.ID()) })
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

// dotTool places a dot with a single click.
func dotTool(a *App) *fsm.Node[*Event] {
	var sh *shape.Shape
	place := func() {
		r := sh.Props().Radius
		p := a.inputs.CurrentPoint.Sub(geom.V(r, r))
		sh.Update(func(m *document.ShapeModel) { m.Point = p })
	}
	creating := newState("creating", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			next, err := a.newToolShape(shape.TypeDot, nil)
			if err != nil {
				a.log.Error("create shape", "type", shape.TypeDot, "error", err)
				a.tool().Transition("idle", nil)
				return
			}
			sh = next
			place()
		},
		Exit: func(fsm.Transition) { sh = nil },
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if sh != nil {
					place()
				}
			},
			fsm.PointerUp: func(*Event) {
				created := sh
				a.tool().Transition("idle", nil)
				if created == nil {
					return
				}
				a.AddShapes(created)
				a.SetSelectedShapes([]string{created.ID()})
				a.notify(EventCreateShapes, []*shape.Shape{created})
				a.Persist()
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key == "Escape" {
					a.tool().Transition("idle", nil)
				}
			},
		},
	})
	return newTool(string(shape.TypeDot), fsm.Behavior[*Event]{},
		creatingIdle(a, string(shape.TypeDot), "creating"),
		creating,
	)
}

// drawTool records freehand strokes. Holding shift when pressing extends
// the previous stroke with a straight segment to the pointer.
func drawTool(a *App) *fsm.Node[*Event] {
	var (
		sh       *shape.Shape
		previous *shape.Shape
		initial  *document.ShapeModel
	)

	addPoint := func(page geom.Vec) {
		props := sh.Props()
		pts := append(props.Points, page.Sub(props.Point))
		point := props.Point
		if tl := geom.CommonTopLeft(pts); tl.X < 0 || tl.Y < 0 {
			offset := geom.V(min(tl.X, 0), min(tl.Y, 0))
			for i := range pts {
				pts[i] = pts[i].Sub(offset)
			}
			point = point.Add(offset)
		}
		sh.Update(func(m *document.ShapeModel) {
			m.Points = pts
			m.Point = point
		})
	}

	creating := newState("creating", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			a.history.Pause()
			initial = nil
			if a.inputs.Shift && previous != nil && a.CurrentPage().Shape(previous.ID()) == previous {
				sh = previous
				props := sh.Props()
				initial = &props
				if n := len(props.Points); n > 0 {
					last := props.Points[n-1].Add(props.Point)
					cur := a.inputs.CurrentPoint
					steps := int(last.Dist(cur) / drawSpacing)
					for i := 1; i <= steps; i++ {
						addPoint(last.Lrp(cur, float64(i)/float64(steps)))
					}
				}
				return
			}
			origin := a.inputs.OriginPoint
			next, err := a.newToolShape(shape.TypeDraw, func(m *document.ShapeModel) {
				m.Point = origin
				m.Points = []geom.Vec{{}}
				m.IsComplete = false
				m.StrokeWidth = a.settings.StrokeWidth
			})
			if err != nil {
				a.log.Error("create shape", "type", shape.TypeDraw, "error", err)
				a.abortCreating(nil)
				return
			}
			sh = next
			a.AddShapes(sh)
		},
		Exit: func(fsm.Transition) {
			sh = nil
			if a.history.IsPaused() {
				a.history.Resume()
			}
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if sh != nil {
					addPoint(a.inputs.CurrentPoint)
				}
			},
			fsm.PointerUp: func(*Event) {
				if sh == nil {
					return
				}
				a.history.Resume()
				sh.Update(func(m *document.ShapeModel) { m.IsComplete = true })
				previous = sh
				a.tool().Transition("idle", nil)
				a.Persist()
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				if initial != nil {
					restore(sh, *initial)
					a.abortCreating(nil)
					return
				}
				a.abortCreating(sh)
			},
		},
	})
	return newTool(string(shape.TypeDraw), fsm.Behavior[*Event]{},
		creatingIdle(a, string(shape.TypeDraw), "creating"),
		creating,
		pinchingState(a),
	)
}

// textTool drops an empty text shape centered on the click and starts
// editing it.
func textTool(a *App) *fsm.Node[*Event] {
	creating := newState("creating", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			origin := a.inputs.OriginPoint
			sh, err := a.newToolShape(shape.TypeText, func(m *document.ShapeModel) {
				m.Text = ""
				m.Size = geom.V(16, 32)
				m.IsSizeLocked = true
			})
			if err != nil {
				a.log.Error("create shape", "type", shape.TypeText, "error", err)
				a.tool().Transition("idle", nil)
				return
			}
			a.AddShapes(sh)
			b := sh.Bounds().CenterOn(origin)
			if a.settings.SnapToGrid {
				b = b.SnapToGrid(GridSize)
			}
			sh.Update(func(m *document.ShapeModel) { m.Point = b.Min() })
			a.Transition("select", nil)
			a.SetSelectedShapes([]string{sh.ID()})
			a.tool().Transition("editingShape", Data{Info: OnShape(sh.ID())})
		},
	})
	return newTool(string(shape.TypeText), fsm.Behavior[*Event]{},
		creatingIdle(a, string(shape.TypeText), "creating"),
		creating,
	)
}
