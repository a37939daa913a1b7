package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
	"github.com/inamate/inamate/whiteboard/internal/typeid"
)

// rotateSegments is the number of angle steps shift snaps rotation to.
const rotateSegments = 24

func restore(sh *shape.Shape, m document.ShapeModel) {
	sh.Update(func(p *document.ShapeModel) { *p = m.Clone() })
}

// translating drags the selection. Holding alt drags copies instead and
// releasing alt puts the originals back under the pointer.
func (s *selector) translating() *fsm.Node[*Event] {
	a := s.a
	var (
		initialPoints map[string]geom.Vec
		originals     []*shape.Shape
		clones        []*shape.Shape
		isCloning     bool
	)

	moveToPointer := func() {
		delta := a.shiftLocked(a.inputs.CurrentPoint.Sub(a.inputs.OriginPoint))
		for _, sh := range a.SelectedShapes() {
			if sh.IsLocked() {
				continue
			}
			p := initialPoints[sh.ID()].Add(delta)
			sh.Update(func(m *document.ShapeModel) { m.Point = p })
		}
	}

	startCloning := func() {
		if clones == nil {
			for _, sh := range originals {
				c := sh.Clone(typeid.NewShapeID())
				p := initialPoints[sh.ID()]
				c.Update(func(m *document.ShapeModel) {
					m.Point = p
					m.IsLocked = false
				})
				initialPoints[c.ID()] = p
				clones = append(clones, c)
			}
		}
		for _, sh := range originals {
			p := initialPoints[sh.ID()]
			sh.Update(func(m *document.ShapeModel) { m.Point = p })
		}
		a.AddShapes(clones...)
		a.SetSelectedShapes(shapeIDs(clones))
		moveToPointer()
		isCloning = true
	}

	stopCloning := func() {
		a.CurrentPage().RemoveShapes(clones...)
		a.SetSelectedShapes(shapeIDs(originals))
		moveToPointer()
		isCloning = false
	}

	move := func(*Event) {
		moveToPointer()
		a.viewport.PanToPointWhenNearBounds(a.inputs.CurrentPoint)
	}

	finish := func(*Event) {
		a.history.Resume()
		if isCloning {
			a.notify(EventCreateShapes, clones)
		}
		a.Persist()
		s.node.Transition("idle", nil)
	}

	return newState("translating", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			a.history.Pause()
			originals = a.SelectedShapes()
			clones = nil
			isCloning = false
			initialPoints = make(map[string]geom.Vec, len(originals))
			for _, sh := range originals {
				initialPoints[sh.ID()] = sh.Point()
			}
			if a.inputs.Alt {
				startCloning()
			} else {
				moveToPointer()
			}
		},
		Exit: func(fsm.Transition) {
			if a.history.IsPaused() {
				a.history.Resume()
				a.Persist()
			}
		},
		On: handlers{
			fsm.Wheel:       move,
			fsm.PointerMove: move,
			fsm.PointerDown: finish,
			fsm.PointerUp:   finish,
			fsm.KeyDown: func(e *Event) {
				switch e.Input.Key {
				case "Alt":
					if !isCloning {
						startCloning()
					}
				case "Escape":
					if isCloning {
						a.CurrentPage().RemoveShapes(clones...)
						a.SetSelectedShapes(shapeIDs(originals))
					}
					for _, sh := range originals {
						p := initialPoints[sh.ID()]
						sh.Update(func(m *document.ShapeModel) { m.Point = p })
					}
					a.history.Resume()
					s.node.Transition("idle", nil)
				}
			},
			fsm.KeyUp: func(e *Event) {
				if e.Input.Key == "Alt" && isCloning {
					stopCloning()
				}
			},
		},
	})
}

// translatingHandle drags one edit handle of a line or polyline.
func (s *selector) translatingHandle() *fsm.Node[*Event] {
	a := s.a
	var (
		info    EventInfo
		target  *shape.Shape
		initial document.ShapeModel
	)
	move := func(*Event) {
		if target == nil || a.inputs.PreviousPoint.IsEqual(a.inputs.CurrentPoint) {
			return
		}
		delta := a.shiftLocked(a.inputs.CurrentPoint.Sub(a.inputs.OriginPoint))
		target.OnHandleChange(initial, shape.HandleChangeInfo{ID: info.HandleID, Delta: delta})
	}
	return newState("translatingHandle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			a.history.Pause()
			info = dataOf(t).Info
			target = a.CurrentPage().Shape(info.ShapeID)
			if target != nil {
				initial = target.Props()
			}
		},
		Exit: func(fsm.Transition) {
			a.history.Resume()
			target = nil
		},
		On: handlers{
			fsm.Wheel:       move,
			fsm.PointerMove: move,
			fsm.PointerUp: func(*Event) {
				a.history.Resume()
				a.Persist()
				s.node.Transition("idle", nil)
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				if target != nil {
					restore(target, initial)
				}
				a.history.Resume()
				s.node.Transition("idle", nil)
			},
		},
	})
}

type resizeSnapshot struct {
	props           document.ShapeModel
	bounds          geom.Bounds
	transformOrigin geom.Vec
	ratioLocked     bool
}

// resizing drags a selection edge or corner. Alt resizes about the center,
// shift keeps the aspect ratio and ctrl crops images.
func (s *selector) resizing() *fsm.Node[*Event] {
	a := s.a
	var (
		handle   geom.SelectionHandle
		shapes   []*shape.Shape
		snaps    map[string]resizeSnapshot
		isSingle bool
		rotation float64
		common   geom.Bounds
	)

	move := func(*Event) {
		if len(shapes) == 0 {
			return
		}
		in := a.inputs
		delta := in.CurrentPoint.Sub(in.OriginPoint)
		if in.Alt {
			delta = delta.Mul(2)
		}
		first := shapes[0]
		var lock bool
		switch {
		case in.Shift:
			lock = true
		case isSingle && in.Ctrl:
			lock = first.Type() != shape.TypeImage
		case isSingle:
			lock = !first.Flags().CanChangeAspectRatio || snaps[first.ID()].ratioLocked
		}

		next := geom.TransformedBoundingBox(common, handle, delta, rotation, lock)
		if in.Alt {
			next.Bounds = next.Bounds.CenterOn(common.Center())
		}
		for _, sh := range shapes {
			snap := snaps[sh.ID()]
			flags := sh.Flags()
			if isSingle && !flags.CanResize {
				continue
			}
			rel := geom.RelativeTransformedBoundingBox(next.Bounds, common, snap.bounds, next.Scale.X < 0, next.Scale.Y < 0)
			if a.settings.SnapToGrid {
				rel = rel.SnapToGrid(GridSize)
			}
			scale := next.Scale
			if !flags.CanFlip {
				scale = scale.Abs()
			}
			if !flags.CanScale {
				scale = snap.props.Scale
			}
			r := snap.props.Rotation
			if (scale.X < 0) != (scale.Y < 0) {
				r = -r
			}
			sh.OnResize(snap.props, shape.ResizeInfo{
				Bounds:          rel,
				Center:          rel.Center(),
				Rotation:        r,
				Handle:          handle,
				Clip:            in.Ctrl,
				Scale:           scale,
				TransformOrigin: snap.transformOrigin,
			})
		}
		a.viewport.PanToPointWhenNearBounds(in.CurrentPoint)
	}

	return newState("resizing", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			a.history.Pause()
			handle = dataOf(t).Info.Handle
			shapes = a.SelectedShapes()
			isSingle = len(shapes) == 1
			rotation = 0
			if isSingle {
				rotation = shapes[0].Rotation()
			}
			common, _ = a.SelectionBounds()
			snaps = make(map[string]resizeSnapshot, len(shapes))
			for _, sh := range shapes {
				b := sh.Bounds()
				props := sh.Props()
				snaps[sh.ID()] = resizeSnapshot{
					props:  props,
					bounds: b,
					transformOrigin: geom.V(
						(b.MinX-common.MinX)/common.Width,
						(b.MinY-common.MinY)/common.Height,
					),
					ratioLocked: props.IsAspectRatioLocked || !sh.Flags().CanChangeAspectRatio || props.Rotation != 0,
				}
				sh.OnResizeStart(shape.ResizeStartInfo{IsSingle: isSingle})
			}
		},
		Exit: func(fsm.Transition) { a.history.Resume() },
		On: handlers{
			fsm.PointerMove: move,
			fsm.Wheel:       move,
			fsm.PointerUp: func(*Event) {
				a.history.Resume()
				a.Persist()
				s.node.Transition("idle", nil)
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				for _, sh := range shapes {
					restore(sh, snaps[sh.ID()].props)
				}
				a.history.Resume()
				s.node.Transition("idle", nil)
			},
		},
	})
}

type rotateSnapshot struct {
	props    document.ShapeModel
	point    geom.Vec
	center   geom.Vec
	rotation float64
}

// rotating turns the selection about its common center. Shift snaps to
// rotateSegments steps. Shapes with edit handles rotate their handles
// instead of their rotation.
func (s *selector) rotating() *fsm.Node[*Event] {
	a := s.a
	var (
		shapes       []*shape.Shape
		snaps        map[string]rotateSnapshot
		center       geom.Vec
		initialAngle float64
		initialRot   float64
	)

	move := func(*Event) {
		in := a.inputs
		delta := center.Angle(in.CurrentPoint) - initialAngle
		if in.Shift {
			delta = geom.SnapAngleToSegments(delta, rotateSegments)
		}
		for _, sh := range shapes {
			snap := snaps[sh.ID()]
			var offset float64
			if in.Shift {
				offset = geom.SnapAngleToSegments(snap.rotation, rotateSegments) - snap.rotation
			}
			relCenter := snap.center.Sub(snap.point)
			rotCenter := snap.center.RotWith(center, delta)

			if len(snap.props.Handles) > 0 {
				handles := snap.props.Clone().Handles
				pts := make([]geom.Vec, len(handles))
				for i, h := range handles {
					pts[i] = h.Point.RotWith(relCenter, delta+offset)
				}
				tl := geom.CommonTopLeft(pts)
				for i := range handles {
					handles[i].Point = pts[i].Sub(tl)
				}
				p := tl.Add(rotCenter.Sub(relCenter))
				sh.Update(func(m *document.ShapeModel) {
					m.Handles = handles
					m.Point = p
				})
				continue
			}
			p := rotCenter.Sub(relCenter)
			r := geom.ClampRadians(snap.rotation + delta + offset)
			sh.Update(func(m *document.ShapeModel) {
				m.Point = p
				m.Rotation = r
			})
		}
		next := geom.ClampRadians(initialRot + delta)
		if in.Shift {
			next = geom.SnapAngleToSegments(next, rotateSegments)
		}
		a.SetSelectionRotation(next)
	}

	return newState("rotating", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			a.history.Pause()
			shapes = a.SelectedShapes()
			initialRot = a.selectionRotation
			b, _ := a.SelectionBounds()
			center = b.Center()
			initialAngle = center.Angle(a.inputs.CurrentPoint)
			snaps = make(map[string]rotateSnapshot, len(shapes))
			for _, sh := range shapes {
				snaps[sh.ID()] = rotateSnapshot{
					props:    sh.Props(),
					point:    sh.Point(),
					center:   sh.Center(),
					rotation: sh.Rotation(),
				}
			}
		},
		Exit: func(fsm.Transition) { a.history.Resume() },
		On: handlers{
			fsm.PointerMove: move,
			fsm.Wheel:       move,
			fsm.PointerUp: func(*Event) {
				a.history.Resume()
				a.Persist()
				s.node.Transition("idle", nil)
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				for _, sh := range shapes {
					restore(sh, snaps[sh.ID()].props)
				}
				a.SetSelectionRotation(initialRot)
				a.history.Resume()
				s.node.Transition("idle", nil)
			},
		},
	})
}
