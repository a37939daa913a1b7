package engine

import (
	"slices"
	"strings"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
	"github.com/inamate/inamate/whiteboard/internal/spatial"
)

// selector is the select tool. Its states share the App and returnTo.
type selector struct {
	a    *App
	node *fsm.Node[*Event]

	// returnTo is the tool that lent a pinch to select.
	returnTo string
}

func selectTool(a *App) *fsm.Node[*Event] {
	s := &selector{a: a}
	s.node = newTool("select", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) { s.returnTo = dataOf(t).ReturnTo },
	},
		s.idle(),
		s.hoveringSelectionHandle(),
		s.pointingCanvas(),
		s.pointingShape(),
		s.pointingSelectedShape(),
		s.pointingShapeBehindBounds(),
		s.pointingBoundsBackground(),
		s.pointingResizeHandle(),
		s.pointingRotateHandle(),
		s.pointingHandle(),
		s.brushing(),
		s.translating(),
		s.translatingHandle(),
		s.resizing(),
		s.rotating(),
		pinchingState(a),
		s.editingShape(),
		s.contextMenu(),
	)
	return s.node
}

func (s *selector) to(state string, info EventInfo) { s.node.Transition(state, Data{Info: info}) }

// single returns the only selected shape, or nil.
func (s *selector) single() *shape.Shape {
	shapes := s.a.SelectedShapes()
	if len(shapes) != 1 {
		return nil
	}
	return shapes[0]
}

func canEdit(sh *shape.Shape) bool { return sh != nil && sh.Flags().CanEdit && !sh.IsLocked() }

func (s *selector) selectOnly(id string) { s.a.SetSelectedShapes([]string{id}) }

func (s *selector) addToSelection(id string) {
	s.a.SetSelectedShapes(append(s.a.SelectedIDs(), id))
}

func (s *selector) removeFromSelection(id string) {
	s.a.SetSelectedShapes(slices.DeleteFunc(s.a.SelectedIDs(), func(x string) bool { return x == id }))
}

func (s *selector) idle() *fsm.Node[*Event] {
	a := s.a
	return newState("idle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			if t.From == "pinching" && s.returnTo != "" {
				to := s.returnTo
				s.returnTo = ""
				a.Transition(to, nil)
			}
		},
		On: handlers{
			fsm.PointerEnter: func(e *Event) {
				if a.hoverEnter(e) {
					s.to("hoveringSelectionHandle", e.Info)
				}
			},
			fsm.PointerLeave: a.hoverLeave,
			fsm.PointerDown: func(e *Event) {
				if !e.primary {
					return
				}
				if e.Input.Button == ButtonSecondary {
					s.to("contextMenu", e.Info)
					return
				}
				if a.inputs.Ctrl {
					s.to("pointingCanvas", e.Info)
					return
				}
				switch e.Info.Type {
				case TargetSelection:
					switch h := e.Info.Handle; {
					case h == geom.HandleCenter:
					case h == geom.HandleBackground:
						s.to("pointingBoundsBackground", e.Info)
					case h == geom.HandleRotate || h.IsRotateCorner():
						s.to("pointingRotateHandle", e.Info)
					default:
						s.to("pointingResizeHandle", e.Info)
					}
				case TargetShape:
					if a.isSelected(e.Info.ShapeID) {
						s.to("pointingSelectedShape", e.Info)
						return
					}
					if b, ok := a.SelectionBounds(); ok && geom.PointInBounds(a.inputs.CurrentPoint, b) {
						s.to("pointingShapeBehindBounds", e.Info)
						return
					}
					s.to("pointingShape", e.Info)
				case TargetHandle:
					s.to("pointingHandle", e.Info)
				case TargetCanvas:
					s.to("pointingCanvas", e.Info)
				}
			},
			fsm.PinchStart: func(e *Event) { s.to("pinching", e.Info) },
			fsm.DoubleClick: func(e *Event) {
				if !e.primary {
					return
				}
				if sh := s.single(); canEdit(sh) {
					s.to("editingShape", OnShape(sh.ID()))
				}
			},
			fsm.KeyDown: func(e *Event) {
				switch e.Input.Key {
				case "Escape":
					a.DeselectAll()
				case "Enter":
					if sh := s.single(); canEdit(sh) {
						s.to("editingShape", OnShape(sh.ID()))
					}
				}
			},
		},
	})
}

func (s *selector) hoveringSelectionHandle() *fsm.Node[*Event] {
	a := s.a
	return newState("hoveringSelectionHandle", fsm.Behavior[*Event]{On: handlers{
		fsm.PointerDown: func(e *Event) {
			if !e.primary || e.Info.Type != TargetSelection {
				return
			}
			switch h := e.Info.Handle; {
			case h == geom.HandleRotate || h.IsRotateCorner():
				s.to("pointingRotateHandle", e.Info)
			case h != geom.HandleCenter && h != geom.HandleBackground:
				s.to("pointingResizeHandle", e.Info)
			}
		},
		fsm.PointerLeave: func(*Event) { s.node.Transition("idle", nil) },
		fsm.DoubleClick: func(e *Event) {
			if !e.primary {
				return
			}
			sh := s.single()
			if sh == nil {
				return
			}
			zoom := a.viewport.camera.Zoom
			if !canEdit(sh) {
				info := shape.ResetBoundsInfo{Zoom: zoom}
				if asset, ok := a.Asset(sh.Props().AssetID); ok {
					info.Asset = &asset
				}
				sh.OnResetBounds(info)
				s.node.Transition("idle", nil)
				return
			}
			switch e.Info.Type {
			case TargetShape:
				s.to("editingShape", OnShape(sh.ID()))
			case TargetSelection:
				sh.OnResetBounds(shape.ResetBoundsInfo{Zoom: zoom})
				s.to("editingShape", OnShape(sh.ID()))
			}
		},
	}})
}

func (s *selector) pointingCanvas() *fsm.Node[*Event] {
	a := s.a
	return newState("pointingCanvas", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			if !a.inputs.Shift {
				a.DeselectAll()
				a.SetEditingShape("")
			}
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if a.dragged() {
					s.node.Transition("brushing", nil)
				}
			},
			fsm.PointerUp: func(*Event) {
				if !a.inputs.Shift {
					a.DeselectAll()
				}
				s.node.Transition("idle", nil)
			},
			fsm.DoubleClick: func(*Event) {
				a.notify(EventCanvasDoubleClick, a.inputs.OriginPoint)
			},
		},
	})
}

// pressState is a pointing state that becomes translating once dragged
// and runs up on release.
func (s *selector) pressState(id string, enter func(EventInfo), up func(EventInfo), wheel bool) *fsm.Node[*Event] {
	a := s.a
	var info EventInfo
	move := func(*Event) {
		if a.dragged() {
			s.node.Transition("translating", nil)
		}
	}
	on := handlers{
		fsm.PointerMove: move,
		fsm.PointerUp: func(*Event) {
			if up != nil {
				up(info)
			}
			s.node.Transition("idle", nil)
		},
	}
	if wheel {
		on[fsm.Wheel] = move
	}
	return newState(id, fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			info = dataOf(t).Info
			if enter != nil {
				enter(info)
			}
		},
		On: on,
	})
}

func (s *selector) pointingShape() *fsm.Node[*Event] {
	return s.pressState("pointingShape", func(info EventInfo) {
		if s.a.inputs.Shift {
			s.addToSelection(info.ShapeID)
		} else {
			s.selectOnly(info.ShapeID)
		}
	}, nil, false)
}

func (s *selector) pointingSelectedShape() *fsm.Node[*Event] {
	return s.pressState("pointingSelectedShape", nil, func(info EventInfo) {
		if s.a.inputs.Shift {
			s.removeFromSelection(info.ShapeID)
		} else {
			s.selectOnly(info.ShapeID)
		}
	}, true)
}

func (s *selector) pointingShapeBehindBounds() *fsm.Node[*Event] {
	return s.pressState("pointingShapeBehindBounds", nil, func(info EventInfo) {
		if s.a.inputs.Shift {
			s.addToSelection(info.ShapeID)
		} else {
			s.selectOnly(info.ShapeID)
		}
	}, false)
}

func (s *selector) pointingBoundsBackground() *fsm.Node[*Event] {
	return s.pressState("pointingBoundsBackground", nil, func(EventInfo) { s.a.DeselectAll() }, false)
}

func (s *selector) pointingResizeHandle() *fsm.Node[*Event] {
	a := s.a
	var info EventInfo
	return newState("pointingResizeHandle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) { info = dataOf(t).Info },
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if a.dragged() {
					s.to("resizing", info)
				}
			},
			fsm.PointerUp: func(*Event) { s.to("hoveringSelectionHandle", info) },
		},
	})
}

func (s *selector) pointingRotateHandle() *fsm.Node[*Event] {
	a := s.a
	var info EventInfo
	return newState("pointingRotateHandle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			info = dataOf(t).Info
			a.history.Pause()
		},
		Exit: func(t fsm.Transition) {
			if t.To != "rotating" {
				a.history.Resume()
			}
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if a.dragged() {
					s.to("rotating", info)
				}
			},
			fsm.PointerUp: func(*Event) {
				a.history.Resume()
				a.Persist()
				s.node.Transition("idle", nil)
			},
		},
	})
}

func (s *selector) pointingHandle() *fsm.Node[*Event] {
	a := s.a
	var info EventInfo
	return newState("pointingHandle", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) { info = dataOf(t).Info },
		On: handlers{
			fsm.PointerMove: func(*Event) {
				if a.dragged() {
					s.to("translatingHandle", info)
				}
			},
			fsm.PointerUp: func(*Event) { s.node.Transition("idle", nil) },
		},
	})
}

func (s *selector) brushing() *fsm.Node[*Event] {
	a := s.a
	tree := spatial.New(func(sh *shape.Shape) geom.Bounds { return sh.RotatedBounds() })
	var initial []string
	return newState("brushing", fsm.Behavior[*Event]{
		Enter: func(fsm.Transition) {
			initial = a.SelectedIDs()
			tree.Load(a.CurrentPage().shapes)
		},
		Exit: func(fsm.Transition) {
			tree.Clear()
			a.SetBrush(nil)
		},
		On: handlers{
			fsm.PointerMove: func(*Event) {
				brush := geom.FromPoints([]geom.Vec{a.inputs.CurrentPoint, a.inputs.OriginPoint}, 0)
				a.SetBrush(&brush)

				hit := make(map[*shape.Shape]bool)
				for _, sh := range tree.Search(brush) {
					if a.inputs.Ctrl && geom.Contain(brush, sh.RotatedBounds()) ||
						!a.inputs.Ctrl && sh.HitTestBounds(brush) {
						hit[sh] = true
					}
				}
				var hits []string
				for _, sh := range a.CurrentPage().shapes {
					if hit[sh] {
						hits = append(hits, sh.ID())
					}
				}

				switch {
				case !a.inputs.Shift:
					a.SetSelectedShapes(hits)
				case len(hits) > 0 && !slices.ContainsFunc(hits, func(id string) bool { return !slices.Contains(initial, id) }):
					a.SetSelectedShapes(slices.DeleteFunc(slices.Clone(initial), func(id string) bool {
						return slices.Contains(hits, id)
					}))
				default:
					a.SetSelectedShapes(append(slices.Clone(initial), hits...))
				}
				a.viewport.PanToPointWhenNearBounds(a.inputs.CurrentPoint)
			},
			fsm.PointerUp: func(*Event) {
				a.SetBrush(nil)
				s.node.Transition("idle", nil)
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				a.SetBrush(nil)
				a.SetSelectedShapes(initial)
				s.node.Transition("idle", nil)
			},
		},
	})
}

func (s *selector) editingShape() *fsm.Node[*Event] {
	a := s.a
	var editing string
	return newState("editingShape", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			editing = dataOf(t).Info.ShapeID
			if editing == "" {
				if sh := s.single(); sh != nil {
					editing = sh.ID()
				}
			}
			a.SetEditingShape(editing)
		},
		Exit: func(fsm.Transition) {
			defer func() {
				a.SetEditingShape("")
				editing = ""
			}()
			if sh := a.CurrentPage().Shape(editing); sh != nil && sh.Type() == shape.TypeText {
				text := strings.TrimSpace(sh.Props().Text)
				if text == "" {
					// DeleteShapes records its own history entry.
					a.DeleteShapes(sh.ID())
					return
				}
				sh.OnResetBounds(shape.ResetBoundsInfo{Zoom: a.viewport.camera.Zoom})
				sh.Update(func(m *document.ShapeModel) { m.Text = text })
			}
			a.Persist()
		},
		On: handlers{
			fsm.PointerDown: func(e *Event) {
				if !e.primary {
					return
				}
				switch e.Info.Type {
				case TargetShape:
					if e.Info.ShapeID != editing {
						s.node.Transition("idle", nil)
					}
				case TargetCanvas:
					s.node.Transition("idle", nil)
				}
			},
			fsm.KeyDown: func(e *Event) {
				if e.Input.Key != "Escape" {
					return
				}
				s.selectOnly(editing)
				s.node.Transition("idle", nil)
			},
		},
	})
}

func (s *selector) contextMenu() *fsm.Node[*Event] {
	a := s.a
	return newState("contextMenu", fsm.Behavior[*Event]{
		Enter: func(t fsm.Transition) {
			info := dataOf(t).Info
			if info.Type != TargetShape || a.isSelected(info.ShapeID) {
				return
			}
			if a.inputs.Shift {
				s.addToSelection(info.ShapeID)
			} else {
				s.selectOnly(info.ShapeID)
			}
		},
		On: handlers{
			fsm.PointerDown: func(e *Event) {
				if e.primary {
					s.node.Transition("idle", nil)
				}
			},
		},
	})
}
