package shape

import (
	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

func handlePoints(s *Shape) []geom.Vec { return s.props.HandlePoints() }

func polylineDef(t Type, handles func() []document.Handle) *Def {
	return &Def{
		Type:  t,
		Flags: defaultFlags(),
		Defaults: func() document.ShapeModel {
			return document.ShapeModel{
				Type:    string(t),
				Scale:   geom.V(1, 1),
				Handles: handles(),
				Style:   document.Style{StrokeWidth: 2, Opacity: 1},
			}
		},
		Bounds: func(s *Shape) geom.Bounds {
			return geom.FromPoints(s.props.HandlePoints(), 0).Translate(s.props.Point)
		},
		RotatedBounds:      strokeRotatedBounds(handlePoints),
		HitTestPoint:       strokeHitTestPoint(handlePoints),
		HitTestLineSegment: strokeHitTestLineSegment(handlePoints),
		HitTestBounds:      strokeHitTestBounds(handlePoints),
		Validate: func(m *document.ShapeModel) {
			if len(m.Handles) < 1 {
				m.Handles = []document.Handle{{ID: "start", Point: geom.V(0, 0)}}
			}
		},
		OnResizeStart: func(s *Shape, _ ResizeStartInfo) {
			s.normalized = normalize(s.props.HandlePoints(), s.Bounds().Size())
		},
		OnResize: func(s *Shape, _ document.ShapeModel, info ResizeInfo) {
			scale := s.nextScale(info)
			pts := denormalize(s.normalized, info.Bounds.Size())
			s.Update(func(m *document.ShapeModel) {
				m.Point = info.Bounds.Min()
				for i := range m.Handles {
					if i < len(pts) {
						m.Handles[i].Point = pts[i]
					}
				}
				m.Scale = scale
			})
		},
	}
}

func PolylineDef() *Def {
	return polylineDef(TypePolyline, func() []document.Handle { return nil })
}

func LineDef() *Def {
	d := polylineDef(TypeLine, func() []document.Handle {
		return []document.Handle{
			{ID: "start", Point: geom.V(0, 0), CanBind: true},
			{ID: "end", Point: geom.V(1, 1), CanBind: true},
		}
	})
	d.OnHandleChange = lineHandleChange
	return d
}

// lineHandleChange ignores moves that would make both ends coincide.
func lineHandleChange(s *Shape, initial document.ShapeModel, info HandleChangeInfo) {
	i := initial.HandleIndex(info.ID)
	if i < 0 || len(initial.Handles) != 2 {
		moveHandle(s, initial, info)
		return
	}
	next := initial.Handles[i].Point.Add(info.Delta).ToFixed()
	if next.IsEqual(initial.Handles[1-i].Point.ToFixed()) {
		return
	}
	moveHandle(s, initial, info)
}
