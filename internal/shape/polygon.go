package shape

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// Vertices returns the outline of a polygon or star relative to its point.
// Other kinds return the corners of their bounds.
func (s *Shape) Vertices() []geom.Vec {
	m := s.props
	switch s.def.Type {
	case TypePolygon:
		if m.Sides == 3 {
			return geom.TriangleVertices(m.Size, 0, m.Ratio)
		}
		return geom.PolygonVertices(m.Size, m.Sides, 0, m.Ratio)
	case TypeStar:
		size := geom.V(math.Max(1, m.Size.X), math.Max(1, m.Size.Y))
		pts := geom.StarVertices(m.Size.Div(2), size, m.Sides, m.Ratio)
		if m.IsFlippedY {
			for i, p := range pts {
				pts[i] = geom.V(p.X, m.Size.Y-p.Y)
			}
		}
		return pts
	}
	return geom.NewBounds(geom.Vec{}, s.Bounds().Size()).Corners()
}

func polygonValidate(m *document.ShapeModel) {
	clampSize(m)
	if m.Sides < 3 {
		m.Sides = 3
	}
	m.Ratio = math.Min(1, math.Max(0, m.Ratio))
}

func polygonDef(t Type, sides int) *Def {
	return &Def{
		Type:  t,
		Flags: defaultFlags(),
		Defaults: func() document.ShapeModel {
			m := boxDefaults(t)()
			m.Sides = sides
			m.Ratio = 1
			return m
		},
		Bounds: boxBounds,
		RotatedBounds: func(s *Shape) geom.Bounds {
			if s.props.Rotation == 0 {
				return s.Bounds()
			}
			return geom.FromPoints(pagePoints(s, s.Vertices()), 0)
		},
		HitTestPoint: func(s *Shape, p geom.Vec) bool {
			local := s.toLocal(p).Sub(s.props.Point)
			return geom.PointInPolygon(local, s.Vertices())
		},
		HitTestLineSegment: func(s *Shape, a, b geom.Vec) bool {
			la := s.toLocal(a).Sub(s.props.Point)
			lb := s.toLocal(b).Sub(s.props.Point)
			v := s.Vertices()
			return geom.SegmentPolygon(la, lb, v) || geom.PointInPolygon(la, v)
		},
		HitTestBounds: func(s *Shape, b geom.Bounds) bool {
			if geom.Contain(b, s.RotatedBounds()) {
				return true
			}
			pts := pagePoints(s, s.Vertices())
			all := true
			for _, p := range pts {
				if !geom.PointInBounds(p, b) {
					all = false
					break
				}
			}
			return all || geom.PolygonBounds(pts, b)
		},
		Validate: polygonValidate,
		OnResize: boxResize,
	}
}

func PolygonDef() *Def { return polygonDef(TypePolygon, 5) }
func StarDef() *Def    { return polygonDef(TypeStar, 5) }
