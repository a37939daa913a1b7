package shape

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// hitDistance is how close a pointer must be to a stroke to hit it.
const hitDistance = 8

func DotDef() *Def {
	flags := defaultFlags()
	flags.HideSelection = true
	flags.HideResizeHandles = true
	flags.HideRotateHandle = true
	flags.HideSelectionDetail = true
	return &Def{
		Type:  TypeDot,
		Flags: flags,
		Defaults: func() document.ShapeModel {
			return document.ShapeModel{
				Type:   string(TypeDot),
				Scale:  geom.V(1, 1),
				Radius: 6,
				Style:  document.Style{StrokeWidth: 2, Opacity: 1},
			}
		},
		Bounds: func(s *Shape) geom.Bounds {
			d := s.props.Radius * 2
			return geom.NewBounds(s.props.Point, geom.V(d, d))
		},
		Validate: func(m *document.ShapeModel) {
			m.Radius = math.Max(1, m.Radius)
		},
		// a dot keeps its radius and recenters on the target box
		OnResize: func(s *Shape, _ document.ShapeModel, info ResizeInfo) {
			r := s.props.Radius
			c := info.Bounds.Center()
			s.Update(func(m *document.ShapeModel) {
				m.Point = geom.V(c.X-r, c.Y-r)
			})
		},
	}
}

func DrawDef() *Def {
	return &Def{
		Type:  TypeDraw,
		Flags: defaultFlags(),
		Defaults: func() document.ShapeModel {
			return document.ShapeModel{
				Type:   string(TypeDraw),
				Scale:  geom.V(1, 1),
				Points: []geom.Vec{},
				Style:  document.Style{StrokeWidth: 2, Opacity: 1},
			}
		},
		Bounds: func(s *Shape) geom.Bounds {
			return geom.FromPoints(s.props.Points, 0).Translate(s.props.Point)
		},
		RotatedBounds:      strokeRotatedBounds(func(s *Shape) []geom.Vec { return s.props.Points }),
		HitTestPoint:       strokeHitTestPoint(func(s *Shape) []geom.Vec { return s.props.Points }),
		HitTestLineSegment: strokeHitTestLineSegment(func(s *Shape) []geom.Vec { return s.props.Points }),
		HitTestBounds:      strokeHitTestBounds(func(s *Shape) []geom.Vec { return s.props.Points }),
		OnResizeStart: func(s *Shape, _ ResizeStartInfo) {
			b := s.Bounds()
			s.normalized = normalize(s.props.Points, b.Size())
		},
		OnResize: func(s *Shape, _ document.ShapeModel, info ResizeInfo) {
			scale := s.nextScale(info)
			pts := denormalize(s.normalized, info.Bounds.Size())
			s.Update(func(m *document.ShapeModel) {
				m.Point = info.Bounds.Min()
				m.Points = pts
				if info.Scale.X != 0 || info.Scale.Y != 0 {
					m.Scale = scale
				}
			})
		},
	}
}

// RebasePoints moves the common top left of points to the origin and
// returns the shifted points with the offset that point must absorb.
func RebasePoints(points []geom.Vec) ([]geom.Vec, geom.Vec) {
	tl := geom.CommonTopLeft(points)
	out := make([]geom.Vec, len(points))
	for i, p := range points {
		out[i] = p.Sub(tl)
	}
	return out, tl
}

func normalize(points []geom.Vec, size geom.Vec) []geom.Vec {
	out := make([]geom.Vec, len(points))
	for i, p := range points {
		out[i] = p.DivV(size)
	}
	return out
}

func denormalize(points []geom.Vec, size geom.Vec) []geom.Vec {
	out := make([]geom.Vec, len(points))
	for i, p := range points {
		out[i] = p.MulV(size)
	}
	return out
}

// The stroke helpers serve draw, line and polyline: points are relative to
// the shape's point and rotate about the bounds center.

func strokeRotatedBounds(points func(*Shape) []geom.Vec) func(*Shape) geom.Bounds {
	return func(s *Shape) geom.Bounds {
		b := s.Bounds()
		if s.props.Rotation == 0 {
			return b
		}
		c := b.Center()
		pts := points(s)
		rotated := make([]geom.Vec, len(pts))
		for i, p := range pts {
			rotated[i] = p.Add(s.props.Point).RotWith(c, s.props.Rotation)
		}
		if len(rotated) < 2 {
			return geom.FromPoints(b.RotatedCorners(s.props.Rotation), 0)
		}
		return geom.FromPoints(rotated, 0)
	}
}

// strokeHitTestPoint only accepts points inside the rotated bounds so a
// hit never lands outside what RotatedBounds reports.
func strokeHitTestPoint(points func(*Shape) []geom.Vec) func(*Shape, geom.Vec) bool {
	return func(s *Shape, p geom.Vec) bool {
		if !s.inside(p) {
			return false
		}
		local := s.toLocal(p).Sub(s.props.Point)
		return geom.PointNearToPolyline(local, points(s), hitDistance)
	}
}

func strokeHitTestLineSegment(points func(*Shape) []geom.Vec) func(*Shape, geom.Vec, geom.Vec) bool {
	return func(s *Shape, a, b geom.Vec) bool {
		a, b = s.toLocal(a), s.toLocal(b)
		bounds := s.Bounds()
		if !geom.PointInBounds(a, bounds) && !geom.PointInBounds(b, bounds) && !geom.SegmentBounds(a, b, bounds) {
			return false
		}
		ra, rb := a.Sub(s.props.Point), b.Sub(s.props.Point)
		pts := points(s)
		if geom.SegmentPolyline(ra, rb, pts) {
			return true
		}
		for _, p := range pts {
			if ra.Dist(p) < 5 || rb.Dist(p) < 5 {
				return true
			}
		}
		return false
	}
}

func strokeHitTestBounds(points func(*Shape) []geom.Vec) func(*Shape, geom.Bounds) bool {
	return func(s *Shape, b geom.Bounds) bool {
		rb := s.RotatedBounds()
		if geom.Contain(b, rb) {
			return true
		}
		pts := pagePoints(s, points(s))
		if len(pts) == 0 {
			return false
		}
		all := true
		for _, p := range pts {
			if !geom.PointInBounds(p, b) {
				all = false
				break
			}
		}
		return all || (geom.Collide(b, rb) && geom.PolylineBounds(pts, b))
	}
}

// pagePoints maps relative points to page space, rotation included.
func pagePoints(s *Shape, pts []geom.Vec) []geom.Vec {
	c := s.Center()
	out := make([]geom.Vec, len(pts))
	for i, p := range pts {
		out[i] = p.Add(s.props.Point)
		if s.props.Rotation != 0 {
			out[i] = out[i].RotWith(c, s.props.Rotation)
		}
	}
	return out
}
