package shape

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

func boxDefaults(t Type) func() document.ShapeModel {
	return func() document.ShapeModel {
		return document.ShapeModel{
			Type:  string(t),
			Point: geom.V(0, 0),
			Scale: geom.V(1, 1),
			Size:  geom.V(100, 100),
			Style: document.Style{StrokeWidth: 2, Opacity: 1},
		}
	}
}

func boxBounds(s *Shape) geom.Bounds {
	return geom.NewBounds(s.props.Point, s.props.Size)
}

func boxValidate(m *document.ShapeModel) { clampSize(m) }

func boxResize(s *Shape, _ document.ShapeModel, info ResizeInfo) {
	scale := s.nextScale(info)
	s.Update(func(m *document.ShapeModel) {
		m.Rotation = info.Rotation
		m.Point = info.Bounds.Min()
		m.Size = geom.V(math.Max(1, info.Bounds.Width), math.Max(1, info.Bounds.Height))
		m.Scale = scale
	})
}

func BoxDef() *Def {
	flags := defaultFlags()
	flags.CanBind = true
	return &Def{
		Type:     TypeBox,
		Flags:    flags,
		Defaults: boxDefaults(TypeBox),
		Bounds:   boxBounds,
		Validate: boxValidate,
		OnResize: boxResize,
	}
}

func EllipseDef() *Def {
	return &Def{
		Type:     TypeEllipse,
		Flags:    defaultFlags(),
		Defaults: boxDefaults(TypeEllipse),
		Bounds: func(s *Shape) geom.Bounds {
			p, sz := s.props.Point, s.props.Size
			return geom.RotatedEllipseBounds(p.X, p.Y, sz.X/2, sz.Y/2, 0)
		},
		RotatedBounds: func(s *Shape) geom.Bounds {
			p, sz := s.props.Point, s.props.Size
			return geom.RotatedEllipseBounds(p.X, p.Y, sz.X/2, sz.Y/2, s.props.Rotation)
		},
		HitTestPoint: func(s *Shape, p geom.Vec) bool {
			sz := s.props.Size
			return geom.PointInEllipse(p, s.Center(), sz.X/2, sz.Y/2, s.props.Rotation)
		},
		HitTestLineSegment: func(s *Shape, a, b geom.Vec) bool {
			sz := s.props.Size
			return geom.SegmentEllipse(a, b, s.Center(), sz.X/2, sz.Y/2, s.props.Rotation)
		},
		HitTestBounds: func(s *Shape, b geom.Bounds) bool {
			sz := s.props.Size
			return geom.Contain(b, s.RotatedBounds()) ||
				geom.EllipseBounds(s.Center(), sz.X/2, sz.Y/2, s.props.Rotation, b)
		},
		Validate: boxValidate,
		OnResize: boxResize,
	}
}

func ImageDef() *Def {
	flags := defaultFlags()
	flags.CanChangeAspectRatio = false
	return &Def{
		Type:  TypeImage,
		Flags: flags,
		Defaults: func() document.ShapeModel {
			m := boxDefaults(TypeImage)()
			m.ObjectFit = "none"
			return m
		},
		Bounds:        boxBounds,
		Validate:      boxValidate,
		OnResize:      imageResize,
		OnResetBounds: imageResetBounds,
	}
}

// imageResize either grows the crop (clip) or scales the existing crop
// along with the image.
func imageResize(s *Shape, initial document.ShapeModel, info ResizeInfo) {
	b := info.Bounds
	var clip document.Clip
	if info.Clip {
		t, r, bt, l := initial.Clipping.Edges()
		x, y := initial.Point.X, initial.Point.Y
		w, h := initial.Size.X, initial.Size.Y
		clip = document.Clip{
			t + (b.MinY - y),
			r + (b.MaxX - (x + w)),
			bt + (b.MaxY - (y + h)),
			l + (b.MinX - x),
		}
	} else if !initial.Clipping.IsZero() {
		t, r, bt, l := initial.Clipping.Edges()
		clip = document.Clip{t * info.Scale.Y, r * info.Scale.X, bt * info.Scale.Y, l * info.Scale.X}
	}
	clip = clip.Uniform()
	s.Update(func(m *document.ShapeModel) {
		m.Point = b.Min()
		m.Size = geom.V(math.Max(1, b.Width), math.Max(1, b.Height))
		m.Clipping = clip
	})
}

// imageResetBounds drops the crop, or when there is none, fits the shape
// to the natural size of its asset around the same center.
func imageResetBounds(s *Shape, info ResetBoundsInfo) {
	p, sz := s.props.Point, s.props.Size
	if !s.props.Clipping.IsZero() {
		t, r, b, l := s.props.Clipping.Edges()
		s.Update(func(m *document.ShapeModel) {
			m.Clipping = nil
			m.Point = geom.V(p.X-l, p.Y-t)
			m.Size = geom.V(sz.X+(l-r), sz.Y+(t-b))
		})
		return
	}
	if info.Asset != nil {
		w, h := info.Asset.Size.X, info.Asset.Size.Y
		s.Update(func(m *document.ShapeModel) {
			m.Clipping = nil
			m.Point = geom.V(p.X+sz.X/2-w/2, p.Y+sz.Y/2-h/2)
			m.Size = geom.V(w, h)
		})
	}
}
