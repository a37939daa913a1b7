// Package shape implements the shape kinds of a board. A kind is a Def, a
// table of functions over a Shape's props; Shape holds the props, the
// serialization cache and the nonce.
package shape

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

type Type string

const (
	TypeBox      Type = "box"
	TypeDot      Type = "dot"
	TypeDraw     Type = "draw"
	TypeEllipse  Type = "ellipse"
	TypeImage    Type = "image"
	TypeLine     Type = "line"
	TypePolygon  Type = "polygon"
	TypePolyline Type = "polyline"
	TypeStar     Type = "star"
	TypeText     Type = "text"
)

// Flags are the per-kind capabilities the tools and the UI consult.
type Flags struct {
	CanResize            bool
	CanFlip              bool
	CanEdit              bool
	CanChangeAspectRatio bool
	CanScale             bool
	CanUnmount           bool
	CanBind              bool

	HideSelection       bool
	HideResizeHandles   bool
	HideRotateHandle    bool
	HideContextBar      bool
	HideSelectionDetail bool
	HideCloneHandles    bool
}

func defaultFlags() Flags {
	return Flags{
		CanResize:            true,
		CanFlip:              true,
		CanChangeAspectRatio: true,
		CanScale:             true,
		CanUnmount:           true,
	}
}

type ResizeStartInfo struct {
	IsSingle bool
}

// ResizeInfo is the fully resolved target of one resize step. Scale is
// signed; a negative axis means the shape is flipped on it.
type ResizeInfo struct {
	Bounds          geom.Bounds
	Center          geom.Vec
	Rotation        float64
	Handle          geom.SelectionHandle
	Clip            bool
	Scale           geom.Vec
	TransformOrigin geom.Vec
}

type HandleChangeInfo struct {
	ID    string
	Delta geom.Vec
}

type ResetBoundsInfo struct {
	Zoom  float64
	Asset *document.Asset
}

// Def is the function table for one kind. Bounds is required; every other
// hook falls back to the box behavior when nil.
type Def struct {
	Type     Type
	Flags    Flags
	Defaults func() document.ShapeModel

	Bounds        func(s *Shape) geom.Bounds
	RotatedBounds func(s *Shape) geom.Bounds
	Center        func(s *Shape) geom.Vec

	HitTestPoint       func(s *Shape, p geom.Vec) bool
	HitTestLineSegment func(s *Shape, a, b geom.Vec) bool
	HitTestBounds      func(s *Shape, b geom.Bounds) bool

	// Validate repairs props in place. It never rejects.
	Validate func(m *document.ShapeModel)

	OnResizeStart  func(s *Shape, info ResizeStartInfo)
	OnResize       func(s *Shape, initial document.ShapeModel, info ResizeInfo)
	OnHandleChange func(s *Shape, initial document.ShapeModel, info HandleChangeInfo)
	OnResetBounds  func(s *Shape, info ResetBoundsInfo)
}

// Shape is one live shape. It is owned by a single page and is not safe for
// concurrent use.
type Shape struct {
	def   *Def
	props document.ShapeModel

	nonce  int64
	dirty  bool
	cached *document.ShapeModel

	watch func(*Shape)

	// resize session
	startScale geom.Vec
	startRatio float64
	normalized []geom.Vec
}

func newShape(def *Def, m document.ShapeModel) *Shape {
	s := &Shape{def: def, nonce: m.Nonce}
	if s.nonce == 0 {
		s.nonce = 1
	}
	s.props = s.validated(m)
	return s
}

func (s *Shape) ID() string        { return s.props.ID }
func (s *Shape) Type() Type        { return s.def.Type }
func (s *Shape) Def() *Def         { return s.def }
func (s *Shape) Flags() Flags      { return s.def.Flags }
func (s *Shape) ParentID() string  { return s.props.ParentID }
func (s *Shape) Point() geom.Vec   { return s.props.Point }
func (s *Shape) Rotation() float64 { return s.props.Rotation }
func (s *Shape) IsLocked() bool    { return s.props.IsLocked }
func (s *Shape) IsHidden() bool    { return s.props.IsHidden }

// Props returns a deep copy of the current props.
func (s *Shape) Props() document.ShapeModel {
	p := s.props.Clone()
	p.Nonce = s.nonce
	return p
}

// Watch installs the owner's change hook. It runs after every Update.
func (s *Shape) Watch(fn func(*Shape)) { s.watch = fn }

func (s *Shape) validated(m document.ShapeModel) document.ShapeModel {
	m = m.Clone()
	m.Type = string(s.def.Type)
	if m.Scale == (geom.Vec{}) {
		m.Scale = geom.V(1, 1)
	}
	if s.def.Validate != nil {
		s.def.Validate(&m)
	}
	return m
}

// Update applies fn to a copy of the props, repairs the result and marks
// the shape dirty. The id and type cannot change.
func (s *Shape) Update(fn func(m *document.ShapeModel)) *Shape {
	next := s.props.Clone()
	fn(&next)
	next.ID = s.props.ID
	s.props = s.validated(next)
	s.dirty = true
	if s.watch != nil {
		s.watch(s)
	}
	return s
}

// Apply replaces every prop with m. When deserializing, the nonce is taken
// from m and the shape is left clean so serializing again yields m.
func (s *Shape) Apply(m document.ShapeModel, deserializing bool) {
	m.ID = s.props.ID
	s.props = s.validated(m)
	if deserializing {
		s.nonce = m.Nonce
		s.dirty = false
		s.cached = nil
		s.cache()
	} else {
		s.dirty = true
	}
	if s.watch != nil {
		s.watch(s)
	}
}

func (s *Shape) cache() {
	c := s.props.Clone()
	c.Nonce = s.nonce
	s.cached = &c
}

// Serialized returns the cached serialized form. A dirty shape bumps its
// nonce and rebuilds the cache first.
func (s *Shape) Serialized() document.ShapeModel {
	if s.dirty {
		s.nonce++
		s.dirty = false
		s.cache()
	} else if s.cached == nil {
		s.cache()
	}
	return s.cached.Clone()
}

// Nonce is the version that the next Serialized call reports.
func (s *Shape) Nonce() int64 {
	if s.dirty {
		return s.nonce + 1
	}
	return s.nonce
}

// IsDirty reports whether props changed since the last serialization.
func (s *Shape) IsDirty() bool { return s.dirty }

// Clone returns an independent copy with a new id.
func (s *Shape) Clone(id string) *Shape {
	m := s.Serialized()
	m.ID = id
	return newShape(s.def, m)
}

func (s *Shape) Bounds() geom.Bounds { return s.def.Bounds(s) }

// RotatedBounds is the axis-aligned box around the rotated shape.
func (s *Shape) RotatedBounds() geom.Bounds {
	if s.def.RotatedBounds != nil {
		return s.def.RotatedBounds(s)
	}
	b := s.Bounds()
	if s.props.Rotation == 0 {
		return b
	}
	return geom.FromPoints(b.RotatedCorners(s.props.Rotation), 0)
}

func (s *Shape) Center() geom.Vec {
	if s.def.Center != nil {
		return s.def.Center(s)
	}
	return s.Bounds().Center()
}

// Corners are the corners of Bounds rotated by the shape's rotation. Every
// hit test stays inside this polygon.
func (s *Shape) Corners() []geom.Vec {
	return s.Bounds().RotatedCorners(s.props.Rotation)
}

// toLocal maps a page point into the unrotated frame of the shape.
func (s *Shape) toLocal(p geom.Vec) geom.Vec {
	if s.props.Rotation == 0 {
		return p
	}
	return p.RotWith(s.Center(), -s.props.Rotation)
}

// inside reports whether p lies in the rotated bounds polygon.
func (s *Shape) inside(p geom.Vec) bool {
	if s.props.Rotation == 0 {
		return geom.PointInBounds(p, s.Bounds())
	}
	return geom.PointInPolygon(p, s.Corners())
}

func (s *Shape) HitTestPoint(p geom.Vec) bool {
	if s.def.HitTestPoint != nil {
		return s.def.HitTestPoint(s, p)
	}
	return s.inside(p)
}

func (s *Shape) HitTestLineSegment(a, b geom.Vec) bool {
	if s.def.HitTestLineSegment != nil {
		return s.def.HitTestLineSegment(s, a, b)
	}
	if geom.Contain(s.RotatedBounds(), geom.FromPoints([]geom.Vec{a, b}, 0)) {
		return true
	}
	if s.props.Rotation != 0 {
		return geom.SegmentPolygon(a, b, s.Corners())
	}
	return geom.SegmentBounds(a, b, s.Bounds())
}

func (s *Shape) HitTestBounds(b geom.Bounds) bool {
	if s.def.HitTestBounds != nil {
		return s.def.HitTestBounds(s, b)
	}
	return geom.Contain(b, s.RotatedBounds()) || geom.PolygonBounds(s.Corners(), b)
}

// OnResizeStart snapshots the state a resize session scales from.
func (s *Shape) OnResizeStart(info ResizeStartInfo) {
	s.startScale = s.props.Scale
	b := s.Bounds()
	s.startRatio = b.Width / b.Height
	if s.def.OnResizeStart != nil {
		s.def.OnResizeStart(s, info)
	}
}

// OnResize fits the shape to info.Bounds. Kinds that cannot change their
// aspect ratio, and shapes with the ratio locked, keep the ratio they had
// when the session started.
func (s *Shape) OnResize(initial document.ShapeModel, info ResizeInfo) {
	if !s.def.Flags.CanChangeAspectRatio || s.props.IsAspectRatioLocked {
		ratio := s.startRatio
		if ratio == 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			b := s.Bounds()
			ratio = b.Width / b.Height
		}
		info.Bounds = geom.EnsureRatio(info.Bounds, ratio)
	}
	if s.def.OnResize != nil {
		s.def.OnResize(s, initial, info)
		return
	}
	resizePoint(s, info)
}

// OnHandleChange moves one handle by delta relative to the initial shape.
func (s *Shape) OnHandleChange(initial document.ShapeModel, info HandleChangeInfo) {
	if s.def.OnHandleChange != nil {
		s.def.OnHandleChange(s, initial, info)
		return
	}
	moveHandle(s, initial, info)
}

func (s *Shape) OnResetBounds(info ResetBoundsInfo) {
	if s.def.OnResetBounds != nil {
		s.def.OnResetBounds(s, info)
	}
}

// nextScale flips the session's starting scale on the axes info flips.
func (s *Shape) nextScale(info ResizeInfo) geom.Vec {
	next := s.startScale
	if next == (geom.Vec{}) {
		next = s.props.Scale
	}
	if info.Scale.X < 0 {
		next.X *= -1
	}
	if info.Scale.Y < 0 {
		next.Y *= -1
	}
	return next
}

func resizePoint(s *Shape, info ResizeInfo) {
	scale := s.nextScale(info)
	s.Update(func(m *document.ShapeModel) {
		m.Point = info.Bounds.Min()
		m.Scale = scale
		m.Rotation = info.Rotation
	})
}

// moveHandle shifts handle info.ID by delta and rebases every handle so the
// common top left is the origin; point absorbs the offset.
func moveHandle(s *Shape, initial document.ShapeModel, info HandleChangeInfo) {
	i := initial.HandleIndex(info.ID)
	if i < 0 {
		return
	}
	handles := initial.Clone().Handles
	handles[i].Point = initial.Handles[i].Point.Add(info.Delta)
	pts := make([]geom.Vec, len(handles))
	for j, h := range handles {
		pts[j] = h.Point
	}
	tl := geom.CommonTopLeft(pts)
	for j := range handles {
		handles[j].Point = handles[j].Point.Sub(tl)
	}
	s.Update(func(m *document.ShapeModel) {
		m.Point = initial.Point.Add(tl)
		m.Handles = handles
	})
}

func clampSize(m *document.ShapeModel) {
	m.Size.X = math.Max(m.Size.X, 1)
	m.Size.Y = math.Max(m.Size.Y, 1)
}
