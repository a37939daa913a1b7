package engine

import (
	"math"

	"github.com/inamate/inamate/whiteboard/internal/geom"
)

const (
	MinZoom         = 0.1
	MaxZoom         = 4
	ZoomFactor      = 0.8
	FitPadding      = 100
	PanThreshold    = 100
	PanMultiplier   = 0.05
	defaultViewW    = 1080
	defaultViewH    = 720
	zoomWheelFactor = 0.01
)

// Camera places the page under the screen. A page point p is drawn at
// (p + Point) * Zoom.
type Camera struct {
	Point geom.Vec `json:"point"`
	Zoom  float64  `json:"zoom"`
}

// Viewport is the screen rectangle and the camera looking through it.
type Viewport struct {
	bounds   geom.Bounds
	camera   Camera
	onChange func()
}

func newViewport(onChange func()) *Viewport {
	return &Viewport{
		bounds:   geom.NewBounds(geom.Vec{}, geom.V(defaultViewW, defaultViewH)),
		camera:   Camera{Zoom: 1},
		onChange: onChange,
	}
}

func (v *Viewport) Bounds() geom.Bounds { return v.bounds }
func (v *Viewport) Camera() Camera      { return v.camera }

func (v *Viewport) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}

// UpdateBounds sets the screen rectangle, e.g. after a window resize.
func (v *Viewport) UpdateBounds(b geom.Bounds) {
	v.bounds = b
	v.changed()
}

// Update moves the camera. Zoom is clamped; NaN values are ignored.
func (v *Viewport) Update(point *geom.Vec, zoom *float64) {
	if point != nil && !math.IsNaN(point.X) && !math.IsNaN(point.Y) {
		v.camera.Point = *point
	}
	if zoom != nil && !math.IsNaN(*zoom) {
		v.camera.Zoom = clampZoom(*zoom)
	}
	v.changed()
}

// SetCamera replaces the whole camera.
func (v *Viewport) SetCamera(c Camera) { v.Update(&c.Point, &c.Zoom) }

func clampZoom(z float64) float64 { return math.Min(MaxZoom, math.Max(MinZoom, z)) }

// PanCamera scrolls by a screen-space delta.
func (v *Viewport) PanCamera(delta geom.Vec) {
	p := v.camera.Point.Sub(delta.Div(v.camera.Zoom))
	v.Update(&p, nil)
}

// CurrentView is the visible part of the page.
func (v *Viewport) CurrentView() geom.Bounds {
	w := v.bounds.Width / v.camera.Zoom
	h := v.bounds.Height / v.camera.Zoom
	return geom.NewBounds(v.camera.Point.Neg(), geom.V(w, h))
}

// PagePoint converts a screen point to page space.
func (v *Viewport) PagePoint(p geom.Vec) geom.Vec {
	return p.Sub(v.bounds.Min()).Div(v.camera.Zoom).Sub(v.camera.Point)
}

// ScreenPoint converts a page point to screen space.
func (v *Viewport) ScreenPoint(p geom.Vec) geom.Vec {
	return p.Add(v.camera.Point).Mul(v.camera.Zoom)
}

// PinchZoom zooms to zoom about the screen point, after panning by delta.
func (v *Viewport) PinchZoom(point, delta geom.Vec, zoom float64) {
	c := v.camera
	next := c.Point.Sub(delta.Div(c.Zoom))
	zoom = clampZoom(zoom)
	p0 := point.Div(c.Zoom)
	p1 := point.Div(zoom)
	np := next.Add(p1.Sub(p0)).ToFixed()
	v.Update(&np, &zoom)
}

// SetZoom zooms about the center of the screen.
func (v *Viewport) SetZoom(zoom float64) {
	v.PinchZoom(geom.V(v.bounds.Width/2, v.bounds.Height/2), geom.Vec{}, zoom)
}

func (v *Viewport) ZoomIn()    { v.SetZoom(v.camera.Zoom / ZoomFactor) }
func (v *Viewport) ZoomOut()   { v.SetZoom(v.camera.Zoom * ZoomFactor) }
func (v *Viewport) ResetZoom() { v.SetZoom(1) }

// ZoomToBounds fits b on screen, never zooming in past 1.
func (v *Viewport) ZoomToBounds(b geom.Bounds) {
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	zoom := math.Min((v.bounds.Width-FitPadding)/b.Width, (v.bounds.Height-FitPadding)/b.Height)
	if v.camera.Zoom == zoom || v.camera.Zoom < 1 {
		zoom = math.Min(1, zoom)
	}
	zoom = math.Min(1, math.Max(MinZoom, zoom))
	delta := geom.V(
		(v.bounds.Width-b.Width*zoom)/2/zoom,
		(v.bounds.Height-b.Height*zoom)/2/zoom,
	)
	p := geom.V(-b.MinX, -b.MinY).Add(delta)
	v.Update(&p, &zoom)
}

// PanToPointWhenNearBounds nudges the camera when a dragged page point
// comes within PanThreshold of the view edge.
func (v *Viewport) PanToPointWhenNearBounds(p geom.Vec) {
	view := v.CurrentView()
	t := geom.V(PanThreshold, PanThreshold)
	deltaMax := view.Max().Sub(p.Add(t))
	deltaMin := view.Min().Sub(p.Sub(t))
	pick := func(max, min float64) float64 {
		switch {
		case max < 0:
			return max
		case min > 0:
			return min
		}
		return 0
	}
	d := geom.V(pick(deltaMax.X, deltaMin.X), pick(deltaMax.Y, deltaMin.Y))
	if d.X == 0 && d.Y == 0 {
		return
	}
	v.PanCamera(d.Mul(-PanMultiplier))
}
