package geom

import "math"

// Bounds is an axis-aligned box. Rotation is carried for selection bounds
// and is zero for anything computed from rotated corners.
type Bounds struct {
	MinX     float64 `json:"minX"`
	MinY     float64 `json:"minY"`
	MaxX     float64 `json:"maxX"`
	MaxY     float64 `json:"maxY"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// NewBounds creates bounds at point with the given size.
func NewBounds(point, size Vec) Bounds {
	return Bounds{
		MinX:   point.X,
		MinY:   point.Y,
		MaxX:   point.X + size.X,
		MaxY:   point.Y + size.Y,
		Width:  size.X,
		Height: size.Y,
	}
}

// BoundsFromCorners creates bounds spanning two opposite corners in any order.
func BoundsFromCorners(a, b Vec) Bounds {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, Width: maxX - minX, Height: maxY - minY}
}

func (b Bounds) Min() Vec  { return Vec{X: b.MinX, Y: b.MinY} }
func (b Bounds) Max() Vec  { return Vec{X: b.MaxX, Y: b.MaxY} }
func (b Bounds) Size() Vec { return Vec{X: b.Width, Y: b.Height} }

// Center is the midpoint of the box.
func (b Bounds) Center() Vec {
	return Vec{X: b.MinX + b.Width/2, Y: b.MinY + b.Height/2}
}

// Expand grows the box by delta on every side.
func (b Bounds) Expand(delta float64) Bounds {
	return Bounds{
		MinX:   b.MinX - delta,
		MinY:   b.MinY - delta,
		MaxX:   b.MaxX + delta,
		MaxY:   b.MaxY + delta,
		Width:  b.Width + delta*2,
		Height: b.Height + delta*2,
	}
}

// Translate moves the box without recomputing its size.
func (b Bounds) Translate(d Vec) Bounds {
	return Bounds{
		MinX:     b.MinX + d.X,
		MinY:     b.MinY + d.Y,
		MaxX:     b.MaxX + d.X,
		MaxY:     b.MaxY + d.Y,
		Width:    b.Width,
		Height:   b.Height,
		Rotation: b.Rotation,
	}
}

// CenterOn moves the box so its center lies on p.
func (b Bounds) CenterOn(p Vec) Bounds {
	return b.Translate(p.Sub(b.Center()))
}

// SnapToGrid rounds every edge to the grid. Width and height stay at least 1.
func (b Bounds) SnapToGrid(grid float64) Bounds {
	minX := math.Round(b.MinX/grid) * grid
	minY := math.Round(b.MinY/grid) * grid
	maxX := math.Round(b.MaxX/grid) * grid
	maxY := math.Round(b.MaxY/grid) * grid
	return Bounds{
		MinX:   minX,
		MinY:   minY,
		MaxX:   maxX,
		MaxY:   maxY,
		Width:  math.Max(1, maxX-minX),
		Height: math.Max(1, maxY-minY),
	}
}

// Corners returns TL, TR, BR, BL.
func (b Bounds) Corners() []Vec {
	return []Vec{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// RotatedCorners returns the corners rotated about the box center.
func (b Bounds) RotatedCorners(rotation float64) []Vec {
	corners := b.Corners()
	if rotation == 0 {
		return corners
	}
	c := b.Center()
	for i, p := range corners {
		corners[i] = p.RotWith(c, rotation)
	}
	return corners
}

// Sides returns the four edges as segments, top first.
func (b Bounds) Sides() [][2]Vec {
	c := b.Corners()
	return [][2]Vec{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
}

// Collide reports whether a and b overlap or touch.
func Collide(a, b Bounds) bool {
	return !(a.MaxX < b.MinX || a.MinX > b.MaxX || a.MaxY < b.MinY || a.MinY > b.MaxY)
}

// Contain reports whether a strictly contains b.
func Contain(a, b Bounds) bool {
	return a.MinX < b.MinX && a.MinY < b.MinY && a.MaxY > b.MaxY && a.MaxX > b.MaxX
}

// PointInBounds reports whether p lies strictly inside b.
func PointInBounds(p Vec, b Bounds) bool {
	return b.MinX < p.X && b.MinY < p.Y && b.MaxY > p.Y && b.MaxX > p.X
}

// Equal compares the edges of a and b.
func Equal(a, b Bounds) bool {
	return a.MinX == b.MinX && a.MinY == b.MinY && a.MaxX == b.MaxX && a.MaxY == b.MaxY
}

// FromPoints returns the box around points, rotated about its own center
// when rotation is non-zero. Fewer than two points give a unit box at the
// origin. Width and height are at least 1.
func FromPoints(points []Vec, rotation float64) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	if len(points) < 2 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	} else {
		for _, p := range points {
			minX = math.Min(p.X, minX)
			minY = math.Min(p.Y, minY)
			maxX = math.Max(p.X, maxX)
			maxY = math.Max(p.Y, maxY)
		}
	}
	if rotation != 0 {
		c := Vec{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
		rotated := make([]Vec, len(points))
		for i, p := range points {
			rotated[i] = p.RotWith(c, rotation)
		}
		return FromPoints(rotated, 0)
	}
	return Bounds{
		MinX:   minX,
		MinY:   minY,
		MaxX:   maxX,
		MaxY:   maxY,
		Width:  math.Max(1, maxX-minX),
		Height: math.Max(1, maxY-minY),
	}
}

// RotatedBounds is the axis-aligned box around b rotated about its center.
func RotatedBounds(b Bounds, rotation float64) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range b.RotatedCorners(rotation) {
		minX = math.Min(p.X, minX)
		minY = math.Min(p.Y, minY)
		maxX = math.Max(p.X, maxX)
		maxY = math.Max(p.Y, maxY)
	}
	return Bounds{
		MinX:   minX,
		MinY:   minY,
		MaxX:   maxX,
		MaxY:   maxY,
		Width:  math.Max(1, maxX-minX),
		Height: math.Max(1, maxY-minY),
	}
}

// RotatedEllipseBounds is the box around an ellipse whose unrotated bounds
// start at (x, y) with radii rx and ry.
func RotatedEllipseBounds(x, y, rx, ry, rotation float64) Bounds {
	c, s := math.Cos(rotation), math.Sin(rotation)
	w := math.Hypot(rx*c, ry*s)
	h := math.Hypot(rx*s, ry*c)
	return Bounds{
		MinX:   x + rx - w,
		MinY:   y + ry - h,
		MaxX:   x + rx + w,
		MaxY:   y + ry + h,
		Width:  w * 2,
		Height: h * 2,
	}
}

// ExpandedBounds is the union of a and b.
func ExpandedBounds(a, b Bounds) Bounds {
	minX := math.Min(a.MinX, b.MinX)
	minY := math.Min(a.MinY, b.MinY)
	maxX := math.Max(a.MaxX, b.MaxX)
	maxY := math.Max(a.MaxY, b.MaxY)
	return Bounds{
		MinX:   minX,
		MinY:   minY,
		MaxX:   maxX,
		MaxY:   maxY,
		Width:  math.Abs(maxX - minX),
		Height: math.Abs(maxY - minY),
	}
}

// CommonBounds is the union of all boxes. It returns the zero box for an
// empty input.
func CommonBounds(bs []Bounds) Bounds {
	if len(bs) == 0 {
		return Bounds{}
	}
	result := bs[0]
	for _, b := range bs[1:] {
		result = ExpandedBounds(result, b)
	}
	return result
}

// CommonTopLeft is the smallest x and smallest y across points.
func CommonTopLeft(points []Vec) Vec {
	if len(points) == 0 {
		return Vec{}
	}
	tl := points[0]
	for _, p := range points[1:] {
		tl.X = math.Min(tl.X, p.X)
		tl.Y = math.Min(tl.Y, p.Y)
	}
	return tl
}

// EnsureRatio shrinks one side of b, anchored at its top left, so that
// width/height equals ratio.
func EnsureRatio(b Bounds, ratio float64) Bounds {
	if ratio <= 0 || b.Height == 0 {
		return b
	}
	w, h := b.Width, b.Height
	if w/h > ratio {
		w = h * ratio
	} else {
		h = w / ratio
	}
	return Bounds{
		MinX:     b.MinX,
		MinY:     b.MinY,
		MaxX:     b.MinX + w,
		MaxY:     b.MinY + h,
		Width:    w,
		Height:   h,
		Rotation: b.Rotation,
	}
}
