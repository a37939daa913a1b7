package geom

import "math"

// Matrix2D is a 2D affine transform.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation by d.
func Translate(d Vec) Matrix2D {
	return Matrix2D{1, 0, 0, 1, d.X, d.Y}
}

// Scale returns a scale matrix.
func Scale(s Vec) Matrix2D {
	return Matrix2D{s.X, 0, 0, s.Y, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	sin, cos := math.Sincos(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * o, which applies o first.
func (m Matrix2D) Multiply(o Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Apply transforms p.
func (m Matrix2D) Apply(p Vec) Vec {
	return Vec{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyBounds transforms the corners of b and returns their axis-aligned box.
func (m Matrix2D) ApplyBounds(b Bounds) Bounds {
	corners := b.Corners()
	for i, c := range corners {
		corners[i] = m.Apply(c)
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY, Width: maxX - minX, Height: maxY - minY}
}

func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse, or Identity if m is singular.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}
	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// ShapeTransform maps a shape's local space to page space: the local box
// [0,0]-size is rotated about its center and placed at point.
func ShapeTransform(point, size Vec, rotation float64) Matrix2D {
	half := size.Div(2)
	return Translate(point.Add(half)).
		Multiply(Rotate(rotation)).
		Multiply(Translate(half.Neg()))
}

// CameraTransform maps page space to viewport space for a camera at point
// with the given zoom: screen = (page + point) * zoom.
func CameraTransform(point Vec, zoom float64) Matrix2D {
	return Scale(V(zoom, zoom)).Multiply(Translate(point))
}

// IsIdentity checks m against the identity within a small epsilon.
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// ToSlice returns [a, b, c, d, e, f], the argument order of a 2D canvas
// setTransform call.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}
