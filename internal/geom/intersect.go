package geom

import "math"

// SegmentSegment reports whether segments a1-a2 and b1-b2 intersect and
// where. Collinear overlapping segments count as intersecting at a1.
func SegmentSegment(a1, a2, b1, b2 Vec) (Vec, bool) {
	ua := (b2.X-b1.X)*(a1.Y-b1.Y) - (b2.Y-b1.Y)*(a1.X-b1.X)
	ub := (a2.X-a1.X)*(a1.Y-b1.Y) - (a2.Y-a1.Y)*(a1.X-b1.X)
	den := (b2.Y-b1.Y)*(a2.X-a1.X) - (b2.X-b1.X)*(a2.Y-a1.Y)

	if den == 0 {
		if ua == 0 || ub == 0 {
			// collinear: check for overlap on the dominant axis
			if overlaps(a1, a2, b1, b2) {
				return a1, true
			}
		}
		return Vec{}, false
	}

	ta := ua / den
	tb := ub / den
	if ta >= 0 && ta <= 1 && tb >= 0 && tb <= 1 {
		return a1.Lrp(a2, ta), true
	}
	return Vec{}, false
}

func overlaps(a1, a2, b1, b2 Vec) bool {
	if math.Abs(a2.X-a1.X) >= math.Abs(a2.Y-a1.Y) {
		return math.Max(a1.X, a2.X) >= math.Min(b1.X, b2.X) && math.Max(b1.X, b2.X) >= math.Min(a1.X, a2.X)
	}
	return math.Max(a1.Y, a2.Y) >= math.Min(b1.Y, b2.Y) && math.Max(b1.Y, b2.Y) >= math.Min(a1.Y, a2.Y)
}

// SegmentPolyline reports whether a1-a2 crosses any segment of the open polyline.
func SegmentPolyline(a1, a2 Vec, points []Vec) bool {
	for i := 1; i < len(points); i++ {
		if _, ok := SegmentSegment(a1, a2, points[i-1], points[i]); ok {
			return true
		}
	}
	return false
}

// SegmentPolygon reports whether a1-a2 crosses any edge of the closed polygon.
func SegmentPolygon(a1, a2 Vec, points []Vec) bool {
	n := len(points)
	for i := 0; i < n; i++ {
		if _, ok := SegmentSegment(a1, a2, points[i], points[(i+1)%n]); ok {
			return true
		}
	}
	return false
}

// SegmentBounds reports whether a1-a2 crosses an edge of b.
func SegmentBounds(a1, a2 Vec, b Bounds) bool {
	for _, side := range b.Sides() {
		if _, ok := SegmentSegment(a1, a2, side[0], side[1]); ok {
			return true
		}
	}
	return false
}

// PolylineBounds reports whether the open polyline crosses an edge of b.
func PolylineBounds(points []Vec, b Bounds) bool {
	for i := 1; i < len(points); i++ {
		if SegmentBounds(points[i-1], points[i], b) {
			return true
		}
	}
	return false
}

// PolygonBounds reports whether the closed polygon crosses an edge of b.
func PolygonBounds(points []Vec, b Bounds) bool {
	n := len(points)
	for i := 0; i < n; i++ {
		if SegmentBounds(points[i], points[(i+1)%n], b) {
			return true
		}
	}
	return false
}

// SegmentEllipse reports whether a1-a2 crosses the outline of the ellipse
// centered at c with radii rx, ry, rotated by rotation.
func SegmentEllipse(a1, a2, c Vec, rx, ry, rotation float64) bool {
	if rx == 0 || ry == 0 || a1.IsEqual(a2) {
		return false
	}
	// move into the ellipse's unrotated local frame and scale to a unit circle
	p1 := a1.RotWith(c, -rotation).Sub(c)
	p2 := a2.RotWith(c, -rotation).Sub(c)
	p1 = V(p1.X/rx, p1.Y/ry)
	p2 = V(p2.X/rx, p2.Y/ry)

	d := p2.Sub(p1)
	a := d.Dot(d)
	b := 2 * p1.Dot(d)
	cc := p1.Dot(p1) - 1
	disc := b*b - 4*a*cc
	if disc < 0 {
		return false
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1)
}

// EllipseBounds reports whether the ellipse outline crosses an edge of b.
func EllipseBounds(c Vec, rx, ry, rotation float64, b Bounds) bool {
	for _, side := range b.Sides() {
		if SegmentEllipse(side[0], side[1], c, rx, ry, rotation) {
			return true
		}
	}
	return false
}

// PointInPolygon uses the even-odd rule.
func PointInPolygon(p Vec, points []Vec) bool {
	inside := false
	n := len(points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := points[i], points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// PointInEllipse reports whether p lies inside the rotated ellipse.
func PointInEllipse(p, c Vec, rx, ry, rotation float64) bool {
	if rx == 0 || ry == 0 {
		return false
	}
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	d := p.Sub(c)
	tdx := cos*d.X + sin*d.Y
	tdy := sin*d.X - cos*d.Y
	return (tdx*tdx)/(rx*rx)+(tdy*tdy)/(ry*ry) <= 1
}

// PointNearToPolyline reports whether p lies within distance of any segment.
func PointNearToPolyline(p Vec, points []Vec, distance float64) bool {
	if len(points) == 1 {
		return p.Dist(points[0]) < distance
	}
	for i := 1; i < len(points); i++ {
		if DistanceToLineSegment(points[i-1], points[i], p) < distance {
			return true
		}
	}
	return false
}
