package geom

import "math"

const (
	// PI2 is a full turn.
	PI2 = math.Pi * 2
	// TAU is a quarter turn. Polygons start at -TAU so the first vertex points up.
	TAU = math.Pi / 2
)

// Nudge moves a toward b by distance d.
func Nudge(a, b Vec, d float64) Vec {
	if a.IsEqual(b) {
		return a
	}
	return a.Add(b.Sub(a).Uni().Mul(d))
}

// PolygonVertices lays out a regular polygon inside size. Each side yields
// three points; ratio below 1 pulls the side midpoints toward the center.
func PolygonVertices(size Vec, sides int, padding, ratio float64) []Vec {
	center := size.Div(2)
	rx := math.Max(1, center.X-padding)
	ry := math.Max(1, center.Y-padding)
	step := PI2 / float64(sides)
	points := make([]Vec, 0, sides*3)
	for i := 0; i < sides; i++ {
		t1 := math.Mod(-TAU+float64(i)*step, PI2)
		t2 := math.Mod(-TAU+float64(i+1)*step, PI2)
		p1 := center.Add(V(rx*math.Cos(t1), ry*math.Sin(t1)))
		p3 := center.Add(V(rx*math.Cos(t2), ry*math.Sin(t2)))
		mid := p1.Med(p3)
		p2 := Nudge(mid, center, center.Dist(mid)*(1-ratio))
		points = append(points, p1, p2, p3)
	}
	return points
}

// TriangleVertices lays out a triangle inside size with the apex at the top.
func TriangleVertices(size Vec, padding, ratio float64) []Vec {
	w, h := size.X, size.Y
	r := 1 - ratio
	a := V(w/2, padding/2)
	b := V(w-padding, h-padding)
	c := V(padding/2, h-padding)
	centroid := PolygonCentroid([]Vec{a, b, c})
	ab, bc, ca := a.Med(b), b.Med(c), c.Med(a)
	nudge := func(p Vec) Vec {
		if d := p.Dist(centroid) * r; d != 0 {
			return Nudge(p, centroid, d)
		}
		return p
	}
	return []Vec{a, nudge(ab), b, nudge(bc), c, nudge(ca)}
}

// StarVertices alternates outer and inner points around center. The inner
// radius is the outer radius times ratio/2.
func StarVertices(center, size Vec, sides int, ratio float64) []Vec {
	outer := size.Div(2)
	inner := outer.Mul(ratio / 2)
	step := PI2 / float64(sides) / 2
	points := make([]Vec, sides*2)
	for i := range points {
		theta := -TAU + float64(i)*step
		r := outer
		if i%2 == 1 {
			r = inner
		}
		points[i] = center.Add(V(r.X*math.Cos(theta), r.Y*math.Sin(theta)))
	}
	return points
}

// PolygonCentroid is the midpoint of the extremes, not the area centroid.
func PolygonCentroid(points []Vec) Vec {
	if len(points) == 0 {
		return Vec{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return V((minX+maxX)/2, (minY+maxY)/2)
}

// ClampRadians wraps r into [0, 2π).
func ClampRadians(r float64) float64 {
	return math.Mod(PI2+r, PI2)
}

// SnapAngleToSegments snaps r to the nearest of segments equal slices of a turn.
func SnapAngleToSegments(r float64, segments int) float64 {
	seg := PI2 / float64(segments)
	return math.Floor((ClampRadians(r)+seg/2)/seg) * seg
}
