package geom

import (
	"math"
	"testing"
)

func TestSegmentSegment(t *testing.T) {
	p, ok := SegmentSegment(V(0, 0), V(10, 10), V(0, 10), V(10, 0))
	if !ok {
		t.Fatal("expected crossing segments to intersect")
	}
	if !vecNear(p, V(5, 5)) {
		t.Errorf("expected intersection at [5,5], got %v", p)
	}
	if _, ok := SegmentSegment(V(0, 0), V(10, 0), V(0, 5), V(10, 5)); ok {
		t.Error("parallel segments should not intersect")
	}
	if _, ok := SegmentSegment(V(0, 0), V(10, 0), V(5, 0), V(15, 0)); !ok {
		t.Error("overlapping collinear segments should intersect")
	}
}

func TestSegmentBounds(t *testing.T) {
	b := NewBounds(V(0, 0), V(10, 10))
	if !SegmentBounds(V(-5, 5), V(5, 5), b) {
		t.Error("segment entering the box should intersect")
	}
	if SegmentBounds(V(2, 2), V(8, 8), b) {
		t.Error("segment fully inside touches no edge")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := NewBounds(V(0, 0), V(10, 10)).RotatedCorners(math.Pi / 4)
	if !PointInPolygon(V(5, 5), square) {
		t.Error("center should be inside")
	}
	// the unrotated corner lies outside the rotated square
	if PointInPolygon(V(0.2, 0.2), square) {
		t.Error("corner region should be outside after rotation")
	}
}

func TestEllipse(t *testing.T) {
	c := V(50, 25)
	if !PointInEllipse(V(90, 25), c, 50, 25, 0) {
		t.Error("point on the major axis should be inside")
	}
	if PointInEllipse(V(50, 55), c, 50, 25, 0) {
		t.Error("point beyond the minor axis should be outside")
	}
	if !PointInEllipse(V(50, 60), c, 50, 25, math.Pi/2) {
		t.Error("rotated ellipse should contain the point along its rotated major axis")
	}
	if !SegmentEllipse(V(-10, 25), V(10, 25), c, 50, 25, 0) {
		t.Error("segment through the left edge should intersect")
	}
	if SegmentEllipse(V(40, 20), V(60, 30), c, 50, 25, 0) {
		t.Error("segment fully inside should not cross the outline")
	}
}

func TestPointNearToPolyline(t *testing.T) {
	line := []Vec{V(0, 0), V(100, 0)}
	if !PointNearToPolyline(V(50, 3), line, 5) {
		t.Error("expected point within 5 to be near")
	}
	if PointNearToPolyline(V(50, 6), line, 5) {
		t.Error("expected point beyond 5 to be far")
	}
}
