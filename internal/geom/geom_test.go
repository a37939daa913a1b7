package geom

import (
	"encoding/json"
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func TestVecArithmetic(t *testing.T) {
	a := V(3, 4)
	b := V(1, 2)

	if got := a.Add(b); got != V(4, 6) {
		t.Errorf("Add failed: expected [4,6], got %v", got)
	}
	if got := a.Sub(b); got != V(2, 2) {
		t.Errorf("Sub failed: expected [2,2], got %v", got)
	}
	if got := a.Len(); math.Abs(got-5) > eps {
		t.Errorf("Len failed: expected 5, got %v", got)
	}
	if got := a.Dist(b); math.Abs(got-math.Sqrt(8)) > eps {
		t.Errorf("Dist failed: expected %v, got %v", math.Sqrt(8), got)
	}
	if got := (Vec{}).Uni(); got != (Vec{}) {
		t.Errorf("Uni of zero: expected zero vector, got %v", got)
	}
}

func TestVecRotWith(t *testing.T) {
	got := V(10, 0).RotWith(V(0, 0), math.Pi/2)
	if !vecNear(got, V(0, 10)) {
		t.Errorf("RotWith failed: expected [0,10], got %v", got)
	}
	got = V(2, 1).RotWith(V(1, 1), math.Pi)
	if !vecNear(got, V(0, 1)) {
		t.Errorf("RotWith around center failed: expected [0,1], got %v", got)
	}
}

func TestVecJSON(t *testing.T) {
	data, err := json.Marshal(V(1.5, -2))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[1.5,-2]" {
		t.Errorf("expected [1.5,-2], got %s", data)
	}

	var v Vec
	if err := json.Unmarshal([]byte("[3,4,0.5]"), &v); err != nil {
		t.Fatalf("unmarshal with pressure: %v", err)
	}
	if v != V(3, 4) {
		t.Errorf("expected [3,4], got %v", v)
	}
	if err := json.Unmarshal([]byte("[3]"), &v); err == nil {
		t.Error("expected error for a single component")
	}
}

func TestFromPoints(t *testing.T) {
	b := FromPoints([]Vec{V(5, 5)}, 0)
	if b.MinX != 0 || b.MinY != 0 || b.Width != 1 || b.Height != 1 {
		t.Errorf("single point: expected unit box, got %+v", b)
	}

	b = FromPoints([]Vec{V(0, 0), V(10, 0)}, 0)
	if b.Width != 10 || b.Height != 1 {
		t.Errorf("flat points: expected 10x1, got %vx%v", b.Width, b.Height)
	}
}

func TestCollideAndContain(t *testing.T) {
	a := NewBounds(V(0, 0), V(100, 100))
	inside := NewBounds(V(10, 10), V(20, 20))
	partial := NewBounds(V(90, 90), V(20, 20))
	outside := NewBounds(V(200, 200), V(10, 10))

	tests := []struct {
		name            string
		b               Bounds
		collide, contain bool
	}{
		{"inside", inside, true, true},
		{"partial", partial, true, false},
		{"outside", outside, false, false},
		{"identical", a, true, false},
	}
	for _, tt := range tests {
		if got := Collide(a, tt.b); got != tt.collide {
			t.Errorf("%s: Collide expected %v, got %v", tt.name, tt.collide, got)
		}
		if got := Contain(a, tt.b); got != tt.contain {
			t.Errorf("%s: Contain expected %v, got %v", tt.name, tt.contain, got)
		}
	}
}

func TestRotatedBounds(t *testing.T) {
	b := NewBounds(V(0, 0), V(100, 100))
	r := RotatedBounds(b, math.Pi/4)
	want := 100 * math.Sqrt2
	if math.Abs(r.Width-want) > 1e-6 || math.Abs(r.Height-want) > 1e-6 {
		t.Errorf("expected %v square, got %vx%v", want, r.Width, r.Height)
	}
	if !vecNear(r.Center(), b.Center()) {
		t.Errorf("center moved: expected %v, got %v", b.Center(), r.Center())
	}
}

func TestTransformedBoundingBoxBottomRight(t *testing.T) {
	b := NewBounds(V(0, 0), V(100, 50))
	got := TransformedBoundingBox(b, CornerBottomRight, V(100, 50), 0, false)
	if got.Width != 200 || got.Height != 100 {
		t.Errorf("expected 200x100, got %vx%v", got.Width, got.Height)
	}
	if got.Scale != V(2, 2) {
		t.Errorf("expected scale [2,2], got %v", got.Scale)
	}
}

func TestTransformedBoundingBoxFlip(t *testing.T) {
	b := NewBounds(V(0, 0), V(100, 100))
	got := TransformedBoundingBox(b, EdgeRight, V(-150, 0), 0, false)
	if got.MinX != -50 || got.MaxX != 0 {
		t.Errorf("expected x span [-50,0], got [%v,%v]", got.MinX, got.MaxX)
	}
	if got.Scale.X != -0.5 {
		t.Errorf("expected scale.x -0.5, got %v", got.Scale.X)
	}
}

func TestTransformedBoundingBoxAspectLock(t *testing.T) {
	b := NewBounds(V(0, 0), V(100, 50))
	for _, d := range []Vec{V(300, 10), V(10, 300), V(-40, 80), V(75, -20)} {
		got := TransformedBoundingBox(b, CornerBottomRight, d, 0, true)
		if math.Abs(got.Width/got.Height-2) > 1e-9 {
			t.Errorf("delta %v: expected ratio 2, got %v", d, got.Width/got.Height)
		}
	}
}

func TestTransformedBoundingBoxRotatedAnchor(t *testing.T) {
	b := NewBounds(V(0, 0), V(100, 100))
	rot := math.Pi / 6
	// the top-left corner is the anchor when dragging bottom-right
	before := b.RotatedCorners(rot)[0]
	got := TransformedBoundingBox(b, CornerBottomRight, V(30, 30).Rot(rot), rot, false)
	after := got.Bounds.RotatedCorners(rot)[0]
	if !vecNear(before, after) {
		t.Errorf("anchor moved: expected %v, got %v", before, after)
	}
}

func TestSnapAngleToSegments(t *testing.T) {
	seg := PI2 / 24
	if got := SnapAngleToSegments(seg*0.4, 24); math.Abs(got) > eps {
		t.Errorf("expected 0, got %v", got)
	}
	if got := SnapAngleToSegments(seg*0.6, 24); math.Abs(got-seg) > eps {
		t.Errorf("expected %v, got %v", seg, got)
	}
	if got := SnapAngleToSegments(-seg, 24); math.Abs(got-(PI2-seg)) > 1e-9 {
		t.Errorf("negative angle: expected %v, got %v", PI2-seg, got)
	}
}

func TestStarVertices(t *testing.T) {
	pts := StarVertices(V(50, 50), V(100, 100), 5, 1)
	if len(pts) != 10 {
		t.Fatalf("expected 10 points, got %d", len(pts))
	}
	if !vecNear(pts[0], V(50, 0)) {
		t.Errorf("first vertex should point up: got %v", pts[0])
	}
	if d := pts[1].Dist(V(50, 50)); math.Abs(d-25) > 1e-6 {
		t.Errorf("inner radius: expected 25, got %v", d)
	}
}

func TestPolygonVertices(t *testing.T) {
	pts := PolygonVertices(V(100, 100), 4, 0, 1)
	if len(pts) != 12 {
		t.Fatalf("expected 12 points, got %d", len(pts))
	}
	if !vecNear(pts[0], V(50, 0)) {
		t.Errorf("first vertex should point up: got %v", pts[0])
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	m := ShapeTransform(V(10, 20), V(100, 50), 0.7)
	p := V(33, 44)
	got := m.Invert().Apply(m.Apply(p))
	if !vecNear(got, p) {
		t.Errorf("expected %v, got %v", p, got)
	}
	if !m.Multiply(m.Invert()).IsIdentity() {
		t.Error("m * inverse should be identity")
	}
}

func TestCameraTransform(t *testing.T) {
	m := CameraTransform(V(10, 0), 2)
	if got := m.Apply(V(5, 5)); got != V(30, 10) {
		t.Errorf("expected [30,10], got %v", got)
	}
}
