package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

func newShapeT(t *testing.T, typ Type, id string, fn func(m *document.ShapeModel)) *Shape {
	t.Helper()
	s, err := DefaultRegistry().New(string(typ), id, fn)
	if err != nil {
		t.Fatalf("new %s: %v", typ, err)
	}
	return s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestUpdateClampsSize(t *testing.T) {
	s := newShapeT(t, TypeBox, "box1", nil)
	s.Update(func(m *document.ShapeModel) { m.Size = geom.V(0, 50) })
	if got := s.Props().Size; got != geom.V(1, 50) {
		t.Errorf("expected size [1,50], got %v", got)
	}
}

func TestValidateRepairs(t *testing.T) {
	p := newShapeT(t, TypePolygon, "p", func(m *document.ShapeModel) {
		m.Sides = 2
		m.Ratio = 1.5
	})
	if got := p.Props(); got.Sides != 3 || got.Ratio != 1 {
		t.Errorf("expected sides 3 ratio 1, got %d %v", got.Sides, got.Ratio)
	}

	d := newShapeT(t, TypeDot, "d", func(m *document.ShapeModel) { m.Radius = -4 })
	if got := d.Props().Radius; got != 1 {
		t.Errorf("expected radius 1, got %v", got)
	}

	l := newShapeT(t, TypePolyline, "l", nil)
	h := l.Props().Handles
	if len(h) != 1 || h[0].ID != "start" || h[0].Point != geom.V(0, 0) {
		t.Errorf("expected a single start handle, got %v", h)
	}

	// the id cannot be changed through Update
	l.Update(func(m *document.ShapeModel) { m.ID = "other" })
	if l.ID() != "l" {
		t.Errorf("expected id l, got %s", l.ID())
	}
}

func TestNonceRoundTrip(t *testing.T) {
	reg := DefaultRegistry()
	model := document.ShapeModel{ID: "a", Type: "box", ParentID: "page", Point: geom.V(1, 2), Size: geom.V(10, 10), Nonce: 41}
	s, err := reg.FromModel(model)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Serialized().Nonce; got != 41 {
		t.Fatalf("expected nonce 41 after load, got %d", got)
	}

	s.Update(func(m *document.ShapeModel) { m.Point = geom.V(5, 5) })
	if s.Nonce() != 42 {
		t.Errorf("expected pending nonce 42, got %d", s.Nonce())
	}
	first := s.Serialized()
	second := s.Serialized()
	if first.Nonce != 42 || second.Nonce != 42 {
		t.Errorf("expected nonce 42 twice, got %d and %d", first.Nonce, second.Nonce)
	}

	s.Apply(model, true)
	if s.IsDirty() || s.Serialized().Nonce != 41 || s.Point() != geom.V(1, 2) {
		t.Errorf("deserializing apply should restore nonce 41 and point, got %d %v", s.Nonce(), s.Point())
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := newShapeT(t, TypeLine, "line", nil)
	c := s.Clone("copy")
	c.Update(func(m *document.ShapeModel) { m.Handles[1].Point = geom.V(50, 50) })
	if s.Props().Handles[1].Point != geom.V(1, 1) {
		t.Errorf("clone shares handles with the original")
	}
	if c.ID() != "copy" || c.Type() != TypeLine {
		t.Errorf("unexpected clone identity %s %s", c.ID(), c.Type())
	}
}

func TestUnknownType(t *testing.T) {
	_, err := DefaultRegistry().FromModel(document.ShapeModel{ID: "x", Type: "arrow"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	var ute *UnknownTypeError
	if !errors.As(err, &ute) || ute.Type != "arrow" {
		t.Errorf("expected UnknownTypeError for arrow, got %v", err)
	}
}

func TestDecodeFillsDefaults(t *testing.T) {
	m, err := DefaultRegistry().Decode([]byte(`{"type":"star","id":"s","point":[1,2]}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Sides != 5 || m.Ratio != 1 || m.Size != geom.V(100, 100) || m.Point != geom.V(1, 2) {
		t.Errorf("unexpected decoded star %+v", m)
	}
}

func TestResizeKeepsAspectRatio(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		size   geom.Vec
		locked bool
		target geom.Bounds
	}{
		{"image", TypeImage, geom.V(100, 100), false, geom.NewBounds(geom.V(0, 0), geom.V(300, 100))},
		{"image tall", TypeImage, geom.V(100, 50), false, geom.NewBounds(geom.V(0, 0), geom.V(40, 400))},
		{"locked box", TypeBox, geom.V(200, 100), true, geom.NewBounds(geom.V(10, 10), geom.V(100, 100))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newShapeT(t, tt.typ, "s", func(m *document.ShapeModel) {
				m.Size = tt.size
				m.IsAspectRatioLocked = tt.locked
			})
			initial := s.Props()
			s.OnResizeStart(ResizeStartInfo{IsSingle: true})
			s.OnResize(initial, ResizeInfo{Bounds: tt.target, Scale: geom.V(1, 1)})
			got := s.Props().Size
			want := tt.size.X / tt.size.Y
			if !near(got.X/got.Y, want) {
				t.Errorf("expected ratio %v, got %v (size %v)", want, got.X/got.Y, got)
			}
		})
	}

	// a free box takes the target as is
	s := newShapeT(t, TypeBox, "free", nil)
	initial := s.Props()
	s.OnResizeStart(ResizeStartInfo{})
	s.OnResize(initial, ResizeInfo{Bounds: geom.NewBounds(geom.V(5, 5), geom.V(300, 10)), Scale: geom.V(-1, 1)})
	p := s.Props()
	if p.Size != geom.V(300, 10) || p.Point != geom.V(5, 5) || p.Scale != geom.V(-1, 1) {
		t.Errorf("unexpected free resize %v %v %v", p.Point, p.Size, p.Scale)
	}
}

func TestHitTestPoint(t *testing.T) {
	box := newShapeT(t, TypeBox, "b", nil)
	if !box.HitTestPoint(geom.V(50, 50)) || box.HitTestPoint(geom.V(50, -10)) {
		t.Error("unrotated box hit test")
	}
	box.Update(func(m *document.ShapeModel) { m.Rotation = math.Pi / 4 })
	if !box.HitTestPoint(geom.V(50, -10)) {
		t.Error("rotated box should cover the point above its top edge")
	}
	if box.HitTestPoint(geom.V(5, 5)) {
		t.Error("rotated box should not cover its old corner")
	}

	ellipse := newShapeT(t, TypeEllipse, "e", nil)
	if !ellipse.HitTestPoint(geom.V(50, 50)) || ellipse.HitTestPoint(geom.V(5, 5)) {
		t.Error("ellipse hit test")
	}

	line := newShapeT(t, TypeLine, "l", func(m *document.ShapeModel) {
		m.Handles[1].Point = geom.V(100, 100)
	})
	if !line.HitTestPoint(geom.V(52, 50)) || line.HitTestPoint(geom.V(90, 10)) {
		t.Error("line hit test")
	}
}

func TestHitTestStaysInsideRotatedCorners(t *testing.T) {
	reg := DefaultRegistry()
	for _, typ := range reg.Types() {
		for _, rot := range []float64{0, 0.3, math.Pi / 4, 2, math.Pi} {
			s, err := reg.New(string(typ), "s", func(m *document.ShapeModel) {
				m.Point = geom.V(20, 30)
				m.Size = geom.V(120, 60)
				m.Rotation = rot
				m.Text = "some text\nsecond line"
				m.Points = []geom.Vec{{X: 0, Y: 0}, {X: 40, Y: 50}, {X: 120, Y: 10}}
				m.Handles = []document.Handle{{ID: "start"}, {ID: "end", Point: geom.V(120, 60)}}
			})
			if err != nil {
				t.Fatal(err)
			}
			corners := s.Corners()
			for x := -60.17; x < 220; x += 7.3 {
				for y := -60.11; y < 200; y += 7.3 {
					p := geom.V(x, y)
					if s.HitTestPoint(p) && !geom.PointInPolygon(p, corners) {
						t.Fatalf("%s at %v: %v hits outside the rotated corners", typ, rot, p)
					}
				}
			}
		}
	}
}

func TestHitTestBounds(t *testing.T) {
	box := newShapeT(t, TypeBox, "b", nil)
	if !box.HitTestBounds(geom.NewBounds(geom.V(-10, -10), geom.V(200, 200))) {
		t.Error("containing brush should hit")
	}
	if !box.HitTestBounds(geom.NewBounds(geom.V(50, 50), geom.V(200, 200))) {
		t.Error("overlapping brush should hit")
	}
	if box.HitTestBounds(geom.NewBounds(geom.V(150, 150), geom.V(20, 20))) {
		t.Error("distant brush should miss")
	}
}

func TestLineHandleChangeRebases(t *testing.T) {
	s := newShapeT(t, TypeLine, "l", func(m *document.ShapeModel) {
		m.Point = geom.V(10, 10)
		m.Handles[1].Point = geom.V(100, 100)
	})
	initial := s.Props()
	s.OnHandleChange(initial, HandleChangeInfo{ID: "start", Delta: geom.V(-20, 0)})
	p := s.Props()
	if p.Point != geom.V(-10, 10) {
		t.Errorf("expected point [-10,10], got %v", p.Point)
	}
	if p.Handles[0].Point != geom.V(0, 0) || p.Handles[1].Point != geom.V(120, 100) {
		t.Errorf("unexpected handles %v", p.Handles)
	}

	// collapsing both ends is ignored
	s.OnHandleChange(initial, HandleChangeInfo{ID: "end", Delta: geom.V(-100, -100)})
	if s.Props().Point != geom.V(-10, 10) {
		t.Error("degenerate line change should be ignored")
	}
}

func TestImageClipResize(t *testing.T) {
	s := newShapeT(t, TypeImage, "img", nil)
	initial := s.Props()
	s.OnResizeStart(ResizeStartInfo{})
	s.OnResize(initial, ResizeInfo{
		Bounds: geom.NewBounds(geom.V(10, 10), geom.V(90, 90)),
		Scale:  geom.V(0.9, 0.9),
		Clip:   true,
	})
	top, r, b, l := s.Props().Clipping.Edges()
	if top != 10 || r != 0 || b != 0 || l != 10 {
		t.Errorf("expected clip [10 0 0 10], got [%v %v %v %v]", top, r, b, l)
	}

	s.OnResetBounds(ResetBoundsInfo{})
	p := s.Props()
	if !p.Clipping.IsZero() || p.Point != geom.V(0, 0) || p.Size != geom.V(100, 100) {
		t.Errorf("reset should drop the crop, got %v %v %v", p.Clipping, p.Point, p.Size)
	}
}

func TestTextAutoSize(t *testing.T) {
	got := MeasureText("ab", 13, 1, 0)
	if got != geom.V(14, 13) {
		t.Errorf("expected [14,13], got %v", got)
	}

	s := newShapeT(t, TypeText, "t", func(m *document.ShapeModel) { m.Text = "hello" })
	auto := s.Props().Size
	s.Update(func(m *document.ShapeModel) { m.Text = "hello\nworld, longer" })
	if grown := s.Props().Size; grown.X <= auto.X || grown.Y <= auto.Y {
		t.Errorf("expected text to grow from %v, got %v", auto, grown)
	}

	initial := s.Props()
	s.OnResizeStart(ResizeStartInfo{})
	s.OnResize(initial, ResizeInfo{Bounds: geom.NewBounds(geom.V(0, 0), geom.V(500, 500)), Scale: geom.V(1, 1)})
	if p := s.Props(); p.IsSizeLocked || p.Size != geom.V(500, 500) {
		t.Errorf("manual resize should unlock the size, got %v %v", p.IsSizeLocked, p.Size)
	}
}

func TestDrawResizeScalesPoints(t *testing.T) {
	s := newShapeT(t, TypeDraw, "d", func(m *document.ShapeModel) {
		m.Points = []geom.Vec{{X: 0, Y: 0}, {X: 10, Y: 20}}
	})
	initial := s.Props()
	s.OnResizeStart(ResizeStartInfo{})
	s.OnResize(initial, ResizeInfo{Bounds: geom.NewBounds(geom.V(5, 5), geom.V(20, 40)), Scale: geom.V(2, 2)})
	p := s.Props()
	if p.Point != geom.V(5, 5) || p.Points[1] != geom.V(20, 40) {
		t.Errorf("unexpected draw resize %v %v", p.Point, p.Points)
	}

	pts, off := RebasePoints([]geom.Vec{{X: -5, Y: 3}, {X: 2, Y: -1}})
	if off != geom.V(-5, -1) || pts[0] != geom.V(0, 4) || pts[1] != geom.V(7, 0) {
		t.Errorf("unexpected rebase %v %v", pts, off)
	}
}
