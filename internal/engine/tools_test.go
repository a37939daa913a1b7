package engine

import (
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// lastShape is the most recently added shape on the current page.
func lastShape(t *testing.T, a *App) *shape.Shape {
	t.Helper()
	shapes := a.Shapes()
	if len(shapes) == 0 {
		t.Fatal("expected shapes on the page")
	}
	return shapes[len(shapes)-1]
}

func TestBoxToolCreates(t *testing.T) {
	a := newTestApp(t)
	a.Transition("box", nil)
	expectState(t, a, "box.idle")

	down(a, Canvas(), 510, 510)
	expectState(t, a, "box.pointing")
	move(a, 520, 520)
	expectState(t, a, "box.creating")
	move(a, 610, 560)

	sh := lastShape(t, a)
	if sh.Type() != shape.TypeBox {
		t.Fatalf("expected a box, got %s", sh.Type())
	}
	b := sh.Bounds()
	if b.Min() != geom.V(510, 510) || b.Size() != geom.V(101, 51) {
		t.Errorf("expected [510,510] 101x51, got %v %v", b.Min(), b.Size())
	}
	if fill := sh.Props().Fill; fill != a.Settings().Color {
		t.Errorf("expected the current color, got %q", fill)
	}

	up(a, 610, 560)
	expectState(t, a, "select.idle")
	expectSelected(t, a, sh.ID())
	if a.History().Len() != 2 || a.History().IsPaused() {
		t.Errorf("expected one history entry, got %d paused=%v", a.History().Len(), a.History().IsPaused())
	}

	a.Undo()
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected undo to remove the box, got %d shapes", a.CurrentPage().Len())
	}
}

func TestBoxToolClickWithoutDragCreatesNothing(t *testing.T) {
	a := newTestApp(t)
	a.Transition("box", nil)
	down(a, Canvas(), 510, 510)
	up(a, 510, 510)
	expectState(t, a, "box.idle")
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected no new shape, got %d shapes", a.CurrentPage().Len())
	}
}

func TestBoxToolEscapeAborts(t *testing.T) {
	a := newTestApp(t)
	a.Transition("ellipse", nil)
	down(a, Canvas(), 510, 510)
	move(a, 520, 520)
	move(a, 600, 600)
	keyDown(a, "Escape")
	expectState(t, a, "ellipse.idle")
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected the ellipse removed, got %d shapes", a.CurrentPage().Len())
	}
	if a.History().IsPaused() || a.History().Len() != 1 {
		t.Errorf("expected history untouched, got %d paused=%v", a.History().Len(), a.History().IsPaused())
	}
	keyDown(a, "Escape")
	expectState(t, a, "select.idle")
}

func TestToolLockKeepsTool(t *testing.T) {
	a := newTestApp(t)
	a.Transition("star", nil)
	a.API().ToggleToolLock()
	down(a, Canvas(), 510, 510)
	move(a, 520, 520)
	move(a, 600, 600)
	up(a, 600, 600)
	expectState(t, a, "star.idle")
	if !a.Settings().IsToolLocked {
		t.Error("expected the lock to stay on")
	}
	if sh := lastShape(t, a); sh.Type() != shape.TypeStar {
		t.Errorf("expected a star, got %s", sh.Type())
	}
}

func TestLineToolSnapsToGrid(t *testing.T) {
	a := newTestApp(t)
	a.Transition("line", nil)
	down(a, Canvas(), 10, 10)
	move(a, 20, 20)
	expectState(t, a, "line.creating")
	move(a, 100, 50)

	sh := lastShape(t, a)
	m := sh.Props()
	if len(m.Handles) != 2 {
		t.Fatalf("expected two handles, got %v", m.Handles)
	}
	start := m.Point.Add(m.Handles[0].Point)
	end := m.Point.Add(m.Handles[1].Point)
	if start != geom.V(10, 10) {
		t.Errorf("expected start at [10,10], got %v", start)
	}
	if end != geom.V(104, 48) {
		t.Errorf("expected end snapped to [104,48], got %v", end)
	}

	up(a, 100, 50)
	expectState(t, a, "select.idle")
	expectSelected(t, a, sh.ID())
	if a.History().Len() != 2 {
		t.Errorf("expected one history entry, got %d", a.History().Len())
	}
}

func TestLineToolShiftSnapsAngle(t *testing.T) {
	a := newTestApp(t)
	s := a.Settings()
	s.ShowGrid = false
	a.SetSettings(s)
	a.Transition("polyline", nil)
	down(a, Canvas(), 0, 0)
	move(a, 10, 1)
	move(a, 100, 3, shift)

	m := lastShape(t, a).Props()
	if len(m.Handles) != 2 {
		t.Fatalf("expected start and end handles, got %v", m.Handles)
	}
	end := m.Point.Add(m.Handles[1].Point)
	if end.Y != 1 {
		t.Errorf("expected a horizontal segment from the end handle, got %v", end)
	}
}

func TestDrawToolRecordsStroke(t *testing.T) {
	a := newTestApp(t)
	a.Transition("draw", nil)
	down(a, Canvas(), 500, 500)
	expectState(t, a, "draw.creating")
	move(a, 520, 510)
	move(a, 490, 530)
	up(a, 490, 530)
	expectState(t, a, "draw.idle")

	m := lastShape(t, a).Props()
	if !m.IsComplete {
		t.Error("expected the stroke complete")
	}
	if m.Point != geom.V(490, 500) {
		t.Errorf("expected the point rebased to [490,500], got %v", m.Point)
	}
	want := []geom.Vec{geom.V(10, 0), geom.V(30, 10), geom.V(0, 30)}
	if len(m.Points) != len(want) {
		t.Fatalf("expected %v, got %v", want, m.Points)
	}
	for i := range want {
		if m.Points[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], m.Points[i])
		}
	}
	if a.History().Len() != 2 {
		t.Errorf("expected one history entry, got %d", a.History().Len())
	}
}

func TestDrawToolShiftContinuesStroke(t *testing.T) {
	a := newTestApp(t)
	a.Transition("draw", nil)
	down(a, Canvas(), 500, 500)
	move(a, 510, 500)
	up(a, 510, 500)
	before := a.CurrentPage().Len()

	down(a, Canvas(), 574, 500, shift)
	up(a, 574, 500, shift)
	if a.CurrentPage().Len() != before {
		t.Fatalf("expected the stroke extended, got %d shapes", a.CurrentPage().Len())
	}
	m := lastShape(t, a).Props()
	last := m.Points[len(m.Points)-1].Add(m.Point)
	if last != geom.V(574, 500) {
		t.Errorf("expected the stroke to reach [574,500], got %v", last)
	}
	// 64 units at one point per 16
	if n := len(m.Points); n != 2+4 {
		t.Errorf("expected 6 points, got %d", n)
	}
}

func TestDotTool(t *testing.T) {
	a := newTestApp(t)
	var created int
	a.Subscribe(EventCreateShapes, func(*App, any) { created++ })
	a.Transition("dot", nil)
	down(a, Canvas(), 600, 600)
	if a.CurrentPage().Len() != 3 {
		t.Fatal("expected the dot to appear on release")
	}
	up(a, 600, 600)
	sh := lastShape(t, a)
	if sh.Type() != shape.TypeDot || sh.Center() != geom.V(600, 600) {
		t.Errorf("expected a dot centered on [600,600], got %s at %v", sh.Type(), sh.Center())
	}
	if created != 1 {
		t.Errorf("expected one create notification, got %d", created)
	}
	expectState(t, a, "dot.idle")
}

func TestTextToolStartsEditing(t *testing.T) {
	a := newTestApp(t)
	a.Transition("text", nil)
	down(a, Canvas(), 600, 600)
	expectState(t, a, "select.editingShape")
	sh := lastShape(t, a)
	if sh.Type() != shape.TypeText || a.EditingID() != sh.ID() {
		t.Fatalf("expected the new text editing, got %s editing %q", sh.Type(), a.EditingID())
	}
	if c := sh.Bounds().Center(); !near(c.X, 600) || !near(c.Y, 600) {
		t.Errorf("expected the text centered on the click, got %v", c)
	}

	// leaving with no text deletes the shape
	keyDown(a, "Escape")
	expectState(t, a, "select.idle")
	if a.CurrentPage().Shape(sh.ID()) != nil {
		t.Error("expected the empty text removed")
	}
}

func TestEraseToolClick(t *testing.T) {
	a := newTestApp(t)
	a.Transition("erase", nil)
	down(a, Canvas(), 50, 50)
	expectState(t, a, "erase.pointing")
	if ids := a.ErasingIDs(); len(ids) != 1 || ids[0] != "box1" {
		t.Fatalf("expected box1 marked, got %v", ids)
	}
	up(a, 50, 50)
	expectState(t, a, "erase.idle")
	if a.CurrentPage().Shape("box1") != nil {
		t.Error("expected box1 erased")
	}
	if a.History().Len() != 2 {
		t.Errorf("expected one history entry, got %d", a.History().Len())
	}
}

func TestEraseToolDrag(t *testing.T) {
	a := newTestApp(t)
	a.Transition("erase", nil)
	down(a, Canvas(), 200, 200)
	move(a, 210, 210)
	expectState(t, a, "erase.erasing")
	move(a, 320, 320)
	if ids := a.ErasingIDs(); len(ids) != 2 {
		t.Fatalf("expected box2 and box3 marked, got %v", ids)
	}
	keyDown(a, "Escape")
	expectState(t, a, "erase.idle")
	if a.CurrentPage().Len() != 3 || len(a.ErasingIDs()) != 0 {
		t.Errorf("expected nothing erased, got %d shapes", a.CurrentPage().Len())
	}
}

func TestEraseToolDragPersistsOnce(t *testing.T) {
	a := newTestApp(t)
	a.Transition("erase", nil)
	down(a, Canvas(), 200, 200)
	move(a, 210, 210)
	expectState(t, a, "erase.erasing")
	if !a.History().IsPaused() {
		t.Fatal("expected history paused while erasing")
	}
	move(a, 320, 320)
	up(a, 320, 320)
	expectState(t, a, "erase.idle")
	if a.History().IsPaused() {
		t.Error("expected history resumed")
	}
	if a.CurrentPage().Len() != 1 || a.History().Len() != 2 {
		t.Errorf("expected box2 and box3 erased in one entry, got %d shapes and %d entries",
			a.CurrentPage().Len(), a.History().Len())
	}
	a.Undo()
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected undo to restore both shapes, got %d", a.CurrentPage().Len())
	}
}

func TestSpaceHoldsMoveTool(t *testing.T) {
	a := newTestApp(t)
	keyDown(a, " ")
	expectState(t, a, "move.idleHold")

	down(a, Canvas(), 100, 100)
	expectState(t, a, "move.panning")
	move(a, 150, 130)
	if got := a.Viewport().Camera().Point; got != geom.V(50, 30) {
		t.Errorf("expected the camera panned to [50,30], got %v", got)
	}
	up(a, 150, 130)
	expectState(t, a, "move.idleHold")

	keyUp(a, " ")
	expectState(t, a, "select.idle")
}

func TestMiddleButtonHoldsMoveTool(t *testing.T) {
	a := newTestApp(t)
	a.Transition("box", nil)
	down(a, Canvas(), 100, 100, middle)
	expectState(t, a, "move.panning")
	move(a, 120, 100, middle)
	if got := a.Viewport().Camera().Point; got != geom.V(20, 0) {
		t.Errorf("expected the camera panned to [20,0], got %v", got)
	}
	up(a, 120, 100, middle)
	expectState(t, a, "box.idle")
}

func TestMoveToolPans(t *testing.T) {
	a := newTestApp(t)
	a.Transition("move", nil)
	down(a, Canvas(), 100, 100)
	move(a, 90, 80)
	up(a, 90, 80)
	expectState(t, a, "move.idle")
	if got := a.Viewport().Camera().Point; got != geom.V(-10, -20) {
		t.Errorf("expected [-10,-20], got %v", got)
	}
}

func TestPinchBorrowedFromCreatingTool(t *testing.T) {
	a := newTestApp(t)
	a.Transition("box", nil)
	a.PinchStart(Canvas(), Input{})
	expectState(t, a, "select.pinching")
	a.Pinch(EventInfo{Type: TargetCanvas, Point: geom.V(540, 360), Zoom: 2}, Input{})
	if z := a.Viewport().Camera().Zoom; z != 2 {
		t.Errorf("expected zoom 2, got %v", z)
	}
	a.PinchEnd(Canvas(), Input{})
	expectState(t, a, "box.idle")
}
