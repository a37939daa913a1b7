package engine

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// typeEditable is a box kind that can be edited, registered only for tests.
const typeEditable shape.Type = "editable"

func testRegistry() *shape.Registry {
	reg := shape.DefaultRegistry()
	d := shape.BoxDef()
	d.Type = typeEditable
	d.Flags.CanEdit = true
	reg.Register(d)
	return reg
}

func box(id, typ string, x, y float64) document.ShapeModel {
	return document.ShapeModel{
		ID:       id,
		Type:     typ,
		ParentID: "page1",
		Point:    geom.V(x, y),
		Scale:    geom.V(1, 1),
		Size:     geom.V(100, 100),
		Style:    document.Style{StrokeWidth: 2, Opacity: 1},
	}
}

// testDocument has one page with two boxes and an editable box that
// overlaps the second one.
func testDocument() *document.Document {
	return &document.Document{
		CurrentPageID: "page1",
		SelectedIDs:   []string{},
		Pages: []document.Page{{
			ID:   "page1",
			Name: "Page 1",
			Shapes: []document.ShapeModel{
				box("box1", "box", 0, 0),
				box("box2", "box", 250, 250),
				box("box3", string(typeEditable), 300, 300),
			},
			Bindings: []document.Binding{},
		}},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(
		WithRegistry(testRegistry()),
		WithDocument(testDocument()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

// The viewport starts at the origin with zoom 1, so screen and page points
// are the same in these helpers.

func down(a *App, info EventInfo, x, y float64, mods ...func(*Input)) {
	a.PointerDown(info, input(x, y, mods))
}

func move(a *App, x, y float64, mods ...func(*Input)) {
	a.PointerMove(Canvas(), input(x, y, mods))
}

func up(a *App, x, y float64, mods ...func(*Input)) {
	a.PointerUp(Canvas(), input(x, y, mods))
}

func keyDown(a *App, key string, mods ...func(*Input)) {
	in := input(0, 0, mods)
	in.Point = a.inputs.CurrentScreenPoint
	in.Key = key
	a.KeyDown(Canvas(), in)
}

func keyUp(a *App, key string, mods ...func(*Input)) {
	in := input(0, 0, mods)
	in.Point = a.inputs.CurrentScreenPoint
	in.Key = key
	a.KeyUp(Canvas(), in)
}

func input(x, y float64, mods []func(*Input)) Input {
	in := Input{Point: geom.V(x, y)}
	for _, m := range mods {
		m(&in)
	}
	return in
}

func shift(in *Input)     { in.Shift = true }
func ctrl(in *Input)      { in.Ctrl = true }
func alt(in *Input)       { in.Alt = true }
func secondary(in *Input) { in.Button = ButtonSecondary }
func middle(in *Input)    { in.Button = ButtonMiddle }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustShape(t *testing.T, a *App, id string) *shape.Shape {
	t.Helper()
	s, err := a.Shape(id)
	if err != nil {
		t.Fatalf("shape %s: %v", id, err)
	}
	return s
}

func expectState(t *testing.T, a *App, want string) {
	t.Helper()
	if got := a.CurrentState(); got != want {
		t.Fatalf("expected state %s, got %s", want, got)
	}
}

func expectSelected(t *testing.T, a *App, want ...string) {
	t.Helper()
	got := a.SelectedIDs()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected selection %v, got %v", want, got)
	}
}

func TestNewStartsInSelectIdle(t *testing.T) {
	a := newTestApp(t)
	expectState(t, a, "select.idle")
	if a.CurrentPage().ID() != "page1" {
		t.Errorf("expected page1, got %s", a.CurrentPage().ID())
	}
	if a.History().Len() != 1 || a.History().IsPaused() {
		t.Errorf("expected one unpaused history entry, got %d paused=%v", a.History().Len(), a.History().IsPaused())
	}
	want := []string{"select", "move", "box", "ellipse", "polygon", "star", "dot", "draw", "line", "polyline", "erase", "text"}
	if got := a.ToolIDs(); !slices.Equal(got, want) {
		t.Errorf("expected tools %v, got %v", want, got)
	}
}

func TestNewWithoutDocumentHasDefaultPage(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if a.CurrentPage().ID() != document.DefaultPageID {
		t.Errorf("expected page %s, got %s", document.DefaultPageID, a.CurrentPage().ID())
	}
	if a.CurrentPage().Len() != 0 {
		t.Errorf("expected an empty page, got %d shapes", a.CurrentPage().Len())
	}
}

func TestNewRejectsUnknownShapeType(t *testing.T) {
	doc := testDocument()
	doc.Pages[0].Shapes = append(doc.Pages[0].Shapes, box("bad", "hexagon", 0, 0))
	_, err := New(WithDocument(doc))
	if !errors.Is(err, shape.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	a := newTestApp(t)
	var persists int
	unsubscribe := a.Subscribe(EventPersist, func(*App, any) { persists++ })
	a.Persist()
	if persists != 1 {
		t.Fatalf("expected 1 persist notification, got %d", persists)
	}
	unsubscribe()
	a.Persist()
	if persists != 1 {
		t.Errorf("expected no notification after unsubscribe, got %d", persists)
	}
}

func TestSetSettingsResetsToolLockOnToolChange(t *testing.T) {
	a := newTestApp(t)
	s := a.Settings()
	s.IsToolLocked = true
	a.SetSettings(s)
	a.Transition("box", nil)
	if a.Settings().IsToolLocked {
		t.Error("expected tool lock to reset when switching tools")
	}
}

func TestTryTransitionUnknownTool(t *testing.T) {
	a := newTestApp(t)
	if err := a.TryTransition("lasso", nil); err == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	expectState(t, a, "select.idle")
}

func TestWithToolsAddsTool(t *testing.T) {
	custom := func(*App) *fsm.Node[*Event] {
		return newTool("laser", fsm.Behavior[*Event]{}, newState("idle", fsm.Behavior[*Event]{}))
	}
	a, err := New(WithTools(custom))
	if err != nil {
		t.Fatal(err)
	}
	a.Transition("laser", nil)
	expectState(t, a, "laser.idle")
}
