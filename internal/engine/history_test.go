package engine

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

func moveShape(t *testing.T, a *App, id string, p geom.Vec) {
	t.Helper()
	mustShape(t, a, id).Update(func(m *document.ShapeModel) { m.Point = p })
	a.Persist()
}

func TestUndoRedo(t *testing.T) {
	a := newTestApp(t)
	moveShape(t, a, "box1", geom.V(10, 0))
	moveShape(t, a, "box1", geom.V(20, 0))
	if a.History().Len() != 3 || a.History().Pointer() != 2 {
		t.Fatalf("expected 3 entries at 2, got %d at %d", a.History().Len(), a.History().Pointer())
	}

	a.Undo()
	a.Undo()
	if got := mustShape(t, a, "box1").Point(); got != geom.V(0, 0) {
		t.Fatalf("expected [0,0] after two undos, got %v", got)
	}
	a.Undo()
	if a.History().Pointer() != 0 {
		t.Errorf("expected undo past the start to do nothing, got pointer %d", a.History().Pointer())
	}

	a.Redo()
	if got := mustShape(t, a, "box1").Point(); got != geom.V(10, 0) {
		t.Errorf("expected [10,0] after redo, got %v", got)
	}
}

func TestPersistDropsRedoBranch(t *testing.T) {
	a := newTestApp(t)
	moveShape(t, a, "box1", geom.V(10, 0))
	moveShape(t, a, "box1", geom.V(20, 0))
	a.Undo()
	a.Undo()
	moveShape(t, a, "box2", geom.V(0, 500))
	if a.History().Len() != 2 || a.History().CanRedo() {
		t.Fatalf("expected the redo branch dropped, got %d entries", a.History().Len())
	}
	a.Redo()
	if got := mustShape(t, a, "box1").Point(); got != geom.V(0, 0) {
		t.Errorf("expected box1 untouched, got %v", got)
	}
}

func TestUndoKeepsUnchangedShapes(t *testing.T) {
	a := newTestApp(t)
	box2 := mustShape(t, a, "box2")
	nonce := box2.Nonce()
	moveShape(t, a, "box1", geom.V(10, 0))
	a.Undo()
	if mustShape(t, a, "box2") != box2 {
		t.Error("expected box2 to be the same shape after undo")
	}
	if box2.Nonce() != nonce {
		t.Errorf("expected box2 nonce %d, got %d", nonce, box2.Nonce())
	}
}

func TestUndoRestoresDeletedShape(t *testing.T) {
	a := newTestApp(t)
	a.DeleteShapes("box2")
	if a.CurrentPage().Shape("box2") != nil {
		t.Fatal("expected box2 deleted")
	}
	a.Undo()
	sh := mustShape(t, a, "box2")
	if sh.Point() != geom.V(250, 250) {
		t.Errorf("expected box2 back at [250,250], got %v", sh.Point())
	}
	ids := make([]string, 0, 3)
	for _, s := range a.Shapes() {
		ids = append(ids, s.ID())
	}
	if ids[1] != "box2" {
		t.Errorf("expected paint order restored, got %v", ids)
	}
}

func TestUndoRevertsConvertedShape(t *testing.T) {
	a := newTestApp(t)
	if err := a.API().ConvertShapes(shape.TypeEllipse, "box1"); err != nil {
		t.Fatal(err)
	}
	if sh := mustShape(t, a, "box1"); sh.Type() != shape.TypeEllipse {
		t.Fatalf("expected an ellipse, got %s", sh.Type())
	}
	a.Undo()
	if sh := mustShape(t, a, "box1"); sh.Type() != shape.TypeBox {
		t.Errorf("expected a box after undo, got %s", sh.Type())
	}
	a.Redo()
	if sh := mustShape(t, a, "box1"); sh.Type() != shape.TypeEllipse {
		t.Errorf("expected an ellipse after redo, got %s", sh.Type())
	}
}

func TestUndoIgnoredMidGesture(t *testing.T) {
	a := newTestApp(t)
	moveShape(t, a, "box1", geom.V(10, 0))
	down(a, OnShape("box2"), 260, 260)
	a.Undo()
	if got := mustShape(t, a, "box1").Point(); got != geom.V(10, 0) {
		t.Errorf("expected undo ignored while pointing, got %v", got)
	}
}

func TestSerializeRoundTripKeepsNonces(t *testing.T) {
	a := newTestApp(t)
	mustShape(t, a, "box1").Update(func(m *document.ShapeModel) { m.Fill = "#ff0000" })
	first := a.Serialize()
	second := a.Serialize()
	if first.Pages[0].Shapes[0].Nonce != second.Pages[0].Shapes[0].Nonce {
		t.Errorf("expected a stable nonce across serializations, got %d then %d",
			first.Pages[0].Shapes[0].Nonce, second.Pages[0].Shapes[0].Nonce)
	}

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	b := newTestApp(t)
	if err := b.Load(data); err != nil {
		t.Fatal(err)
	}
	again := b.Serialize()
	for i, sm := range first.Pages[0].Shapes {
		if got := again.Pages[0].Shapes[i]; got.ID != sm.ID || got.Nonce != sm.Nonce || got.Fill != sm.Fill {
			t.Errorf("shape %d: expected %s nonce %d, got %s nonce %d", i, sm.ID, sm.Nonce, got.ID, got.Nonce)
		}
	}
	if b.History().Len() != 1 {
		t.Errorf("expected load to reset history, got %d entries", b.History().Len())
	}
}

func TestSerializeBumpsDirtyNonce(t *testing.T) {
	a := newTestApp(t)
	before := a.Serialize().Pages[0].Shapes[0].Nonce
	mustShape(t, a, "box1").Update(func(m *document.ShapeModel) { m.Point = geom.V(1, 1) })
	after := a.Serialize().Pages[0].Shapes[0].Nonce
	if after <= before {
		t.Errorf("expected the nonce to grow, got %d then %d", before, after)
	}
}

func TestFlushSave(t *testing.T) {
	a := newTestApp(t)
	mustShape(t, a, "box1").Update(func(m *document.ShapeModel) { m.Point = geom.V(5, 5) })
	a.FlushSave()
	if a.History().Len() != 2 {
		t.Fatalf("expected the edit flushed, got %d entries", a.History().Len())
	}
	a.FlushSave()
	if a.History().Len() != 2 {
		t.Errorf("expected nothing more to flush, got %d entries", a.History().Len())
	}

	down(a, OnShape("box1"), 10, 10)
	move(a, 30, 30)
	a.FlushSave()
	if a.History().Len() != 2 {
		t.Errorf("expected no flush mid-gesture, got %d entries", a.History().Len())
	}
}

func TestLoadDocumentRejectsUnknownType(t *testing.T) {
	a := newTestApp(t)
	doc := testDocument()
	doc.Pages[0].Shapes[0].Type = "hexagon"
	if err := a.LoadDocument(doc); err == nil {
		t.Fatal("expected an error")
	}
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected the board untouched, got %d shapes", a.CurrentPage().Len())
	}
}

func TestDeserializeCorruptSnapshotIsLogged(t *testing.T) {
	var logs bytes.Buffer
	a, err := New(
		WithRegistry(testRegistry()),
		WithDocument(testDocument()),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}

	snap := a.Serialize()
	page, _ := snap.Page("page1")
	page.Shapes = append(page.Shapes, document.ShapeModel{ID: "hex", Type: "hexagon"})

	a.History().Deserialize(snap)

	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected the three shapes kept, got %d", a.CurrentPage().Len())
	}
	if a.History().IsPaused() {
		t.Error("expected history resumed after a failed restore")
	}
	if !strings.Contains(logs.String(), "could not restore snapshot") {
		t.Errorf("expected a warning, got %q", logs.String())
	}

	moveShape(t, a, "box1", geom.V(10, 0))
	if a.History().Len() != 2 {
		t.Errorf("expected persist to work after the failure, got %d entries", a.History().Len())
	}
}
