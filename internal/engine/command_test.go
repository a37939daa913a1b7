package engine

import (
	"errors"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

func mustApply(t *testing.T, a *App, raw string) {
	t.Helper()
	c, err := ParseCommand([]byte(raw))
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	if err := a.Apply(c); err != nil {
		t.Fatalf("apply %s: %v", raw, err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"valid", `{"type":"undo"}`, nil},
		{"missing type", `{"ids":["a"]}`, ErrInvalidCommand},
		{"bad json", `{"type":`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCommand([]byte(tt.raw))
			switch {
			case tt.name == "valid":
				if err != nil || c.Type != CmdUndo {
					t.Errorf("expected undo, got %q %v", c.Type, err)
				}
			case err == nil:
				t.Error("expected an error")
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyCreateShapesFillsDefaults(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"createShapes","shapes":[{"id":"e1","type":"ellipse","point":[400,400]}]}`)
	sh := mustShape(t, a, "e1")
	if sh.Type() != shape.TypeEllipse {
		t.Fatalf("expected an ellipse, got %s", sh.Type())
	}
	m := sh.Props()
	if m.Size != geom.V(100, 100) || m.Opacity != 1 {
		t.Errorf("expected the kind defaults, got size %v opacity %v", m.Size, m.Opacity)
	}
	if m.ParentID != "page1" {
		t.Errorf("expected parent page1, got %s", m.ParentID)
	}
	if a.History().Len() != 2 {
		t.Errorf("expected one history entry, got %d", a.History().Len())
	}
}

func TestApplyCreateShapesParentIsCurrentPage(t *testing.T) {
	a := newTestApp(t)
	if err := a.AddPages(document.Page{ID: "page2", Name: "Page 2"}); err != nil {
		t.Fatal(err)
	}
	if err := a.SetCurrentPage("page2"); err != nil {
		t.Fatal(err)
	}
	mustApply(t, a, `{"type":"createShapes","shapes":[
		{"id":"b1","type":"box"},
		{"id":"l1","type":"line"},
		{"id":"d1","type":"draw","parentId":"nowhere"}]}`)
	for _, id := range []string{"b1", "l1", "d1"} {
		if got := mustShape(t, a, id).ParentID(); got != "page2" {
			t.Errorf("expected %s on page2, got %q", id, got)
		}
	}
}

func TestApplyCreateShapesUnknownType(t *testing.T) {
	a := newTestApp(t)
	c, _ := ParseCommand([]byte(`{"type":"createShapes","shapes":[{"type":"hexagon"}]}`))
	if err := a.Apply(c); !errors.Is(err, shape.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if a.CurrentPage().Len() != 3 {
		t.Errorf("expected no shapes added, got %d", a.CurrentPage().Len())
	}
}

func TestApplyUpdateShapesPatches(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"updateShapes","patches":[{"id":"box1","fill":"#00ff00"},{"id":"box2","point":[10,20]}]}`)
	if got := mustShape(t, a, "box1").Props(); got.Fill != "#00ff00" || got.Point != geom.V(0, 0) {
		t.Errorf("expected only the fill of box1 changed, got %q at %v", got.Fill, got.Point)
	}
	if got := mustShape(t, a, "box2").Point(); got != geom.V(10, 20) {
		t.Errorf("expected box2 at [10,20], got %v", got)
	}

	c, _ := ParseCommand([]byte(`{"type":"updateShapes","patches":[{"id":"box1","fill":"#000"},{"id":"nope"}]}`))
	if err := a.Apply(c); !errors.Is(err, ErrShapeNotFound) {
		t.Fatalf("expected ErrShapeNotFound, got %v", err)
	}
	if got := mustShape(t, a, "box1").Props().Fill; got != "#00ff00" {
		t.Errorf("expected a failed patch to change nothing, got %q", got)
	}
}

func TestApplyUnknownCommand(t *testing.T) {
	a := newTestApp(t)
	err := a.Apply(Command{Type: "explode"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestApplyMissingFields(t *testing.T) {
	a := newTestApp(t)
	for _, typ := range []CommandType{CmdSetCamera, CmdSetSettings} {
		if err := a.Apply(Command{Type: typ}); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("%s: expected ErrInvalidCommand, got %v", typ, err)
		}
	}
}

func TestApplySetTool(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"setTool","tool":"draw"}`)
	expectState(t, a, "draw.idle")

	if err := a.Apply(Command{Type: CmdSetTool, Tool: "lasso"}); err == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	expectState(t, a, "draw.idle")
}

func TestApplyResolvesTargets(t *testing.T) {
	a := newTestApp(t)
	// no info at all: hit test finds box1
	mustApply(t, a, `{"type":"pointerDown","input":{"point":[50,50]}}`)
	expectState(t, a, "select.pointingShape")
	mustApply(t, a, `{"type":"pointerUp","input":{"point":[50,50]}}`)
	expectSelected(t, a, "box1")

	mustApply(t, a, `{"type":"pointerDown","info":{"type":"auto"},"input":{"point":[700,700]}}`)
	expectState(t, a, "select.pointingCanvas")
	mustApply(t, a, `{"type":"pointerUp","input":{"point":[700,700]}}`)
	expectSelected(t, a)
}

func TestApplyResolvesSelectionBackground(t *testing.T) {
	a := newTestApp(t)
	a.SetSelectedShapes([]string{"box1", "box2"})
	mustApply(t, a, `{"type":"pointerDown","input":{"point":[200,200]}}`)
	expectState(t, a, "select.pointingBoundsBackground")
}

func TestApplyFlushesHistory(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"select","ids":["box1"]}`)
	mustApply(t, a, `{"type":"pointerDown","info":{"type":"shape","shapeId":"box1"},"input":{"point":[10,10]}}`)
	mustApply(t, a, `{"type":"pointerMove","input":{"point":[60,10]}}`)
	if a.History().Len() != 1 {
		t.Fatalf("expected no entry mid-drag, got %d", a.History().Len())
	}
	mustApply(t, a, `{"type":"pointerUp","input":{"point":[60,10]}}`)
	if a.History().Len() != 2 {
		t.Fatalf("expected the drag recorded once, got %d", a.History().Len())
	}
	mustApply(t, a, `{"type":"undo"}`)
	if got := mustShape(t, a, "box1").Point(); got != geom.V(0, 0) {
		t.Errorf("expected box1 back at [0,0], got %v", got)
	}
}

func TestApplyCameraAndZoom(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"setCamera","camera":{"point":[10,20],"zoom":9}}`)
	c := a.Viewport().Camera()
	if c.Point != geom.V(10, 20) || c.Zoom != MaxZoom {
		t.Errorf("expected [10,20] at max zoom, got %v at %v", c.Point, c.Zoom)
	}
	mustApply(t, a, `{"type":"resetZoom"}`)
	if z := a.Viewport().Camera().Zoom; z != 1 {
		t.Errorf("expected zoom 1, got %v", z)
	}
}

func TestApplyPagesAndSettings(t *testing.T) {
	a := newTestApp(t)
	mustApply(t, a, `{"type":"addPages","pages":[{"id":"page2","name":"Page 2","shapes":[],"bindings":[]}]}`)
	mustApply(t, a, `{"type":"setCurrentPage","pageId":"page2"}`)
	if a.CurrentPage().ID() != "page2" {
		t.Fatalf("expected page2, got %s", a.CurrentPage().ID())
	}
	if err := a.Apply(Command{Type: CmdSetCurrentPage, PageID: "page9"}); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	mustApply(t, a, `{"type":"setSettings","settings":{"color":"#123456","showGrid":false}}`)
	if s := a.Settings(); s.Color != "#123456" || s.ShowGrid {
		t.Errorf("expected the new settings, got %+v", s)
	}
}
