package main

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/engine"
)

const stream = `
# two boxes, then drag the first one
{"type":"createShapes","shapes":[{"id":"a","type":"box","point":[0,0],"size":[100,100]}]}
{"type":"createShapes","shapes":[{"id":"b","type":"box","point":[300,0],"size":[100,100]}]}
{"type":"teleport"}
{"type":"pointerDown","input":{"point":[50,50]}}
{"type":"pointerMove","input":{"point":[60,60]}}
{"type":"pointerMove","input":{"point":[80,90]}}
{"type":"pointerUp","input":{"point":[80,90]}}
`

func TestReplay(t *testing.T) {
	app, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}

	applied, failed, err := replay(app, strings.NewReader(stream), false)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 6 || failed != 1 {
		t.Errorf("expected 6 applied and 1 failed, got %d and %d", applied, failed)
	}

	a := app.CurrentPage().Shape("a")
	if a == nil {
		t.Fatal("expected shape a")
	}
	if p := a.Point(); p.X != 30 || p.Y != 40 {
		t.Errorf("expected a dragged to (30,40), got %v", p)
	}
}

func TestReplayStrict(t *testing.T) {
	app, _ := engine.New()
	applied, _, err := replay(app, strings.NewReader(stream), true)
	if !errors.Is(err, engine.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if applied != 2 || !strings.Contains(err.Error(), "line 5") {
		t.Errorf("expected to stop at line 5 after 2 commands, got %d: %v", applied, err)
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:5173", "*", "not a url", "https://board.example.com"})
	want := []string{"localhost:5173", "*", "board.example.com"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
