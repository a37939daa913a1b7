package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/inamate/inamate/whiteboard/internal/geom"
)

func TestCloneIsIndependent(t *testing.T) {
	doc := NewSampleDocument()
	cp := doc.Clone()

	cp.Pages[0].Shapes[3].Handles[1].Point = geom.V(-1, -1)
	cp.Pages[0].Shapes[0].Point = geom.V(-1, -1)
	cp.SelectedIDs = append(cp.SelectedIDs, "x")

	orig := doc.Pages[0].Shapes
	if orig[3].Handles[1].Point != geom.V(300, 80) {
		t.Errorf("handle shared with clone: %v", orig[3].Handles[1].Point)
	}
	if orig[0].Point != geom.V(100, 100) {
		t.Errorf("point shared with clone: %v", orig[0].Point)
	}
	if len(doc.SelectedIDs) != 0 {
		t.Errorf("selection shared with clone: %v", doc.SelectedIDs)
	}
}

func TestClipJSON(t *testing.T) {
	tests := []struct {
		in   string
		want [4]float64
		out  string
	}{
		{`5`, [4]float64{5, 5, 5, 5}, `5`},
		{`[1,2,3,4]`, [4]float64{1, 2, 3, 4}, `[1,2,3,4]`},
		{`0`, [4]float64{}, `null`},
	}
	for _, tt := range tests {
		var c Clip
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		top, r, b, l := c.Edges()
		if got := [4]float64{top, r, b, l}; got != tt.want {
			t.Errorf("%s: expected edges %v, got %v", tt.in, tt.want, got)
		}
		out, _ := json.Marshal(c)
		if string(out) != tt.out {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.out, out)
		}
	}

	if u := (Clip{2, 2, 2, 2}).Uniform(); len(u) != 1 || u[0] != 2 {
		t.Errorf("expected uniform clip [2], got %v", u)
	}
}

func TestShapeModelJSON(t *testing.T) {
	m := ShapeModel{
		ID:       "a",
		Type:     "box",
		ParentID: DefaultPageID,
		Point:    geom.V(1, 2),
		Size:     geom.V(3, 4),
		Style:    Style{Fill: "red"},
		Nonce:    7,
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"point":[1,2]`, `"size":[3,4]`, `"fill":"red"`, `"nonce":7`, `"type":"box"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	for _, unwanted := range []string{`"handles"`, `"scale"`, `"points"`} {
		if strings.Contains(s, unwanted) {
			t.Errorf("did not expect %s in %s", unwanted, s)
		}
	}
}
