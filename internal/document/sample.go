package document

import "github.com/inamate/inamate/whiteboard/internal/geom"

// NewSampleDocument returns a small board used by the playground and the
// replay command when no document is given.
func NewSampleDocument() *Document {
	doc := NewEmptyDocument()
	doc.Pages[0].Name = "Sample"
	doc.Pages[0].Shapes = []ShapeModel{
		{
			ID:       "sample-box",
			Type:     "box",
			ParentID: DefaultPageID,
			Point:    geom.V(100, 100),
			Scale:    geom.V(1, 1),
			Size:     geom.V(200, 150),
			Style:    Style{Fill: "#e94560", Stroke: "#000000", StrokeWidth: 2, Opacity: 1},
			Nonce:    1,
		},
		{
			ID:       "sample-ellipse",
			Type:     "ellipse",
			ParentID: DefaultPageID,
			Point:    geom.V(400, 100),
			Scale:    geom.V(1, 1),
			Size:     geom.V(240, 160),
			Style:    Style{Fill: "#0f3460", Stroke: "#16213e", StrokeWidth: 2, Opacity: 1},
			Nonce:    1,
		},
		{
			ID:       "sample-star",
			Type:     "star",
			ParentID: DefaultPageID,
			Point:    geom.V(700, 100),
			Scale:    geom.V(1, 1),
			Size:     geom.V(150, 150),
			Sides:    5,
			Ratio:    1,
			Style:    Style{Fill: "#f5a623", Stroke: "#000000", StrokeWidth: 2, Opacity: 1},
			Nonce:    1,
		},
		{
			ID:       "sample-line",
			Type:     "line",
			ParentID: DefaultPageID,
			Point:    geom.V(100, 350),
			Scale:    geom.V(1, 1),
			Handles: []Handle{
				{ID: "start", Point: geom.V(0, 0), CanBind: true},
				{ID: "end", Point: geom.V(300, 80), CanBind: true},
			},
			Style: Style{Stroke: "#000000", StrokeWidth: 2, Opacity: 1},
			Nonce: 1,
		},
		{
			ID:           "sample-text",
			Type:         "text",
			ParentID:     DefaultPageID,
			Point:        geom.V(500, 350),
			Scale:        geom.V(1, 1),
			Text:         "Hello, board",
			IsSizeLocked: true,
			FontSize:     20,
			LineHeight:   1.2,
			Padding:      4,
			Style:        Style{Stroke: "#000000", Opacity: 1},
			Nonce:        1,
		},
	}
	return doc
}
