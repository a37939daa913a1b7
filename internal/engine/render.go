package engine

import (
	"encoding/json"

	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// PathCommand is one segment of a path in shape-local space:
// ["M", x, y], ["L", x, y], ["E", cx, cy, rx, ry] or ["Z"].
type PathCommand []any

func moveTo(p geom.Vec) PathCommand { return PathCommand{"M", p.X, p.Y} }
func lineTo(p geom.Vec) PathCommand { return PathCommand{"L", p.X, p.Y} }

// DrawCommand is a single drawing operation for a canvas client. Clients
// receive a list of these and execute them on a 2D context.
type DrawCommand struct {
	Op          string        `json:"op"` // "path", "image" or "text"
	ShapeID     string        `json:"shapeId,omitempty"`
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f]
	Path        []PathCommand `json:"path,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
	AssetID     string        `json:"assetId,omitempty"`
	Size        geom.Vec      `json:"size,omitzero"`
	Text        string        `json:"text,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	Selected    bool          `json:"selected,omitempty"`
	Hovered     bool          `json:"hovered,omitempty"`
	Erasing     bool          `json:"erasing,omitempty"`
}

// Frame is everything a client needs to paint the current page.
type Frame struct {
	PageID string `json:"pageId"`
	// Camera maps page space to viewport space.
	Camera   []float64     `json:"camera"`
	Commands []DrawCommand `json:"commands"`
	// Selection is the common rotated bounds of the selection when it is
	// shown.
	Selection *geom.Bounds `json:"selection,omitempty"`
	Brush     *geom.Bounds `json:"brush,omitempty"`
}

// Render compiles the shapes in the viewport into draw commands in
// painter's order (back to front).
func (a *App) Render() Frame {
	cam := a.viewport.Camera()
	f := Frame{
		PageID:   a.currentPageID,
		Camera:   geom.CameraTransform(cam.Point, cam.Zoom).ToSlice(),
		Commands: []DrawCommand{},
		Brush:    a.brush,
	}
	erasing := make(map[string]bool, len(a.erasingIDs))
	for _, id := range a.erasingIDs {
		erasing[id] = true
	}
	for _, sh := range a.ShapesInViewport() {
		if sh.IsHidden() {
			continue
		}
		cmd := compileShape(sh)
		cmd.Selected = a.isSelected(sh.ID())
		cmd.Hovered = sh.ID() == a.hoveredID
		cmd.Erasing = erasing[sh.ID()]
		f.Commands = append(f.Commands, cmd)
	}
	if a.ShowSelection() {
		if b, ok := a.SelectionBounds(); ok {
			f.Selection = &b
		}
	}
	return f
}

// compileShape emits the draw command for one shape.
func compileShape(sh *shape.Shape) DrawCommand {
	m := sh.Props()
	b := sh.Bounds()
	cmd := DrawCommand{
		Op:          "path",
		ShapeID:     m.ID,
		Transform:   geom.ShapeTransform(b.Min(), b.Size(), m.Rotation).ToSlice(),
		Fill:        m.Fill,
		Stroke:      m.Stroke,
		StrokeWidth: m.StrokeWidth,
		Opacity:     m.Opacity,
		Size:        b.Size(),
	}
	// points of draw, line and polyline shapes are relative to Point, which
	// can differ from the bounds origin
	offset := m.Point.Sub(b.Min())

	switch sh.Type() {
	case shape.TypeImage:
		cmd.Op = "image"
		cmd.AssetID = m.AssetID
	case shape.TypeText:
		cmd.Op = "text"
		cmd.Text = m.Text
		cmd.FontSize = m.FontSize
	case shape.TypeEllipse, shape.TypeDot:
		r := b.Size().Div(2)
		cmd.Path = []PathCommand{{"E", r.X, r.Y, r.X, r.Y}}
	case shape.TypeDraw:
		cmd.Path = polyline(m.Points, offset, false)
	case shape.TypeLine, shape.TypePolyline:
		cmd.Path = polyline(m.HandlePoints(), offset, false)
	default:
		cmd.Path = polyline(sh.Vertices(), geom.Vec{}, true)
	}
	return cmd
}

func polyline(points []geom.Vec, offset geom.Vec, closed bool) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	out := make([]PathCommand, 0, len(points)+1)
	out = append(out, moveTo(points[0].Add(offset)))
	for _, p := range points[1:] {
		out = append(out, lineTo(p.Add(offset)))
	}
	if closed {
		out = append(out, PathCommand{"Z"})
	}
	return out
}

// HitTest returns the id of the topmost shape under a screen point, or "".
func (a *App) HitTest(screen geom.Vec) string {
	if sh := a.CurrentPage().HitTest(a.viewport.PagePoint(screen)); sh != nil {
		return sh.ID()
	}
	return ""
}

// FrameToJSON serializes a frame.
func FrameToJSON(f Frame) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
