package engine

import (
	"slices"

	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// SetSelectedShapes selects ids on the current page. Unknown ids and
// duplicates are dropped. A single selected shape lends its rotation to
// the selection box.
func (a *App) SetSelectedShapes(ids []string) {
	page := a.CurrentPage()
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if page != nil && page.Shape(id) != nil && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	a.selectedIDs = next
	a.selectionRotation = 0
	if len(next) == 1 {
		a.selectionRotation = page.Shape(next[0]).Rotation()
	}
	a.store.MarkDirty(KeySelection)
}

// SelectAll switches to the select tool and selects every shape on the
// current page.
func (a *App) SelectAll() {
	a.store.Transaction(func() {
		if !a.IsIn("select") {
			a.Transition("select", nil)
		}
		a.SetSelectedShapes(shapeIDs(a.CurrentPage().shapes))
	})
}

func (a *App) DeselectAll() { a.SetSelectedShapes(nil) }

// SelectedIDs returns the selected ids regardless of the active tool.
func (a *App) SelectedIDs() []string { return slices.Clone(a.selectedIDs) }

// AllSelectedShapes returns the selected shapes regardless of the active
// tool.
func (a *App) AllSelectedShapes() []*shape.Shape { return a.shapesByID(a.selectedIDs) }

// SelectedShapes returns the selected shapes while the select tool is
// active, and nothing otherwise.
func (a *App) SelectedShapes() []*shape.Shape {
	if !a.IsIn("select") {
		return nil
	}
	return a.AllSelectedShapes()
}

func (a *App) isSelected(id string) bool { return slices.Contains(a.selectedIDs, id) }

func (a *App) HoveredID() string             { return a.hoveredID }
func (a *App) EditingID() string             { return a.editingID }
func (a *App) ErasingIDs() []string          { return slices.Clone(a.erasingIDs) }
func (a *App) Brush() *geom.Bounds           { return a.brush }
func (a *App) SelectionRotation() float64    { return a.selectionRotation }
func (a *App) HoveredShape() *shape.Shape    { return a.CurrentPage().Shape(a.hoveredID) }
func (a *App) EditingShape() *shape.Shape    { return a.CurrentPage().Shape(a.editingID) }
func (a *App) ErasingShapes() []*shape.Shape { return a.shapesByID(a.erasingIDs) }

func (a *App) SetHoveredShape(id string) {
	a.hoveredID = id
	a.store.MarkDirty(KeyHovered)
}

func (a *App) SetEditingShape(id string) {
	a.editingID = id
	a.store.MarkDirty(KeyEditing)
}

func (a *App) SetSelectionRotation(r float64) {
	a.selectionRotation = r
	a.store.MarkDirty(KeySelection)
}

func (a *App) SetErasingShapes(ids []string) {
	a.erasingIDs = slices.Clone(ids)
	a.store.MarkDirty(KeyErasing)
}

// SetBrush shows the brush rectangle; nil hides it.
func (a *App) SetBrush(b *geom.Bounds) {
	a.brush = b
	a.store.MarkDirty(KeyBrush)
}

// ClearEditingState ends text editing and hover.
func (a *App) ClearEditingState() {
	a.store.Transaction(func() {
		a.SetEditingShape("")
		a.SetHoveredShape("")
	})
}

// SetCamera moves the camera.
func (a *App) SetCamera(c Camera) { a.viewport.SetCamera(c) }

// CurrentGrid is the grid step at the current zoom. It widens as the view
// zooms out so lines stay readable.
func (a *App) CurrentGrid() float64 {
	switch z := a.viewport.camera.Zoom; {
	case z < 0.15:
		return GridSize * 16
	case z < 1:
		return GridSize * 4
	}
	return GridSize
}

// ShapesInViewport returns the shapes that should be mounted: visible ones,
// selected ones and those that never unmount.
func (a *App) ShapesInViewport() []*shape.Shape {
	view := a.viewport.CurrentView()
	var out []*shape.Shape
	for _, s := range a.CurrentPage().shapes {
		if !s.Flags().CanUnmount || a.isSelected(s.ID()) {
			out = append(out, s)
			continue
		}
		b := s.RotatedBounds()
		if geom.Contain(view, b) || geom.Collide(view, b) {
			out = append(out, s)
		}
	}
	return out
}

// SelectionBounds is the box around the selection. A single shape keeps its
// own rotation.
func (a *App) SelectionBounds() (geom.Bounds, bool) {
	shapes := a.SelectedShapes()
	switch len(shapes) {
	case 0:
		return geom.Bounds{}, false
	case 1:
		b := shapes[0].Bounds()
		b.Rotation = shapes[0].Rotation()
		return b, true
	}
	bs := make([]geom.Bounds, len(shapes))
	for i, s := range shapes {
		bs[i] = s.RotatedBounds()
	}
	return geom.CommonBounds(bs), true
}

func anyShape(shapes []*shape.Shape, fn func(shape.Flags) bool) bool {
	return slices.ContainsFunc(shapes, func(s *shape.Shape) bool { return fn(s.Flags()) })
}

func everyShape(shapes []*shape.Shape, fn func(shape.Flags) bool) bool {
	return !slices.ContainsFunc(shapes, func(s *shape.Shape) bool { return !fn(s.Flags()) })
}

// ShowSelection reports whether the selection box is drawn.
func (a *App) ShowSelection() bool {
	if !a.IsIn("select") || a.IsInAny("select.translating", "select.pinching", "select.rotating") {
		return false
	}
	shapes := a.SelectedShapes()
	return len(shapes) > 1 || (len(shapes) == 1 && !shapes[0].Flags().HideSelection)
}

func (a *App) ShowContextBar() bool {
	if !a.IsInAny("select.idle", "select.hoveringSelectionHandle") || a.IsIn("select.contextMenu") {
		return false
	}
	shapes := a.SelectedShapes()
	return len(shapes) > 0 && !everyShape(shapes, func(f shape.Flags) bool { return f.HideContextBar })
}

func (a *App) ShowRotateHandles() bool {
	if !a.IsInAny("select.idle", "select.hoveringSelectionHandle", "select.pointingRotateHandle", "select.pointingResizeHandle") {
		return false
	}
	shapes := a.SelectedShapes()
	return len(shapes) > 0 && !anyShape(shapes, func(f shape.Flags) bool { return f.HideRotateHandle })
}

func (a *App) ShowResizeHandles() bool {
	if !a.IsInAny(
		"select.idle",
		"select.hoveringSelectionHandle",
		"select.pointingShape",
		"select.pointingSelectedShape",
		"select.pointingRotateHandle",
		"select.pointingResizeHandle",
	) {
		return false
	}
	shapes := a.SelectedShapes()
	return len(shapes) == 1 && !everyShape(shapes, func(f shape.Flags) bool { return f.HideResizeHandles })
}
