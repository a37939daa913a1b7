package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
	"github.com/inamate/inamate/whiteboard/internal/typeid"
)

// defaultCloneSize stands in for the size of shapes that have none when
// laying out clones.
const defaultCloneSize = 4

// API is the scripting surface of an App: short calls that combine a
// mutation with the selection, camera and history bookkeeping a UI button
// would do.
type API struct {
	app *App
}

// EditShape switches to select and starts editing id. Locked shapes are
// only selected; kinds that cannot be edited stay idle.
func (api *API) EditShape(id string) {
	a := api.app
	sh := a.CurrentPage().Shape(id)
	if sh == nil || sh.IsLocked() {
		return
	}
	if !a.IsIn("select") {
		a.Transition("select", nil)
	}
	a.SetSelectedShapes([]string{id})
	if sh.Flags().CanEdit {
		a.tool().Transition("editingShape", Data{Info: OnShape(id)})
	}
}

func (api *API) HoverShape(id string) { api.app.SetHoveredShape(id) }

func (api *API) CreateShapes(models ...document.ShapeModel) ([]*shape.Shape, error) {
	return api.app.CreateShapes(models...)
}

func (api *API) UpdateShapes(models ...document.ShapeModel) error {
	return api.app.UpdateShapes(models...)
}

func (api *API) DeleteShapes(ids ...string) { api.app.DeleteShapes(ids...) }

// SelectShapes replaces the selection.
func (api *API) SelectShapes(ids ...string) { api.app.SetSelectedShapes(ids) }

// DeselectShapes removes ids from the selection.
func (api *API) DeselectShapes(ids ...string) {
	a := api.app
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var keep []string
	for _, id := range a.selectedIDs {
		if !drop[id] {
			keep = append(keep, id)
		}
	}
	a.SetSelectedShapes(keep)
}

func (api *API) SelectAll()   { api.app.SelectAll() }
func (api *API) DeselectAll() { api.app.DeselectAll() }
func (api *API) ZoomIn()      { api.app.viewport.ZoomIn() }
func (api *API) ZoomOut()     { api.app.viewport.ZoomOut() }
func (api *API) ResetZoom()   { api.app.viewport.ResetZoom() }
func (api *API) Undo()        { api.app.Undo() }
func (api *API) Redo()        { api.app.Redo() }
func (api *API) Persist()     { api.app.Persist() }

// ZoomToFit frames every shape on the current page.
func (api *API) ZoomToFit() {
	shapes := api.app.CurrentPage().shapes
	if len(shapes) == 0 {
		return
	}
	bs := make([]geom.Bounds, len(shapes))
	for i, s := range shapes {
		bs[i] = s.RotatedBounds()
	}
	api.app.viewport.ZoomToBounds(geom.CommonBounds(bs))
}

// ZoomToSelection frames the selection.
func (api *API) ZoomToSelection() {
	if b, ok := api.app.SelectionBounds(); ok {
		api.app.viewport.ZoomToBounds(b)
	}
}

// CameraToCenter scrolls so the content's center is in the middle of the
// screen, keeping the zoom.
func (api *API) CameraToCenter() {
	a := api.app
	shapes := a.CurrentPage().shapes
	if len(shapes) == 0 {
		return
	}
	bs := make([]geom.Bounds, len(shapes))
	for i, s := range shapes {
		bs[i] = s.RotatedBounds()
	}
	c := geom.CommonBounds(bs).Center()
	view := a.viewport.CurrentView()
	p := c.Neg().Add(geom.V(view.Width/2, view.Height/2))
	a.viewport.Update(&p, nil)
}

func (api *API) ToggleGrid() {
	s := api.app.settings
	s.ShowGrid = !s.ShowGrid
	api.app.SetSettings(s)
}

func (api *API) ToggleToolLock() {
	s := api.app.settings
	s.IsToolLocked = !s.IsToolLocked
	api.app.SetSettings(s)
}

// SetColor sets the drawing color and paints the unlocked selection.
func (api *API) SetColor(color string) {
	a := api.app
	s := a.settings
	s.Color = color
	a.SetSettings(s)
	a.store.Transaction(func() {
		for _, sh := range unlocked(a.AllSelectedShapes()) {
			sh.Update(func(m *document.ShapeModel) {
				m.Fill = color
				m.Stroke = color
			})
		}
	})
	a.Persist()
}

// SetStrokeWidth sets the stroke width for new shapes and the unlocked
// selection.
func (api *API) SetStrokeWidth(w float64) {
	a := api.app
	s := a.settings
	s.StrokeWidth = w
	a.SetSettings(s)
	a.store.Transaction(func() {
		for _, sh := range unlocked(a.AllSelectedShapes()) {
			sh.Update(func(m *document.ShapeModel) { m.StrokeWidth = w })
		}
	})
	a.Persist()
}

// CloneShapes pastes copies of models with their common top left at point,
// along with the assets they use, and selects the copies.
func (api *API) CloneShapes(models []document.ShapeModel, assets []document.Asset, point geom.Vec) ([]*shape.Shape, error) {
	if len(models) == 0 {
		return nil, nil
	}
	bs := make([]geom.Bounds, len(models))
	for i, m := range models {
		size := m.Size
		if size.X == 0 {
			size.X = defaultCloneSize
		}
		if size.Y == 0 {
			size.Y = defaultCloneSize
		}
		bs[i] = geom.NewBounds(m.Point, size)
	}
	common := geom.CommonBounds(bs)
	clones := make([]document.ShapeModel, len(models))
	for i, m := range models {
		c := m.Clone()
		c.ID = typeid.NewShapeID()
		c.ParentID = ""
		c.Nonce = 0
		c.Point = point.Add(m.Point.Sub(common.Min()))
		clones[i] = c
	}
	a := api.app
	a.CreateAssets(assets...)
	shapes, err := a.CreateShapes(clones...)
	if err != nil {
		return nil, err
	}
	a.SetSelectedShapes(shapeIDs(shapes))
	return shapes, nil
}

// ConvertShapes turns shapes into another kind in place, keeping their id,
// position, size, rotation and style.
func (api *API) ConvertShapes(t shape.Type, ids ...string) error {
	a := api.app
	if _, err := a.registry.Lookup(string(t)); err != nil {
		return err
	}
	page := a.CurrentPage()
	src := a.targets(ids)
	for _, old := range src {
		if old.Type() == t {
			continue
		}
		props := old.Props()
		b := old.Bounds()
		next, err := a.registry.New(string(t), old.ID(), func(m *document.ShapeModel) {
			m.ParentID = props.ParentID
			m.Point = b.Min()
			m.Size = b.Size()
			m.Rotation = props.Rotation
			m.Style = props.Style
			m.IsLocked = props.IsLocked
			m.Text = props.Text
			m.Label = props.Label
		})
		if err != nil {
			return err
		}
		page.Replace(old, next)
	}
	a.SetSelectedShapes(a.selectedIDs)
	a.Persist()
	return nil
}
