package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
	"github.com/inamate/inamate/whiteboard/internal/typeid"
)

// DuplicateOffset is how far Duplicate moves the copies.
var DuplicateOffset = geom.V(GridSize*2, GridSize*2)

// Shape finds a shape on the current page.
func (a *App) Shape(id string) (*shape.Shape, error) {
	s := a.CurrentPage().Shape(id)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	return s, nil
}

// Shapes returns the current page's shapes in paint order.
func (a *App) Shapes() []*shape.Shape { return a.CurrentPage().Shapes() }

func (a *App) shapesByID(ids []string) []*shape.Shape {
	page := a.CurrentPage()
	out := make([]*shape.Shape, 0, len(ids))
	for _, id := range ids {
		if s := page.Shape(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// targets resolves ids, falling back to the selection when none are given.
func (a *App) targets(ids []string) []*shape.Shape {
	if len(ids) == 0 {
		return a.AllSelectedShapes()
	}
	return a.shapesByID(ids)
}

// NewShape builds a detached shape from m over its kind defaults. An empty
// id gets a fresh one. A parent that is not a known page becomes the
// current page.
func (a *App) NewShape(m document.ShapeModel) (*shape.Shape, error) {
	if m.ID == "" {
		m.ID = typeid.NewShapeID()
	}
	if _, ok := a.pages[m.ParentID]; !ok {
		m.ParentID = a.currentPageID
	}
	return a.registry.New(m.Type, m.ID, func(p *document.ShapeModel) { *p = m.Clone() })
}

// CreateShapes builds shapes from models, adds them to the current page and
// records one history entry.
func (a *App) CreateShapes(models ...document.ShapeModel) ([]*shape.Shape, error) {
	shapes := make([]*shape.Shape, 0, len(models))
	for _, m := range models {
		s, err := a.NewShape(m)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	a.AddShapes(shapes...)
	a.notify(EventCreateShapes, shapes)
	a.Persist()
	return shapes, nil
}

// AddShapes puts existing shapes on the current page without persisting.
func (a *App) AddShapes(shapes ...*shape.Shape) {
	if len(shapes) == 0 {
		return
	}
	a.store.Transaction(func() { a.CurrentPage().AddShapes(shapes...) })
}

// UpdateShapes replaces the props of existing shapes. Nothing changes if
// any id is unknown.
func (a *App) UpdateShapes(models ...document.ShapeModel) error {
	shapes := make([]*shape.Shape, len(models))
	for i, m := range models {
		s, err := a.Shape(m.ID)
		if err != nil {
			return err
		}
		shapes[i] = s
	}
	a.store.Transaction(func() {
		for i, s := range shapes {
			s.Apply(models[i], false)
		}
	})
	a.Persist()
	return nil
}

// PatchShapes merges partial JSON props over the current props of each
// shape. Every patch must carry an id.
func (a *App) PatchShapes(patches ...json.RawMessage) error {
	next := make([]document.ShapeModel, 0, len(patches))
	for _, raw := range patches {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("decode patch: %w", err)
		}
		if head.ID == "" {
			return errors.New("patch without id")
		}
		s, err := a.Shape(head.ID)
		if err != nil {
			return err
		}
		m := s.Props()
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decode patch %s: %w", head.ID, err)
		}
		next = append(next, m)
	}
	return a.UpdateShapes(next...)
}

// DeleteShapes removes shapes from the current page and from every
// interaction set that names them.
func (a *App) DeleteShapes(ids ...string) {
	shapes := a.shapesByID(ids)
	if len(shapes) == 0 {
		return
	}
	gone := make(map[string]bool, len(shapes))
	for _, s := range shapes {
		gone[s.ID()] = true
	}
	a.store.Transaction(func() {
		a.CurrentPage().RemoveShapes(shapes...)
		a.SetSelectedShapes(slices.DeleteFunc(slices.Clone(a.selectedIDs), func(id string) bool { return gone[id] }))
		a.SetErasingShapes(slices.DeleteFunc(slices.Clone(a.erasingIDs), func(id string) bool { return gone[id] }))
		if gone[a.hoveredID] {
			a.SetHoveredShape("")
		}
		if gone[a.editingID] {
			a.SetEditingShape("")
		}
	})
	a.notify(EventDeleteShapes, shapes)
	a.Persist()
}

/* -------------------- Arrangement ------------------- */

func (a *App) arrange(ids []string, fn func(p *Page, shapes []*shape.Shape)) {
	shapes := a.targets(ids)
	if len(shapes) == 0 {
		return
	}
	a.store.Transaction(func() { fn(a.CurrentPage(), shapes) })
	a.Persist()
}

func (a *App) BringForward(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.BringForward(s...) })
}

func (a *App) SendBackward(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.SendBackward(s...) })
}

func (a *App) BringToFront(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.BringToFront(s...) })
}

func (a *App) SendToBack(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.SendToBack(s...) })
}

func (a *App) FlipHorizontal(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.Flip(s, true) })
}

func (a *App) FlipVertical(ids ...string) {
	a.arrange(ids, func(p *Page, s []*shape.Shape) { p.Flip(s, false) })
}

// AlignType names an edge or center line to align shapes on.
type AlignType string

const (
	AlignTop              AlignType = "top"
	AlignCenterVertical   AlignType = "centerVertical"
	AlignBottom           AlignType = "bottom"
	AlignLeft             AlignType = "left"
	AlignCenterHorizontal AlignType = "centerHorizontal"
	AlignRight            AlignType = "right"
)

// DistributeType names the axis to distribute shapes along.
type DistributeType string

const (
	DistributeHorizontal DistributeType = "horizontal"
	DistributeVertical   DistributeType = "vertical"
)

// Align lines up two or more unlocked shapes against their common bounds.
func (a *App) Align(t AlignType, ids ...string) error {
	shapes := unlocked(a.targets(ids))
	if len(shapes) < 2 {
		return nil
	}
	bs := make([]geom.Bounds, len(shapes))
	for i, s := range shapes {
		bs[i] = s.Bounds()
	}
	common := geom.CommonBounds(bs)
	c := common.Center()
	deltas := make([]geom.Vec, len(shapes))
	for i, b := range bs {
		switch t {
		case AlignTop:
			deltas[i] = geom.V(0, common.MinY-b.MinY)
		case AlignCenterVertical:
			deltas[i] = geom.V(0, c.Y-b.Center().Y)
		case AlignBottom:
			deltas[i] = geom.V(0, common.MaxY-b.MaxY)
		case AlignLeft:
			deltas[i] = geom.V(common.MinX-b.MinX, 0)
		case AlignCenterHorizontal:
			deltas[i] = geom.V(c.X-b.Center().X, 0)
		case AlignRight:
			deltas[i] = geom.V(common.MaxX-b.MaxX, 0)
		default:
			return fmt.Errorf("unknown align type %q", t)
		}
	}
	a.store.Transaction(func() {
		for i, s := range shapes {
			moveBy(s, deltas[i])
		}
	})
	a.Persist()
	return nil
}

// Distribute spaces unlocked shapes evenly along an axis.
func (a *App) Distribute(t DistributeType, ids ...string) error {
	if t != DistributeHorizontal && t != DistributeVertical {
		return fmt.Errorf("unknown distribute type %q", t)
	}
	shapes := unlocked(a.targets(ids))
	items := make([]geom.DistributeItem, len(shapes))
	for i, s := range shapes {
		items[i] = geom.DistributeItem{ID: s.ID(), Bounds: s.Bounds(), Center: s.Center()}
	}
	moves := geom.Distributions(items, t == DistributeHorizontal)
	if len(moves) == 0 {
		return nil
	}
	page := a.CurrentPage()
	a.store.Transaction(func() {
		for _, d := range moves {
			if s := page.Shape(d.ID); s != nil {
				moveBy(s, d.Next.Sub(d.Prev))
			}
		}
	})
	a.Persist()
	return nil
}

func moveBy(s *shape.Shape, d geom.Vec) {
	if d.X == 0 && d.Y == 0 {
		return
	}
	s.Update(func(m *document.ShapeModel) { m.Point = m.Point.Add(d) })
}

func unlocked(shapes []*shape.Shape) []*shape.Shape {
	return slices.DeleteFunc(slices.Clone(shapes), (*shape.Shape).IsLocked)
}

// CloneShapes copies shapes with new ids, moved by offset, and selects the
// copies.
func (a *App) CloneShapes(offset geom.Vec, ids ...string) []*shape.Shape {
	src := a.targets(ids)
	if len(src) == 0 {
		return nil
	}
	clones := make([]*shape.Shape, len(src))
	for i, s := range src {
		c := s.Clone(typeid.NewShapeID())
		c.Update(func(m *document.ShapeModel) {
			m.Point = m.Point.Add(offset)
			m.IsLocked = false
		})
		clones[i] = c
	}
	a.store.Transaction(func() {
		a.AddShapes(clones...)
		a.SetSelectedShapes(shapeIDs(clones))
	})
	a.notify(EventCreateShapes, clones)
	a.Persist()
	return clones
}

// Duplicate clones shapes by DuplicateOffset.
func (a *App) Duplicate(ids ...string) []*shape.Shape { return a.CloneShapes(DuplicateOffset, ids...) }

func shapeIDs(shapes []*shape.Shape) []string {
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID()
	}
	return ids
}

/* ---------------------- Assets ---------------------- */

// Assets returns every known asset.
func (a *App) Assets() []document.Asset { return cloneAssets(a.assets) }

func (a *App) Asset(id string) (document.Asset, bool) {
	i := slices.IndexFunc(a.assets, func(x document.Asset) bool { return x.ID == id })
	if i < 0 {
		return document.Asset{}, false
	}
	return a.assets[i], true
}

// AddAssets upserts assets by id.
func (a *App) AddAssets(assets ...document.Asset) {
	for _, as := range assets {
		i := slices.IndexFunc(a.assets, func(x document.Asset) bool { return x.ID == as.ID })
		if i >= 0 {
			a.assets[i] = as
		} else {
			a.assets = append(a.assets, as)
		}
	}
	a.store.MarkDirty(KeyAssets)
}

// CreateAssets adds assets, tells subscribers and records history.
func (a *App) CreateAssets(assets ...document.Asset) {
	if len(assets) == 0 {
		return
	}
	a.AddAssets(assets...)
	a.notify(EventCreateAssets, assets)
	a.Persist()
}

func (a *App) RemoveAssets(ids ...string) {
	var removed []document.Asset
	a.assets = slices.DeleteFunc(a.assets, func(x document.Asset) bool {
		if slices.Contains(ids, x.ID) {
			removed = append(removed, x)
			return true
		}
		return false
	})
	if len(removed) == 0 {
		return
	}
	a.store.MarkDirty(KeyAssets)
	a.notify(EventDeleteAssets, removed)
	a.Persist()
}

// RemoveUnusedAssets drops assets no shape on any page refers to.
func (a *App) RemoveUnusedAssets() {
	used := a.usedAssetIDs()
	var unused []string
	for _, as := range a.assets {
		if !used[as.ID] {
			unused = append(unused, as.ID)
		}
	}
	a.RemoveAssets(unused...)
}

func (a *App) usedAssetIDs() map[string]bool {
	used := make(map[string]bool)
	for _, p := range a.pages {
		for _, s := range p.shapes {
			if id := s.Props().AssetID; id != "" {
				used[id] = true
			}
		}
	}
	return used
}

func (a *App) usedAssets() []document.Asset {
	used := a.usedAssetIDs()
	var out []document.Asset
	for _, as := range a.assets {
		if used[as.ID] {
			out = append(out, as)
		}
	}
	return out
}
