package engine

import (
	"slices"
	"sort"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// Page owns an ordered list of shapes, back to front.
type Page struct {
	id       string
	name     string
	shapes   []*shape.Shape
	byID     map[string]*shape.Shape
	bindings []document.Binding
	nonce    int64

	// changed runs after any shape on the page changes or the list does.
	changed func(*shape.Shape)
}

func newPage(id, name string, changed func(*shape.Shape)) *Page {
	return &Page{id: id, name: name, byID: make(map[string]*shape.Shape), changed: changed}
}

func (p *Page) ID() string                   { return p.id }
func (p *Page) Name() string                 { return p.name }
func (p *Page) Nonce() int64                 { return p.nonce }
func (p *Page) Len() int                     { return len(p.shapes) }
func (p *Page) Shape(id string) *shape.Shape { return p.byID[id] }

// Shapes returns the shapes in paint order.
func (p *Page) Shapes() []*shape.Shape { return slices.Clone(p.shapes) }

func (p *Page) Bindings() []document.Binding { return cloneBindings(p.bindings) }

// UpdateBindings upserts bindings by id.
func (p *Page) UpdateBindings(bs ...document.Binding) {
	for _, b := range bs {
		i := slices.IndexFunc(p.bindings, func(x document.Binding) bool { return x.ID == b.ID })
		if i >= 0 {
			p.bindings[i] = b
		} else {
			p.bindings = append(p.bindings, b)
		}
	}
	p.bump()
}

func (p *Page) bump() {
	p.nonce++
	if p.changed != nil {
		p.changed(nil)
	}
}

// AddShapes appends shapes on top. A shape whose id is already on the page
// is skipped.
func (p *Page) AddShapes(shapes ...*shape.Shape) {
	for _, s := range shapes {
		if _, exists := p.byID[s.ID()]; exists {
			continue
		}
		s.Watch(p.changed)
		p.byID[s.ID()] = s
		p.shapes = append(p.shapes, s)
	}
	p.bump()
}

// RemoveShapes drops shapes and the bindings that reference them.
func (p *Page) RemoveShapes(shapes ...*shape.Shape) {
	if len(shapes) == 0 {
		return
	}
	drop := make(map[string]bool, len(shapes))
	for _, s := range shapes {
		if _, ok := p.byID[s.ID()]; !ok {
			continue
		}
		drop[s.ID()] = true
		s.Watch(nil)
		delete(p.byID, s.ID())
	}
	p.shapes = slices.DeleteFunc(p.shapes, func(s *shape.Shape) bool { return drop[s.ID()] })
	p.bindings = slices.DeleteFunc(p.bindings, func(b document.Binding) bool {
		return drop[b.FromID] || drop[b.ToID]
	})
	p.bump()
}

// Replace swaps old for next at the same depth.
func (p *Page) Replace(old, next *shape.Shape) {
	i := p.indexOf(old)
	if i < 0 {
		return
	}
	old.Watch(nil)
	delete(p.byID, old.ID())
	next.Watch(p.changed)
	p.byID[next.ID()] = next
	p.shapes[i] = next
	p.bump()
}

// reorder sets the paint order. order must hold exactly the page's shapes.
func (p *Page) reorder(order []*shape.Shape) {
	if len(order) == len(p.shapes) {
		p.shapes = order
	}
}

func (p *Page) indexOf(s *shape.Shape) int { return slices.Index(p.shapes, s) }

func (p *Page) set(shapes []*shape.Shape) map[*shape.Shape]bool {
	m := make(map[*shape.Shape]bool, len(shapes))
	for _, s := range shapes {
		if p.byID[s.ID()] == s {
			m[s] = true
		}
	}
	return m
}

// BringForward moves each shape one step up unless the shape above it is
// moving too.
func (p *Page) BringForward(shapes ...*shape.Shape) {
	moving := p.set(shapes)
	idx := p.indices(moving)
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	for _, i := range idx {
		if i == len(p.shapes)-1 || moving[p.shapes[i+1]] {
			continue
		}
		p.shapes[i], p.shapes[i+1] = p.shapes[i+1], p.shapes[i]
	}
	p.bump()
}

// SendBackward moves each shape one step down unless the shape below it is
// moving too.
func (p *Page) SendBackward(shapes ...*shape.Shape) {
	moving := p.set(shapes)
	idx := p.indices(moving)
	sort.Ints(idx)
	for _, i := range idx {
		if i == 0 || moving[p.shapes[i-1]] {
			continue
		}
		p.shapes[i], p.shapes[i-1] = p.shapes[i-1], p.shapes[i]
	}
	p.bump()
}

func (p *Page) BringToFront(shapes ...*shape.Shape) {
	moving := p.set(shapes)
	rest, top := p.split(moving)
	p.shapes = append(rest, top...)
	p.bump()
}

func (p *Page) SendToBack(shapes ...*shape.Shape) {
	moving := p.set(shapes)
	rest, bottom := p.split(moving)
	p.shapes = append(bottom, rest...)
	p.bump()
}

func (p *Page) indices(moving map[*shape.Shape]bool) []int {
	var idx []int
	for i, s := range p.shapes {
		if moving[s] {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *Page) split(moving map[*shape.Shape]bool) (rest, picked []*shape.Shape) {
	for _, s := range p.shapes {
		if moving[s] {
			picked = append(picked, s)
		} else {
			rest = append(rest, s)
		}
	}
	return rest, picked
}

// Flip mirrors shapes across their common bounds.
func (p *Page) Flip(shapes []*shape.Shape, horizontal bool) {
	if len(shapes) == 0 {
		return
	}
	bs := make([]geom.Bounds, len(shapes))
	for i, s := range shapes {
		bs[i] = s.Bounds()
	}
	common := geom.CommonBounds(bs)
	for i, s := range shapes {
		if s.IsLocked() {
			continue
		}
		initial := s.Serialized()
		next := geom.RelativeTransformedBoundingBox(common, common, bs[i], horizontal, !horizontal)
		scale := geom.V(1, 1)
		if s.Flags().CanFlip {
			if horizontal {
				scale = geom.V(-initial.Scale.X, 1)
			} else {
				scale = geom.V(1, -initial.Scale.Y)
			}
		}
		s.OnResizeStart(shape.ResizeStartInfo{IsSingle: len(shapes) == 1})
		s.OnResize(initial, shape.ResizeInfo{
			Bounds:   next,
			Center:   next.Center(),
			Rotation: -initial.Rotation,
			Scale:    scale,
		})
	}
	p.bump()
}

// Serialized is the page's document form.
func (p *Page) Serialized() document.Page {
	out := document.Page{
		ID:       p.id,
		Name:     p.name,
		Shapes:   make([]document.ShapeModel, len(p.shapes)),
		Bindings: cloneBindings(p.bindings),
		Nonce:    p.nonce,
	}
	for i, s := range p.shapes {
		out.Shapes[i] = s.Serialized()
	}
	return out
}

// HitTest returns the topmost visible shape under point.
func (p *Page) HitTest(point geom.Vec) *shape.Shape {
	for i := len(p.shapes) - 1; i >= 0; i-- {
		s := p.shapes[i]
		if !s.IsHidden() && s.HitTestPoint(point) {
			return s
		}
	}
	return nil
}

func cloneBindings(bs []document.Binding) []document.Binding {
	if bs == nil {
		return []document.Binding{}
	}
	return slices.Clone(bs)
}

func cloneAssets(as []document.Asset) []document.Asset {
	return slices.Clone(as)
}
