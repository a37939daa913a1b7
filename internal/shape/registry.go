package shape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/inamate/whiteboard/internal/document"
)

var ErrUnknownType = errors.New("unknown shape type")

// UnknownTypeError names a type that has no registered Def.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("shape: no kind registered for type %q", e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// Registry maps type names to kinds.
type Registry struct {
	defs  map[Type]*Def
	order []Type
}

func NewRegistry(defs ...*Def) *Registry {
	r := &Registry{defs: make(map[Type]*Def)}
	r.Register(defs...)
	return r
}

// DefaultRegistry registers every built-in kind.
func DefaultRegistry() *Registry {
	return NewRegistry(
		BoxDef(),
		DotDef(),
		DrawDef(),
		EllipseDef(),
		ImageDef(),
		LineDef(),
		PolygonDef(),
		PolylineDef(),
		StarDef(),
		TextDef(),
	)
}

// Register adds or replaces kinds.
func (r *Registry) Register(defs ...*Def) {
	for _, d := range defs {
		if _, ok := r.defs[d.Type]; !ok {
			r.order = append(r.order, d.Type)
		}
		r.defs[d.Type] = d
	}
}

func (r *Registry) Lookup(t string) (*Def, error) {
	d, ok := r.defs[Type(t)]
	if !ok {
		return nil, &UnknownTypeError{Type: t}
	}
	return d, nil
}

// Types lists the registered types in registration order.
func (r *Registry) Types() []Type {
	return append([]Type(nil), r.order...)
}

// Defaults returns the default props of type t.
func (r *Registry) Defaults(t string) (document.ShapeModel, error) {
	d, err := r.Lookup(t)
	if err != nil {
		return document.ShapeModel{}, err
	}
	m := document.ShapeModel{}
	if d.Defaults != nil {
		m = d.Defaults()
	}
	m.Type = string(d.Type)
	return m, nil
}

// New creates a shape of type t from the kind defaults. fn, if not nil,
// sets props before validation.
func (r *Registry) New(t, id string, fn func(m *document.ShapeModel)) (*Shape, error) {
	m, err := r.Defaults(t)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if fn != nil {
		fn(&m)
	}
	d, _ := r.Lookup(t)
	return newShape(d, m), nil
}

// FromModel rebuilds a shape from its serialized form. The result is
// clean: serializing it again does not bump the nonce.
func (r *Registry) FromModel(m document.ShapeModel) (*Shape, error) {
	d, err := r.Lookup(m.Type)
	if err != nil {
		return nil, err
	}
	s := newShape(d, m)
	s.nonce = m.Nonce
	s.cache()
	return s, nil
}

// Decode reads a JSON shape over the defaults of its type, so fields the
// sender left out keep their default values.
func (r *Registry) Decode(data []byte) (document.ShapeModel, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return document.ShapeModel{}, fmt.Errorf("decoding shape: %w", err)
	}
	m, err := r.Defaults(head.Type)
	if err != nil {
		return document.ShapeModel{}, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return document.ShapeModel{}, fmt.Errorf("decoding %s shape: %w", head.Type, err)
	}
	return m, nil
}
