package document

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// DefaultPageID is the page every new board starts with.
const DefaultPageID = "page"

// Document is the serialized form of a whole board. History snapshots and
// stored snapshots both use it.
type Document struct {
	CurrentPageID string   `json:"currentPageId"`
	SelectedIDs   []string `json:"selectedIds"`
	Pages         []Page   `json:"pages"`
	Assets        []Asset  `json:"assets,omitempty"`
}

type Page struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Shapes   []ShapeModel `json:"shapes"`
	Bindings []Binding    `json:"bindings"`
	Nonce    int64        `json:"nonce,omitempty"`
}

type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// Handle is an editable point of a line or polyline, relative to the
// shape's point.
type Handle struct {
	ID        string   `json:"id"`
	Point     geom.Vec `json:"point"`
	CanBind   bool     `json:"canBind,omitempty"`
	BindingID string   `json:"bindingId,omitempty"`
}

// ShapeModel carries the props of every shape kind. Fields a kind does not
// use stay zero and are left out of the JSON.
type ShapeModel struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	ParentID string   `json:"parentId"`
	Name     string   `json:"name,omitempty"`
	Point    geom.Vec `json:"point"`
	Scale    geom.Vec `json:"scale,omitzero"`
	Rotation float64  `json:"rotation,omitempty"`

	IsLocked            bool `json:"isLocked,omitempty"`
	IsHidden            bool `json:"isHidden,omitempty"`
	IsAspectRatioLocked bool `json:"isAspectRatioLocked,omitempty"`
	IsSizeLocked        bool `json:"isSizeLocked,omitempty"`

	Style

	Size       geom.Vec   `json:"size,omitzero"`
	Radius     float64    `json:"radius,omitempty"`
	Points     []geom.Vec `json:"points,omitempty"`
	IsComplete bool       `json:"isComplete,omitempty"`
	Handles    []Handle   `json:"handles,omitempty"`
	Sides      int        `json:"sides,omitempty"`
	Ratio      float64    `json:"ratio,omitempty"`
	IsFlippedY bool       `json:"isFlippedY,omitempty"`
	AssetID    string     `json:"assetId,omitempty"`
	Clipping   Clip       `json:"clipping,omitempty"`
	ObjectFit  string     `json:"objectFit,omitempty"`
	Text       string     `json:"text,omitempty"`
	FontSize   float64    `json:"fontSize,omitempty"`
	LineHeight float64    `json:"lineHeight,omitempty"`
	Padding    float64    `json:"padding,omitempty"`
	Label      string     `json:"label,omitempty"`

	Nonce int64 `json:"nonce"`
}

// Clone returns a copy that shares no slices with m.
func (m ShapeModel) Clone() ShapeModel {
	m.Points = slices.Clone(m.Points)
	m.Handles = slices.Clone(m.Handles)
	m.Clipping = slices.Clone(m.Clipping)
	return m
}

// HandleIndex returns the index of the handle with id, or -1.
func (m ShapeModel) HandleIndex(id string) int {
	return slices.IndexFunc(m.Handles, func(h Handle) bool { return h.ID == id })
}

// HandlePoints returns the handle points in order.
func (m ShapeModel) HandlePoints() []geom.Vec {
	out := make([]geom.Vec, len(m.Handles))
	for i, h := range m.Handles {
		out[i] = h.Point
	}
	return out
}

// Clip is an image crop as top, right, bottom and left insets. On the wire
// it is a single number when all four are equal.
type Clip []float64

// Edges returns t, r, b, l. An empty clip is all zeros.
func (c Clip) Edges() (t, r, b, l float64) {
	switch len(c) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		return c[0], c[0], c[0], c[0]
	}
	var e [4]float64
	copy(e[:], c)
	return e[0], e[1], e[2], e[3]
}

// IsZero reports whether the clip has no inset at all.
func (c Clip) IsZero() bool {
	t, r, b, l := c.Edges()
	return t == 0 && r == 0 && b == 0 && l == 0
}

// Uniform collapses four equal insets into one.
func (c Clip) Uniform() Clip {
	if len(c) > 1 && !slices.ContainsFunc(c, func(v float64) bool { return v != c[0] }) {
		return Clip{c[0]}
	}
	return c
}

func (c Clip) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]float64(c))
}

func (c *Clip) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n == 0 {
			*c = nil
		} else {
			*c = Clip{n}
		}
		return nil
	}
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("clipping must be a number or an array: %w", err)
	}
	*c = arr
	return nil
}

type Asset struct {
	ID   string   `json:"id"`
	Type string   `json:"type"`
	Src  string   `json:"src"`
	Size geom.Vec `json:"size"`
}

// Binding relates two shapes. The editor stores bindings but does not
// interpret them.
type Binding struct {
	ID       string   `json:"id"`
	FromID   string   `json:"fromId"`
	ToID     string   `json:"toId"`
	HandleID string   `json:"handleId"`
	Point    geom.Vec `json:"point"`
	Distance float64  `json:"distance"`
}

// Clone deep-copies a page.
func (p Page) Clone() Page {
	shapes := make([]ShapeModel, len(p.Shapes))
	for i, s := range p.Shapes {
		shapes[i] = s.Clone()
	}
	p.Shapes = shapes
	p.Bindings = slices.Clone(p.Bindings)
	return p
}

// Clone deep-copies a document.
func (d *Document) Clone() *Document {
	out := &Document{
		CurrentPageID: d.CurrentPageID,
		SelectedIDs:   slices.Clone(d.SelectedIDs),
		Assets:        slices.Clone(d.Assets),
		Pages:         make([]Page, len(d.Pages)),
	}
	for i, p := range d.Pages {
		out.Pages[i] = p.Clone()
	}
	return out
}

// Page looks up a page by id.
func (d *Document) Page(id string) (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].ID == id {
			return &d.Pages[i], true
		}
	}
	return nil, false
}

// NewEmptyDocument creates a document with one empty page.
func NewEmptyDocument() *Document {
	return &Document{
		CurrentPageID: DefaultPageID,
		SelectedIDs:   []string{},
		Pages: []Page{
			{
				ID:       DefaultPageID,
				Name:     "Page",
				Shapes:   []ShapeModel{},
				Bindings: []Binding{},
			},
		},
	}
}
