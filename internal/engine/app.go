// Package engine is the whiteboard core: the App owns pages of shapes, the
// selection, the camera, undo history and the tool state machine that turns
// pointer and keyboard events into document edits.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
	"github.com/inamate/inamate/whiteboard/internal/observe"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrShapeNotFound  = errors.New("shape not found")
	ErrUnknownCommand = errors.New("unknown command")
)

// Store keys marked dirty by App mutators.
const (
	KeyShapes    = "shapes"
	KeyPages     = "pages"
	KeySelection = "selection"
	KeyCamera    = "camera"
	KeyTool      = "tool"
	KeyBrush     = "brush"
	KeyEditing   = "editing"
	KeyHovered   = "hovered"
	KeyErasing   = "erasing"
	KeyAssets    = "assets"
	KeySettings  = "settings"
)

// ToolFunc builds a tool's state tree for an App.
type ToolFunc func(a *App) *fsm.Node[*Event]

type Option func(*App)

func WithRegistry(r *shape.Registry) Option { return func(a *App) { a.registry = r } }
func WithSettings(s Settings) Option        { return func(a *App) { a.settings = s } }
func WithLogger(l *slog.Logger) Option      { return func(a *App) { a.log = l } }

// WithDocument loads doc instead of an empty page.
func WithDocument(doc *document.Document) Option { return func(a *App) { a.initial = doc } }

// WithTools registers extra tools after the built-in ones. A tool with a
// built-in id replaces it.
func WithTools(tools ...ToolFunc) Option {
	return func(a *App) { a.extraTools = append(a.extraTools, tools...) }
}

// App is one open board. It is not safe for concurrent use; a single
// goroutine owns it.
type App struct {
	id       string
	log      *slog.Logger
	registry *shape.Registry
	settings Settings
	store    *observe.Store
	root     *fsm.Node[*Event]
	history  *History
	inputs   *Inputs
	viewport *Viewport
	api      *API

	pages         map[string]*Page
	pageOrder     []string
	currentPageID string
	assets        []document.Asset

	selectedIDs       []string
	selectionRotation float64
	hoveredID         string
	editingID         string
	erasingIDs        []string
	brush             *geom.Bounds

	subs    []subscription
	nextSub int

	pendingSave bool
	started     bool

	initial    *document.Document
	extraTools []ToolFunc
}

// New creates an App with the built-in tools, in the select tool.
func New(opts ...Option) (*App, error) {
	a := &App{
		id:       uuid.NewString(),
		log:      slog.Default(),
		registry: shape.DefaultRegistry(),
		settings: DefaultSettings(),
		store:    observe.New(),
		inputs:   newInputs(),
		pages:    make(map[string]*Page),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("app", a.id)
	a.history = newHistory(a)
	a.viewport = newViewport(func() { a.store.MarkDirty(KeyCamera) })
	a.api = &API{app: a}

	a.root = fsm.NewNode("app", "select", fsm.Behavior[*Event]{
		Transitioned: a.onToolTransition,
		On: map[fsm.Kind]func(*Event){
			fsm.Wheel:       a.onWheel,
			fsm.PointerDown: a.onPointerDown,
			fsm.PointerUp:   a.onPointerUp,
			fsm.PointerMove: a.onPointerMove,
			fsm.KeyDown:     a.onKeyDown,
			fsm.KeyUp:       a.onKeyUp,
			fsm.PinchStart:  a.onPinchStart,
			fsm.Pinch:       a.onPinch,
			fsm.PinchEnd:    a.onPinchEnd,
		},
	})
	a.root.SetBatch(a.store.Transaction)
	for _, tool := range append(builtinTools(), a.extraTools...) {
		a.root.Add(tool(a))
	}

	doc := a.initial
	if doc == nil {
		doc = document.NewEmptyDocument()
	}
	if err := a.loadPages(doc); err != nil {
		return nil, err
	}

	a.root.Start(nil)
	a.started = true
	a.history.Reset()
	a.notify(EventMount, nil)
	return a, nil
}

func builtinTools() []ToolFunc {
	return []ToolFunc{
		selectTool,
		moveTool,
		boxTool(shape.TypeBox),
		boxTool(shape.TypeEllipse),
		boxTool(shape.TypePolygon),
		boxTool(shape.TypeStar),
		dotTool,
		drawTool,
		lineTool(shape.TypeLine),
		lineTool(shape.TypePolyline),
		eraseTool,
		textTool,
	}
}

func (a *App) ID() string                { return a.id }
func (a *App) Logger() *slog.Logger      { return a.log }
func (a *App) Registry() *shape.Registry { return a.registry }
func (a *App) History() *History         { return a.history }
func (a *App) Inputs() *Inputs           { return a.inputs }
func (a *App) Viewport() *Viewport       { return a.viewport }
func (a *App) API() *API                 { return a.api }
func (a *App) Settings() Settings        { return a.settings }

// SetSettings replaces the settings.
func (a *App) SetSettings(s Settings) {
	a.settings = s
	a.store.MarkDirty(KeySettings)
}

// Observe registers fn to run once per logical operation with the store
// keys it changed.
func (a *App) Observe(fn func(observe.Change)) (cancel func()) { return a.store.Observe(fn) }

/* --------------------- Tools ---------------------- */

// SelectedTool is the id of the active tool.
func (a *App) SelectedTool() string {
	if t := a.root.Current(); t != nil {
		return t.ID()
	}
	return ""
}

// CurrentState is the dotted path of active states, e.g. "select.idle".
func (a *App) CurrentState() string { return a.root.ActivePath() }

func (a *App) tool() *fsm.Node[*Event] { return a.root.Current() }

// Transition switches tools. It panics if id is not a registered tool.
func (a *App) Transition(id string, data any) { a.root.Transition(id, data) }

// TryTransition switches tools and reports unknown ids as errors.
func (a *App) TryTransition(id string, data any) error { return a.root.TryTransition(id, data) }

func (a *App) IsIn(path string) bool        { return a.root.IsIn(path) }
func (a *App) IsInAny(paths ...string) bool { return a.root.IsInAny(paths...) }
func (a *App) ToolIDs() []string {
	var ids []string
	for _, c := range a.root.Children() {
		ids = append(ids, c.ID())
	}
	return ids
}

func (a *App) onToolTransition(t fsm.Transition) {
	if a.started && t.From != "" && t.From != t.To {
		a.settings.IsToolLocked = false
	}
	a.store.MarkDirty(KeyTool)
}

/* -------------------- Document -------------------- */

// Serialize snapshots the whole board. Dirty shapes bump their nonce.
func (a *App) Serialize() *document.Document {
	doc := &document.Document{
		CurrentPageID: a.currentPageID,
		SelectedIDs:   slices.Clone(a.selectedIDs),
		Pages:         make([]document.Page, 0, len(a.pageOrder)),
		Assets:        a.usedAssets(),
	}
	if doc.SelectedIDs == nil {
		doc.SelectedIDs = []string{}
	}
	for _, id := range a.pageOrder {
		doc.Pages = append(doc.Pages, a.pages[id].Serialized())
	}
	return doc
}

func (a *App) loadPages(doc *document.Document) error {
	for _, dp := range doc.Pages {
		p, err := a.buildPage(dp)
		if err != nil {
			return err
		}
		a.addPage(p)
	}
	if len(a.pageOrder) == 0 {
		a.addPage(newPage(document.DefaultPageID, "Page", a.onShapeChange))
	}
	a.assets = cloneAssets(doc.Assets)
	a.currentPageID = a.pageOrder[0]
	if _, ok := a.pages[doc.CurrentPageID]; ok {
		a.currentPageID = doc.CurrentPageID
	}
	a.SetSelectedShapes(doc.SelectedIDs)
	return nil
}

func (a *App) buildPage(dp document.Page) (*Page, error) {
	p := newPage(dp.ID, dp.Name, a.onShapeChange)
	shapes := make([]*shape.Shape, 0, len(dp.Shapes))
	for _, sm := range dp.Shapes {
		s, err := a.registry.FromModel(sm)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", dp.ID, err)
		}
		shapes = append(shapes, s)
	}
	p.AddShapes(shapes...)
	p.bindings = cloneBindings(dp.Bindings)
	p.nonce = dp.Nonce
	return p, nil
}

// LoadDocument replaces the board with doc and starts a fresh history.
func (a *App) LoadDocument(doc *document.Document) error {
	for _, dp := range doc.Pages {
		for _, sm := range dp.Shapes {
			if _, err := a.registry.Lookup(sm.Type); err != nil {
				return fmt.Errorf("page %s: %w", dp.ID, err)
			}
		}
	}
	a.root.Current().Transition("idle", nil)
	a.history.Deserialize(doc)
	a.history.Reset()
	a.notify(EventLoad, nil)
	return nil
}

// Load decodes a JSON document and loads it.
func (a *App) Load(data []byte) error {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return a.LoadDocument(&doc)
}

// Save asks subscribers to store the current document.
func (a *App) Save() { a.notify(EventSave, a.Serialize()) }

// SaveAs asks subscribers to store the current document under a new name.
func (a *App) SaveAs() { a.notify(EventSaveAs, a.Serialize()) }

// DroppedFile is a file dropped on the canvas.
type DroppedFile struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Src  string   `json:"src"`
	Size geom.Vec `json:"size,omitzero"`
}

// DropInfo is sent with EventDropFiles.
type DropInfo struct {
	Files []DroppedFile
	Point geom.Vec
}

// Drop reports files dropped at a screen point.
func (a *App) Drop(files []DroppedFile, screen geom.Vec) {
	a.notify(EventDropFiles, DropInfo{Files: files, Point: a.viewport.PagePoint(screen)})
}

func (a *App) Persist() { a.history.Persist() }
func (a *App) Undo()    { a.history.Undo() }
func (a *App) Redo()    { a.history.Redo() }

// FlushSave persists edits made outside an explicit Persist, such as
// direct shape updates. Hosts call it after each batch of events. Nothing
// is saved while a gesture is in progress.
func (a *App) FlushSave() {
	if a.pendingSave && !a.history.IsPaused() && a.history.idle() {
		a.Persist()
	}
}

func (a *App) onShapeChange(*shape.Shape) {
	a.store.MarkDirty(KeyShapes)
	if !a.history.IsPaused() {
		a.pendingSave = true
	}
}

// WrapUpdate runs fn with history paused and records one entry after.
func (a *App) WrapUpdate(fn func()) {
	a.history.Pause()
	a.store.Transaction(fn)
	a.history.Resume()
	a.Persist()
}

/* ---------------------- Pages --------------------- */

// Pages returns the pages in order.
func (a *App) Pages() []*Page {
	out := make([]*Page, len(a.pageOrder))
	for i, id := range a.pageOrder {
		out[i] = a.pages[id]
	}
	return out
}

func (a *App) CurrentPage() *Page { return a.pages[a.currentPageID] }

func (a *App) Page(id string) (*Page, error) {
	p, ok := a.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return p, nil
}

func (a *App) SetCurrentPage(id string) error {
	if _, ok := a.pages[id]; !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if a.currentPageID != id {
		a.currentPageID = id
		a.SetSelectedShapes(nil)
	}
	a.store.MarkDirty(KeyPages)
	return nil
}

func (a *App) addPage(p *Page) {
	if _, exists := a.pages[p.id]; !exists {
		a.pageOrder = append(a.pageOrder, p.id)
	}
	a.pages[p.id] = p
	a.store.MarkDirty(KeyPages)
}

func (a *App) removePage(id string) {
	if _, ok := a.pages[id]; !ok {
		return
	}
	delete(a.pages, id)
	a.pageOrder = slices.DeleteFunc(a.pageOrder, func(p string) bool { return p == id })
	a.store.MarkDirty(KeyPages)
}

// AddPages adds pages from their document form.
func (a *App) AddPages(pages ...document.Page) error {
	built := make([]*Page, 0, len(pages))
	for _, dp := range pages {
		p, err := a.buildPage(dp)
		if err != nil {
			return err
		}
		built = append(built, p)
	}
	a.store.Transaction(func() {
		for _, p := range built {
			a.addPage(p)
		}
	})
	a.Persist()
	return nil
}

// RemovePages removes pages. The last page is never removed.
func (a *App) RemovePages(ids ...string) {
	a.store.Transaction(func() {
		for _, id := range ids {
			if len(a.pageOrder) <= 1 {
				break
			}
			a.removePage(id)
		}
		if _, ok := a.pages[a.currentPageID]; !ok {
			a.currentPageID = a.pageOrder[0]
			a.SetSelectedShapes(nil)
		}
	})
	a.Persist()
}

/* ------------------ Subscriptions ----------------- */

// SubscriptionEvent names a lifecycle notification.
type SubscriptionEvent string

const (
	EventPersist           SubscriptionEvent = "persist"
	EventSave              SubscriptionEvent = "save"
	EventSaveAs            SubscriptionEvent = "saveAs"
	EventCreateShapes      SubscriptionEvent = "create-shapes"
	EventDeleteShapes      SubscriptionEvent = "delete-shapes"
	EventCreateAssets      SubscriptionEvent = "create-assets"
	EventDeleteAssets      SubscriptionEvent = "delete-assets"
	EventDropFiles         SubscriptionEvent = "drop-files"
	EventMount             SubscriptionEvent = "mount"
	EventLoad              SubscriptionEvent = "load"
	EventCanvasDoubleClick SubscriptionEvent = "canvas-dbclick"
)

// Callback receives the App and an event-specific payload.
type Callback func(a *App, info any)

type subscription struct {
	id    int
	event SubscriptionEvent
	fn    Callback
}

// Subscribe registers fn for event and returns a function that removes it.
func (a *App) Subscribe(event SubscriptionEvent, fn Callback) (unsubscribe func()) {
	a.nextSub++
	id := a.nextSub
	a.subs = append(a.subs, subscription{id: id, event: event, fn: fn})
	return func() {
		a.subs = slices.DeleteFunc(a.subs, func(s subscription) bool { return s.id == id })
	}
}

func (a *App) notify(event SubscriptionEvent, info any) {
	for _, s := range slices.Clone(a.subs) {
		if s.event == event {
			s.fn(a, info)
		}
	}
}
