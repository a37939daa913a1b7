package engine

import (
	"fmt"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/shape"
)

// History is a linear undo stack of whole-document snapshots. It starts
// paused; the App resumes it once construction is done.
type History struct {
	app     *App
	stack   []*document.Document
	pointer int
	paused  bool
}

func newHistory(app *App) *History {
	return &History{app: app, paused: true}
}

func (h *History) Pause()         { h.paused = true }
func (h *History) Resume()        { h.paused = false }
func (h *History) IsPaused() bool { return h.paused }
func (h *History) Len() int       { return len(h.stack) }
func (h *History) Pointer() int   { return h.pointer }
func (h *History) CanUndo() bool  { return h.pointer > 0 }
func (h *History) CanRedo() bool  { return h.pointer < len(h.stack)-1 }

// Reset discards the stack and seeds it with the current document.
func (h *History) Reset() {
	h.stack = []*document.Document{h.app.Serialize()}
	h.pointer = 0
	h.Resume()
	h.app.pendingSave = false
	h.app.notify(EventPersist, nil)
}

// Persist pushes the current document, dropping any redo branch.
func (h *History) Persist() {
	if h.paused {
		return
	}
	h.stack = append(h.stack[:min(h.pointer+1, len(h.stack))], h.app.Serialize())
	h.pointer = len(h.stack) - 1
	h.app.pendingSave = false
	h.app.notify(EventPersist, nil)
}

// idle reports whether the selected tool is at rest. Undo mid-gesture is
// ignored.
func (h *History) idle() bool {
	tool := h.app.root.Current()
	if tool == nil {
		return true
	}
	cur := tool.Current()
	return cur == nil || cur.ID() == "idle"
}

func (h *History) Undo() {
	if h.paused || !h.idle() || h.pointer <= 0 {
		return
	}
	h.pointer--
	h.Deserialize(h.stack[h.pointer])
	h.app.notify(EventPersist, nil)
}

func (h *History) Redo() {
	if h.paused || !h.idle() || h.pointer >= len(h.stack)-1 {
		return
	}
	h.pointer++
	h.Deserialize(h.stack[h.pointer])
	h.app.notify(EventPersist, nil)
}

// Deserialize reconciles the live document with snap. Shapes whose nonce
// matches are left alone; changed shapes are updated in place; missing
// ones are removed and new ones created. Errors are logged and leave the
// document partly reconciled.
func (h *History) Deserialize(snap *document.Document) {
	wasPaused := h.paused
	h.Pause()
	defer func() {
		if !wasPaused {
			h.Resume()
		}
	}()
	h.app.store.Transaction(func() {
		if err := h.reconcile(snap); err != nil {
			h.app.log.Warn("history: could not restore snapshot", "error", err)
		}
	})
}

func (h *History) reconcile(snap *document.Document) error {
	a := h.app
	keep := make(map[string]bool, len(snap.Pages))
	for _, sp := range snap.Pages {
		keep[sp.ID] = true
		page, ok := a.pages[sp.ID]
		if !ok {
			p, err := a.buildPage(sp)
			if err != nil {
				return err
			}
			a.addPage(p)
			continue
		}
		page.name = sp.Name
		page.bindings = cloneBindings(sp.Bindings)

		wanted := make(map[string]bool, len(sp.Shapes))
		for _, sm := range sp.Shapes {
			wanted[sm.ID] = true
		}
		var gone []*shape.Shape
		for _, s := range page.shapes {
			if !wanted[s.ID()] {
				gone = append(gone, s)
			}
		}
		page.RemoveShapes(gone...)

		order := make([]*shape.Shape, 0, len(sp.Shapes))
		for _, sm := range sp.Shapes {
			if s := page.Shape(sm.ID); s != nil {
				if string(s.Type()) != sm.Type {
					next, err := a.registry.FromModel(sm)
					if err != nil {
						return fmt.Errorf("page %s: %w", sp.ID, err)
					}
					page.Replace(s, next)
					s = next
				} else if s.Nonce() != sm.Nonce {
					s.Apply(sm, true)
				}
				order = append(order, s)
				continue
			}
			s, err := a.registry.FromModel(sm)
			if err != nil {
				return fmt.Errorf("page %s: %w", sp.ID, err)
			}
			page.AddShapes(s)
			order = append(order, s)
		}
		page.reorder(order)
		page.nonce = sp.Nonce
	}
	for _, p := range a.Pages() {
		if !keep[p.ID()] {
			a.removePage(p.ID())
		}
	}
	a.assets = cloneAssets(snap.Assets)
	if err := a.SetCurrentPage(snap.CurrentPageID); err != nil && len(a.pageOrder) > 0 {
		a.currentPageID = a.pageOrder[0]
	}
	a.SetSelectedShapes(snap.SelectedIDs)
	a.SetErasingShapes(nil)
	return nil
}
