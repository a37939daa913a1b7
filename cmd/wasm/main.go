//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/engine"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

var app *engine.App

func main() {
	var err error
	app, err = engine.New()
	if err != nil {
		panic(err)
	}

	wb := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	wb.Set("apply", js.FuncOf(apply))
	wb.Set("loadDocument", js.FuncOf(loadDocument))
	wb.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	wb.Set("onPersist", js.FuncOf(onPersist))

	// --- Queries (frontend ← engine) ---
	wb.Set("render", js.FuncOf(render))
	wb.Set("hitTest", js.FuncOf(hitTest))
	wb.Set("getDocument", js.FuncOf(getDocument))
	wb.Set("getSelection", js.FuncOf(getSelection))
	wb.Set("getState", js.FuncOf(getState))
	wb.Set("canUndo", js.FuncOf(canUndo))
	wb.Set("canRedo", js.FuncOf(canRedo))

	js.Global().Set("whiteboard", wb)
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

// apply takes one JSON command, as a string.
func apply(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing command JSON"})
	}
	c, err := engine.ParseCommand([]byte(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	if err := app.Apply(c); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	if err := app.Load([]byte(args[0].String())); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	if err := app.LoadDocument(document.NewSampleDocument()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// onPersist registers a JS callback run after every history entry. It
// returns a function that removes the callback.
func onPersist(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return nil
	}
	fn := args[0]
	unsubscribe := app.Subscribe(engine.EventPersist, func(*engine.App, any) { fn.Invoke() })
	var release js.Func
	release = js.FuncOf(func(js.Value, []js.Value) any {
		unsubscribe()
		release.Release()
		return nil
	})
	return release
}

func render(this js.Value, args []js.Value) any {
	frame, err := engine.FrameToJSON(app.Render())
	if err != nil {
		return errorResult(err)
	}
	return frame
}

// hitTest takes a screen point and returns the topmost shape id, or "".
func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return ""
	}
	return app.HitTest(geom.V(args[0].Float(), args[1].Float()))
}

func getDocument(this js.Value, args []js.Value) any {
	data, err := json.Marshal(app.Serialize())
	if err != nil {
		return errorResult(err)
	}
	return string(data)
}

func getSelection(this js.Value, args []js.Value) any {
	ids := app.SelectedIDs()
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getState(this js.Value, args []js.Value) any {
	return app.CurrentState()
}

func canUndo(this js.Value, args []js.Value) any { return app.History().CanUndo() }
func canRedo(this js.Value, args []js.Value) any { return app.History().CanRedo() }
