package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// ErrInvalidCommand is returned when a command lacks a field its type needs.
var ErrInvalidCommand = errors.New("invalid command")

// TargetAuto asks Apply to resolve the event target by hit testing the
// event point.
const TargetAuto TargetType = "auto"

type CommandType string

const (
	CmdPointerDown  CommandType = "pointerDown"
	CmdPointerMove  CommandType = "pointerMove"
	CmdPointerUp    CommandType = "pointerUp"
	CmdPointerEnter CommandType = "pointerEnter"
	CmdPointerLeave CommandType = "pointerLeave"
	CmdDoubleClick  CommandType = "doubleClick"
	CmdKeyDown      CommandType = "keyDown"
	CmdKeyUp        CommandType = "keyUp"
	CmdWheel        CommandType = "wheel"
	CmdPinchStart   CommandType = "pinchStart"
	CmdPinch        CommandType = "pinch"
	CmdPinchEnd     CommandType = "pinchEnd"

	CmdCreateShapes CommandType = "createShapes"
	CmdUpdateShapes CommandType = "updateShapes"
	CmdDeleteShapes CommandType = "deleteShapes"
	CmdSelect       CommandType = "select"
	CmdSelectAll    CommandType = "selectAll"
	CmdDeselectAll  CommandType = "deselectAll"

	CmdUndo    CommandType = "undo"
	CmdRedo    CommandType = "redo"
	CmdPersist CommandType = "persist"

	CmdSetTool   CommandType = "setTool"
	CmdSetCamera CommandType = "setCamera"
	CmdZoomIn    CommandType = "zoomIn"
	CmdZoomOut   CommandType = "zoomOut"
	CmdZoomToFit CommandType = "zoomToFit"
	CmdResetZoom CommandType = "resetZoom"

	CmdBringForward   CommandType = "bringForward"
	CmdSendBackward   CommandType = "sendBackward"
	CmdBringToFront   CommandType = "bringToFront"
	CmdSendToBack     CommandType = "sendToBack"
	CmdFlipHorizontal CommandType = "flipHorizontal"
	CmdFlipVertical   CommandType = "flipVertical"
	CmdAlign          CommandType = "align"
	CmdDistribute     CommandType = "distribute"

	CmdAddAssets      CommandType = "addAssets"
	CmdRemoveAssets   CommandType = "removeAssets"
	CmdAddPages       CommandType = "addPages"
	CmdRemovePages    CommandType = "removePages"
	CmdSetCurrentPage CommandType = "setCurrentPage"

	CmdSetSettings CommandType = "setSettings"
)

var eventKinds = map[CommandType]fsm.Kind{
	CmdPointerDown:  fsm.PointerDown,
	CmdPointerMove:  fsm.PointerMove,
	CmdPointerUp:    fsm.PointerUp,
	CmdPointerEnter: fsm.PointerEnter,
	CmdPointerLeave: fsm.PointerLeave,
	CmdDoubleClick:  fsm.DoubleClick,
	CmdKeyDown:      fsm.KeyDown,
	CmdKeyUp:        fsm.KeyUp,
	CmdWheel:        fsm.Wheel,
	CmdPinchStart:   fsm.PinchStart,
	CmdPinch:        fsm.Pinch,
	CmdPinchEnd:     fsm.PinchEnd,
}

// Command is one JSON-encoded request to an App, as sent by remote
// clients and replay files. Which fields matter depends on Type.
type Command struct {
	Type CommandType `json:"type"`

	Info  EventInfo `json:"info,omitzero"`
	Input Input     `json:"input,omitzero"`

	// Shapes are full or partial shape models for createShapes; missing
	// fields take the kind defaults.
	Shapes []json.RawMessage `json:"shapes,omitempty"`
	// Patches are partial props for updateShapes, each with an id.
	Patches []json.RawMessage `json:"patches,omitempty"`
	IDs     []string          `json:"ids,omitempty"`

	Tool       string           `json:"tool,omitempty"`
	Align      AlignType        `json:"align,omitempty"`
	Distribute DistributeType   `json:"distribute,omitempty"`
	Camera     *Camera          `json:"camera,omitempty"`
	Assets     []document.Asset `json:"assets,omitempty"`
	Pages      []document.Page  `json:"pages,omitempty"`
	PageID     string           `json:"pageId,omitempty"`
	Settings   *Settings        `json:"settings,omitempty"`
}

// ParseCommand decodes a JSON command.
func ParseCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if c.Type == "" {
		return Command{}, fmt.Errorf("%w: missing type", ErrInvalidCommand)
	}
	return c, nil
}

// IsInput reports whether c is a raw device event that drives the tool
// state machine.
func (c Command) IsInput() bool {
	_, ok := eventKinds[c.Type]
	return ok
}

// Apply runs one command and then flushes pending history.
func (a *App) Apply(c Command) error {
	err := a.apply(c)
	a.FlushSave()
	return err
}

func (a *App) apply(c Command) error {
	if kind, ok := eventKinds[c.Type]; ok {
		info := c.Info
		if info.Type == "" || info.Type == TargetAuto {
			info = a.resolveTarget(info, c.Input)
		}
		a.dispatch(kind, info, c.Input)
		return nil
	}

	switch c.Type {
	case CmdCreateShapes:
		models := make([]document.ShapeModel, 0, len(c.Shapes))
		for _, raw := range c.Shapes {
			m, err := a.registry.Decode(raw)
			if err != nil {
				return err
			}
			models = append(models, m)
		}
		_, err := a.CreateShapes(models...)
		return err
	case CmdUpdateShapes:
		return a.PatchShapes(c.Patches...)
	case CmdDeleteShapes:
		a.DeleteShapes(c.IDs...)
	case CmdSelect:
		a.SetSelectedShapes(c.IDs)
	case CmdSelectAll:
		a.SelectAll()
	case CmdDeselectAll:
		a.DeselectAll()

	case CmdUndo:
		a.Undo()
	case CmdRedo:
		a.Redo()
	case CmdPersist:
		a.Persist()

	case CmdSetTool:
		return a.TryTransition(c.Tool, nil)
	case CmdSetCamera:
		if c.Camera == nil {
			return fmt.Errorf("%w: %s needs camera", ErrInvalidCommand, c.Type)
		}
		a.SetCamera(*c.Camera)
	case CmdZoomIn:
		a.viewport.ZoomIn()
	case CmdZoomOut:
		a.viewport.ZoomOut()
	case CmdZoomToFit:
		a.api.ZoomToFit()
	case CmdResetZoom:
		a.viewport.ResetZoom()

	case CmdBringForward:
		a.BringForward(c.IDs...)
	case CmdSendBackward:
		a.SendBackward(c.IDs...)
	case CmdBringToFront:
		a.BringToFront(c.IDs...)
	case CmdSendToBack:
		a.SendToBack(c.IDs...)
	case CmdFlipHorizontal:
		a.FlipHorizontal(c.IDs...)
	case CmdFlipVertical:
		a.FlipVertical(c.IDs...)
	case CmdAlign:
		return a.Align(c.Align, c.IDs...)
	case CmdDistribute:
		return a.Distribute(c.Distribute, c.IDs...)

	case CmdAddAssets:
		a.CreateAssets(c.Assets...)
	case CmdRemoveAssets:
		a.RemoveAssets(c.IDs...)
	case CmdAddPages:
		return a.AddPages(c.Pages...)
	case CmdRemovePages:
		a.RemovePages(c.IDs...)
	case CmdSetCurrentPage:
		return a.SetCurrentPage(c.PageID)

	case CmdSetSettings:
		if c.Settings == nil {
			return fmt.Errorf("%w: %s needs settings", ErrInvalidCommand, c.Type)
		}
		a.SetSettings(*c.Settings)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}

// resolveTarget fills in the target of an event from what is under its
// point. Handles are never inferred; clients that draw them send explicit
// targets.
func (a *App) resolveTarget(info EventInfo, input Input) EventInfo {
	p := a.viewport.PagePoint(input.Point)
	resolved := Canvas()
	if sh := a.CurrentPage().HitTest(p); sh != nil {
		resolved = OnShape(sh.ID())
	} else if b, ok := a.SelectionBounds(); ok && len(a.selectedIDs) > 1 && geom.PointInBounds(p, b) {
		resolved = OnSelection(geom.HandleBackground)
	}
	resolved.Point = info.Point
	resolved.Delta = info.Delta
	resolved.Offset = info.Offset
	resolved.Zoom = info.Zoom
	resolved.Dispatch = info.Dispatch
	return resolved
}
