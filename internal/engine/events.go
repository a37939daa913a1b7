package engine

import (
	"github.com/inamate/inamate/whiteboard/internal/fsm"
	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// TargetType says what an event landed on.
type TargetType string

const (
	TargetCanvas    TargetType = "canvas"
	TargetShape     TargetType = "shape"
	TargetSelection TargetType = "selection"
	TargetHandle    TargetType = "handle"
)

// Dispatch is shared by every delivery of one native event. The host
// passes the same Dispatch when an event bubbles through several targets;
// only the first delivery is primary.
type Dispatch struct {
	consumed bool
}

// EventInfo describes the target of an event.
type EventInfo struct {
	Type TargetType `json:"type"`
	// ShapeID is set for shape and handle targets.
	ShapeID string `json:"shapeId,omitempty"`
	// Handle is the selection handle for selection targets.
	Handle geom.SelectionHandle `json:"handle,omitempty"`
	// HandleID names the shape handle for handle targets.
	HandleID string `json:"handleId,omitempty"`

	// wheel and pinch
	Point  geom.Vec `json:"point,omitzero"`
	Delta  geom.Vec `json:"delta,omitzero"`
	Offset geom.Vec `json:"offset,omitzero"`
	Zoom   float64  `json:"zoom,omitempty"`

	Dispatch *Dispatch `json:"-"`
}

// Input is the device state that came with an event. Point is in screen
// space.
type Input struct {
	Point     geom.Vec `json:"point,omitzero"`
	Button    int      `json:"button,omitempty"`
	PointerID int      `json:"pointerId,omitempty"`
	Shift     bool     `json:"shift,omitempty"`
	Ctrl      bool     `json:"ctrl,omitempty"`
	Meta      bool     `json:"meta,omitempty"`
	Alt       bool     `json:"alt,omitempty"`
	Key       string   `json:"key,omitempty"`
}

// Event is what state handlers receive.
type Event struct {
	Kind  fsm.Kind
	Info  EventInfo
	Input Input

	primary bool
}

// Primary reports whether this delivery is the first one for its native
// event. Handlers that must act once per native event return early when
// it is false.
func (e *Event) Primary() bool { return e.primary }

// Canvas is a plain canvas target.
func Canvas() EventInfo { return EventInfo{Type: TargetCanvas} }

// OnShape targets a shape.
func OnShape(id string) EventInfo { return EventInfo{Type: TargetShape, ShapeID: id} }

// OnSelection targets a handle of the selection box.
func OnSelection(h geom.SelectionHandle) EventInfo {
	return EventInfo{Type: TargetSelection, Handle: h}
}

// OnHandle targets an edit handle of a shape.
func OnHandle(shapeID, handleID string) EventInfo {
	return EventInfo{Type: TargetHandle, ShapeID: shapeID, HandleID: handleID}
}

func isModifier(key string) bool {
	switch key {
	case "Shift", "Alt", "Control", "Meta":
		return true
	}
	return false
}
