package collab

import (
	"encoding/json"

	"github.com/inamate/inamate/whiteboard/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// PresencePayload carries a collaborator's pointer and selection. The
// cursor is in page coordinates so peers with different cameras agree.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	PageID      string     `json:"pageId,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync    = "doc.sync"
	TypeDocRequest = "doc.request"

	// Commands
	TypeCommand     = "cmd"
	TypeCommandAck  = "cmd.ack"
	TypeCommandNack = "cmd.nack"
)

type WelcomePayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	BoardID     string `json:"boardId"`
	ServerSeq   int64  `json:"serverSeq"`
}

// DocSyncPayload is the full board after the edit numbered ServerSeq.
type DocSyncPayload struct {
	ServerSeq int64              `json:"serverSeq"`
	UserID    string             `json:"userId,omitempty"`
	Document  *document.Document `json:"document"`
}

// CommandAckPayload answers a cmd message; ClientSeq echoes the Seq the
// client sent.
type CommandAckPayload struct {
	ClientSeq int64 `json:"clientSeq"`
	ServerSeq int64 `json:"serverSeq"`
}

type CommandNackPayload struct {
	ClientSeq int64  `json:"clientSeq"`
	Reason    string `json:"reason"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
