package collab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/engine"
)

// DocumentStore loads and saves the documents of rooms.
type DocumentStore interface {
	LoadDocument(ctx context.Context, boardID string) (*document.Document, error)
	SaveDocument(ctx context.Context, boardID string, doc *document.Document) (int32, error)
}

const (
	loadTimeout = 10 * time.Second
	saveTimeout = 10 * time.Second
	inboxSize   = 64
)

// Room is one open board. Its App belongs to the run goroutine and is only
// touched from functions passed to do.
type Room struct {
	hub       *Hub
	boardID   string
	clients   map[string]*Client // guarded by hub.mu
	presence  *PresenceManager
	app       *engine.App
	ephemeral bool
	log       *slog.Logger

	inbox    chan func()
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// owned by run
	seq    int64
	author string
	dirty  bool
}

func newRoom(h *Hub, boardID string, doc *document.Document, ephemeral bool) (*Room, error) {
	log := slog.With("board", boardID)
	app, err := engine.New(engine.WithDocument(doc), engine.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open board %s: %w", boardID, err)
	}
	r := &Room{
		hub:       h,
		boardID:   boardID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		app:       app,
		ephemeral: ephemeral,
		log:       log,
		inbox:     make(chan func(), inboxSize),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	app.Subscribe(engine.EventPersist, func(*engine.App, any) { r.onPersist() })
	return r, nil
}

func (r *Room) run(saveInterval time.Duration) {
	defer close(r.stopped)
	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	for {
		select {
		case fn := <-r.inbox:
			fn()
		case <-ticker.C:
			r.save()
		case <-r.quit:
			r.save()
			return
		}
	}
}

// do queues fn on the room goroutine. It reports false once the room is
// stopping.
func (r *Room) do(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.quit:
		return false
	}
}

// stop saves pending edits and waits for the room goroutine to exit.
func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	<-r.stopped
}

func (r *Room) onPersist() {
	r.seq++
	r.dirty = true
	r.presence.Prune(func(pageID, shapeID string) bool {
		p := r.app.CurrentPage()
		if pageID != "" {
			var err error
			if p, err = r.app.Page(pageID); err != nil {
				return false
			}
		}
		return p.Shape(shapeID) != nil
	})
	r.hub.broadcastToRoom(r.boardID, r.syncMessage(), "")
}

func (r *Room) syncMessage() *Message {
	return newMessage(TypeDocSync, DocSyncPayload{
		ServerSeq: r.seq,
		UserID:    r.author,
		Document:  r.app.Serialize(),
	})
}

func (r *Room) welcome(c *Client) {
	c.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:    c.ClientID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		BoardID:     r.boardID,
		ServerSeq:   r.seq,
	}))
	c.Send(r.syncMessage())
	c.Send(r.presence.StateMessage())
}

// clientSide reports commands that drive one user's tool state. The room's
// App is shared, so those stay in the client.
func clientSide(cmd engine.Command) bool {
	return cmd.IsInput() || cmd.Type == engine.CmdSetTool
}

func (r *Room) applyCommand(sender *Client, msg *Message) {
	cmd, err := engine.ParseCommand(msg.Payload)
	if err == nil && clientSide(cmd) {
		err = fmt.Errorf("%w: %s is handled by the client", engine.ErrInvalidCommand, cmd.Type)
	}
	if err == nil {
		r.author = sender.UserID
		err = r.app.Apply(cmd)
	}
	if err != nil {
		r.log.Debug("command rejected", "user", sender.UserID, "error", err)
		sender.Send(newMessage(TypeCommandNack, CommandNackPayload{ClientSeq: msg.Seq, Reason: err.Error()}))
		return
	}
	sender.Send(newMessage(TypeCommandAck, CommandAckPayload{ClientSeq: msg.Seq, ServerSeq: r.seq}))
}

func (r *Room) save() {
	if !r.dirty || r.ephemeral {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	version, err := r.hub.docs.SaveDocument(ctx, r.boardID, r.app.Serialize())
	if err != nil {
		r.log.Error("save board", "error", err)
		return
	}
	r.dirty = false
	r.log.Info("board saved", "version", version, "seq", r.seq)
}
