package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/inamate/whiteboard/internal/document"
)

var ErrHubStopped = errors.New("hub stopped")

const defaultSaveInterval = 30 * time.Second

type Option func(*Hub)

// WithSaveInterval sets how often rooms store edited documents.
func WithSaveInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.saveInterval = d
		}
	}
}

// WithEphemeralBoard marks a board that starts from the sample document
// and is never saved.
func WithEphemeralBoard(boardID string) Option {
	return func(h *Hub) { h.ephemeral[boardID] = true }
}

type Hub struct {
	docs         DocumentStore
	saveInterval time.Duration
	ephemeral    map[string]bool

	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(docs DocumentStore, opts ...Option) *Hub {
	h := &Hub{
		docs:         docs,
		saveInterval: defaultSaveInterval,
		ephemeral:    make(map[string]bool),
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			h.shutdown()
			return
		}
	}
}

// Stop saves every open room, disconnects their clients and waits for Run
// to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) openRoom(boardID string) (*Room, error) {
	ephemeral := h.ephemeral[boardID]
	var doc *document.Document
	if ephemeral {
		doc = document.NewSampleDocument()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		var err error
		if doc, err = h.docs.LoadDocument(ctx, boardID); err != nil {
			return nil, err
		}
	}

	room, err := newRoom(h, boardID, doc, ephemeral)
	if err != nil {
		return nil, err
	}
	go room.run(h.saveInterval)
	slog.Info("room opened", "board", boardID, "ephemeral", ephemeral)
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.BoardID]
	h.mu.RUnlock()

	if !ok {
		var err error
		if room, err = h.openRoom(client.BoardID); err != nil {
			slog.Error("open room", "board", client.BoardID, "error", err)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "board unavailable"}))
			client.close()
			return
		}
	}

	h.mu.Lock()
	h.rooms[client.BoardID] = room
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	room.do(func() { room.welcome(client) })

	h.broadcastToRoom(client.BoardID, newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	}), client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		client.close()
		return
	}

	delete(room.clients, client.ClientID)
	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	client.close()
	room.presence.Remove(client.UserID)
	slog.Info("client left", "user", client.UserID, "board", client.BoardID)

	if empty {
		room.stop()
		slog.Info("room closed", "board", client.BoardID)
		return
	}

	msg := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	msg.UserID = client.UserID
	h.broadcastToRoom(client.BoardID, msg, "")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	slog.Info("saving all documents", "rooms", len(rooms))
	for _, room := range rooms {
		room.stop()
		for _, c := range room.clients {
			c.close()
		}
	}
}

func (h *Hub) room(boardID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[boardID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.room(sender.BoardID)
	if !ok {
		return
	}

	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(room, sender, msg)
	case TypeCommand:
		room.do(func() { room.applyCommand(sender, msg) })
	case TypeDocRequest:
		room.do(func() { sender.Send(room.syncMessage()) })
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "unknown message type " + msg.Type}))
	}
}

func (h *Hub) handlePresenceUpdate(room *Room, sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	room.presence.Update(sender.UserID, &presence)

	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.BoardID, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
