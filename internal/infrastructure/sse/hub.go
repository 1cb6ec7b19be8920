package sse

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const clientBuffer = 100

var (
	ErrClientNotFound = errors.New("SSE client not found")
	ErrChannelFull    = errors.New("SSE message channel full")
)

// Client is an open event stream. A zero UserID receives every event.
type Client struct {
	ClientID    string
	UserID      int64
	ConnectedAt time.Time
	MessageChan chan *Message
}

func NewClient(userID int64) *Client {
	return &Client{
		ClientID:    uuid.NewString(),
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *Message, clientBuffer),
	}
}

// Message is one server-sent event.
type Message struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessage(event string, data json.RawMessage) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Hub fans events out to connected clients. Slow clients drop messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ClientID] = c
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		close(c.MessageChan)
		delete(h.clients, clientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event about userID to that user's clients and to
// clients subscribed to every user.
func (h *Hub) Publish(event string, userID int64, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg := NewMessage(event, raw)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.UserID == 0 || c.UserID == userID {
			trySend(c, msg)
		}
	}
	return nil
}

func (h *Hub) SendToClient(clientID string, msg *Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c := h.clients[clientID]
	if c == nil {
		return ErrClientNotFound
	}
	if !trySend(c, msg) {
		return ErrChannelFull
	}
	return nil
}

// Stop disconnects every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.MessageChan)
		delete(h.clients, id)
	}
}

func trySend(c *Client, msg *Message) bool {
	select {
	case c.MessageChan <- msg:
		return true
	default:
		return false
	}
}
