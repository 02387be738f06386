package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

const sendBuffer = 64

// Client is one relay connection. Send is drained by the connection's
// write loop and closed on Unregister.
type Client struct {
	ID   string
	Send chan []byte
}

func NewClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, sendBuffer)}
}

// Hub fans chat messages out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With().Str("component", "chat_hub").Logger(),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
}

// Broadcast sends msg to every client except from, which may be nil.
// Clients whose buffer is full miss the message.
func (h *Hub) Broadcast(msg Message, from *Client) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode chat message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == from {
			continue
		}
		select {
		case c.Send <- data:
		default:
			h.logger.Warn().Str("client_id", c.ID).Msg("chat client buffer full, message dropped")
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
