// Package server is the optional localhost control surface: a small
// JSON API over the running session plus a websocket event feed.
package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/phildougherty/quick-assistant/internal/assistant"
	"github.com/phildougherty/quick-assistant/internal/logging"
)

// clientBuffer is how many events a client may fall behind before it
// is dropped
const clientBuffer = 32

// Hub fans session events out to websocket clients. Publishing never
// blocks; clients that stop draining are disconnected.
type Hub struct {
	logger *logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan assistant.Event
}

// NewHub creates an empty hub
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]chan assistant.Event),
	}
}

// Publish sends an event to every connected client
func (h *Hub) Publish(event assistant.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, send := range h.clients {
		select {
		case send <- event:
		default:
			h.logger.Warning("Dropping slow websocket client")
			delete(h.clients, conn)
			close(send)
		}
	}
}

// ClientCount reports how many clients are connected
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers a connection and starts its writer
func (h *Hub) add(conn *websocket.Conn) {
	send := make(chan assistant.Event, clientBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go func() {
		defer conn.Close()
		for event := range send {
			if err := conn.WriteJSON(event); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

// remove unregisters a connection
func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
}

// closeAll disconnects every client
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		delete(h.clients, conn)
		close(send)
		conn.Close()
	}
}
