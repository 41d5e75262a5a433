package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub fans resolution results out to every socket attached to one session.
// Each session gets its own Hub; hubs of different sessions share nothing.
//
// Client send channels are closed only through Client.close, which is
// idempotent, so queueing a message can never race a close into a panic.
type Hub struct {
	log        *slog.Logger
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub returns a hub ready to Run.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log,
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every attached client, connection included, so their pumps exit
// instead of feeding a dead session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("socket attached", "conn_id", client.id)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.log.Debug("socket detached", "conn_id", client.id)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// A client that cannot keep up is dropped rather than
					// allowed to stall the whole session.
					client.close()
					delete(h.clients, client)
					h.log.Warn("socket dropped, send buffer full", "conn_id", client.id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes env and queues it for every attached client. Once
// the hub has stopped the message is dropped; nothing drains the queue
// anymore and a blocked Broadcast would pin its caller forever.
func (h *Hub) Broadcast(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		h.log.Error("serialize broadcast", "type", env.Type, "err", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
		h.log.Debug("broadcast dropped, hub stopped", "type", env.Type)
	}
}

// Clients returns the number of attached sockets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
