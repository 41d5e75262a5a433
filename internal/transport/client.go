package transport

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sprintline/internal/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from the peer.
	maxMessageSize = 4096
)

// Client is one WebSocket connection attached to a session.
type Client struct {
	id     string
	hub    *Hub
	server *Server
	game   *engine.Game
	jid    int64
	conn   *websocket.Conn
	send   chan []byte
	log    *slog.Logger

	// sendMu guards closed and orders every close of send against reply's
	// queueing, so a late reply observes the flag instead of panicking on
	// a closed channel.
	sendMu sync.Mutex
	closed bool
}

func newClient(srv *Server, hub *Hub, g *engine.Game, jid int64, conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		hub:    hub,
		server: srv,
		game:   g,
		jid:    jid,
		conn:   conn,
		send:   make(chan []byte, 64),
		log:    srv.log.With("conn_id", id, "journal_id", jid),
	}
}

// register attaches the client to its hub. A hub that already stopped
// cannot accept the client; the connection is closed instead so the pumps
// exit promptly.
func (c *Client) register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.close()
	}
}

// close shuts the send channel and the connection exactly once. Closing
// the connection unblocks a pending readPump; closing send stops the
// writePump.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}

// readPump delivers incoming commands to the engine until the socket
// closes. It runs in its own goroutine, one per connection.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("socket read failed", "err", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.reply(Envelope{Type: TypeError, Error: "malformed command: " + err.Error()})
			continue
		}
		c.handleCommand(cmd)
	}
}

// handleCommand resolves one command and fans the result out to the whole
// session. Rejections travel inside the update; only a consistency
// violation becomes an error envelope.
func (c *Client) handleCommand(cmd Command) {
	req := cmd.Request()
	if req.RequestID == 0 {
		req.RequestID = c.game.NextRequestID()
	}

	c.server.recordRequest(c.jid, req)

	update, err := c.game.Submit(req)
	if err != nil {
		c.log.Error("session wedged", "request_id", int64(req.RequestID), "err", err)
		c.hub.Broadcast(Envelope{Type: TypeError, Error: err.Error()})
		return
	}
	c.hub.Broadcast(Envelope{Type: TypeUpdate, Update: &update})
}

// reply queues an envelope for this client only. Nothing is queued after
// close; the message has nowhere to go.
func (c *Client) reply(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		c.log.Error("serialize reply", "err", err)
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.log.Warn("reply dropped, send buffer full")
	}
}

// writePump flushes queued messages and keeps the connection alive with
// pings. It runs in its own goroutine, one per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
