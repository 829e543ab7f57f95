package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/QuranLO/core/format"
	"github.com/FocuswithJustin/QuranLO/internal/logging"
	"github.com/FocuswithJustin/QuranLO/internal/server"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Message types sent to WebSocket clients.
const (
	MessageFragment = "fragment"
	MessageComplete = "complete"
	MessageError    = "error"
	MessageShutdown = "shutdown"
)

// Message is one WebSocket frame sent to a client. A compose request is
// answered by one "fragment" message per fragment followed by "complete", or
// by a single "error".
type Message struct {
	Type      string           `json:"type"`
	ID        string           `json:"id,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Index     int              `json:"index"`
	Fragment  *format.Fragment `json:"fragment,omitempty"`
	Count     int              `json:"count,omitempty"`
	Error     *APIError        `json:"error,omitempty"`
	Timestamp string           `json:"timestamp"`
}

func encode(msg Message) []byte {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return nil
	}
	return data
}

// Client is one WebSocket connection.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	limiter *tokenBucket

	quit     chan struct{}
	quitOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, messagesPerSecond int) *Client {
	rate := float64(messagesPerSecond)
	return &Client{
		id:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: newTokenBucket(rate*2, rate),
		quit:    make(chan struct{}),
	}
}

// close stops the write pump. Safe to call more than once.
func (c *Client) close() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// enqueue queues msg for the write pump. It reports false once the client is
// closing.
func (c *Client) enqueue(msg Message) bool {
	data := encode(msg)
	if data == nil {
		return false
	}
	select {
	case c.send <- data:
		return true
	case <-c.quit:
		return false
	}
}

// Hub tracks connected clients and broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	start     sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub. Start must be called before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in the background until ctx is done or Close is
// called. Later calls are no-ops.
func (h *Hub) Start(ctx context.Context) {
	h.start.Do(func() { go h.run(ctx) })
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", n, "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", n, "client_id", client.id)

		case message := <-h.broadcast:
			h.deliver(message)

		case <-ctx.Done():
			h.Close()
			h.stop()
			return

		case <-h.done:
			h.stop()
			return
		}
	}
}

// deliver sends message to every client without blocking. A client whose
// queue is full misses the message.
func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			logging.Warn("websocket client queue full, dropping message", "client_id", client.id)
		}
	}
}

// stop flushes pending broadcasts and disconnects every client.
func (h *Hub) stop() {
	for drained := false; !drained; {
		select {
		case message := <-h.broadcast:
			h.deliver(message)
		default:
			drained = true
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
		delete(h.clients, client)
	}
	logging.WebSocketEvent("hub_stopped", 0)
}

// Close tells clients the server is going away and disconnects them.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.Broadcast(Message{Type: MessageShutdown})
		close(h.done)
	})
}

// Broadcast sends msg to all connected clients. It drops the message when
// the broadcast queue is full.
func (h *Hub) Broadcast(msg Message) {
	data := encode(msg)
	if data == nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// readPump reads compose requests until the connection fails and hands each
// one to handle.
func (c *Client) readPump(maxSize int64, handle func(context.Context, *Client, []byte)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.hub.unregisterClient(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("websocket closed", "client_id", c.id, "error", err.Error())
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !c.limiter.allow() {
			c.enqueue(Message{Type: MessageError, Error: &APIError{"RATE_LIMITED", "too many messages"}})
			continue
		}
		handle(ctx, c, data)
	}
}

// writePump writes queued messages, one frame each, and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.quit:
			for {
				select {
				case message := <-c.send:
					if err := c.write(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
					return
				}
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return server.OriginAllowed(r.Header.Get("Origin"), s.cfg.AllowedOrigins)
		},
	}
}

// handleWebSocket upgrades the connection and serves compose requests on it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", "error", err.Error(), "origin", r.Header.Get("Origin"))
		return
	}

	client := newClient(s.hub, conn, s.cfg.MaxMessageRate)
	if !s.hub.registerClient(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(s.cfg.MaxMessageSize, s.streamCompose)
}

// streamCompose answers one WebSocket compose request.
func (s *Server) streamCompose(ctx context.Context, c *Client, data []byte) {
	var cr ComposeRequest
	if err := json.Unmarshal(data, &cr); err != nil {
		c.enqueue(Message{Type: MessageError, Error: &APIError{"INVALID_JSON", "Invalid message: " + err.Error()}})
		return
	}

	rf, frags, err := s.compose(ctx, cr)
	if err != nil {
		status, apiErr := classify(err)
		if status >= http.StatusInternalServerError {
			logging.Error("websocket_compose_failed", "client_id", c.id, "ref", cr.Ref, "error", err.Error())
		}
		c.enqueue(Message{Type: MessageError, ID: cr.ID, Error: apiErr})
		return
	}

	for i := range frags {
		if !c.enqueue(Message{Type: MessageFragment, ID: cr.ID, Index: i, Fragment: &frags[i]}) {
			return
		}
	}
	c.enqueue(Message{Type: MessageComplete, ID: cr.ID, Reference: rf.String(), Count: len(frags)})
}
