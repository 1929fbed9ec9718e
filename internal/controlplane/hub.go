package controlplane

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/models"
)

// Event types pushed to websocket clients.
const (
	EventSnapshot = "snapshot"
	EventResult   = "result"
	EventStatus   = "status_update"
	EventPing     = "ping"
)

const (
	clientBuffer   = 16
	writeWait      = 10 * time.Second
	heartbeatEvery = 30 * time.Second
)

// Event is one websocket frame.
type Event struct {
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Result    *models.Result   `json:"result,omitempty"`
	Snapshot  *models.Snapshot `json:"snapshot,omitempty"`
	Text      string           `json:"text,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans events out to connected websocket clients. A client whose buffer
// is full misses the event rather than slowing the sender.
type Hub struct {
	logger *zap.Logger

	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	done       chan struct{}
	once       sync.Once
	mu         sync.RWMutex
}

// NewHub creates a hub. Call Run before accepting connections.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 100),
		register:   make(chan *client),
		unregister: make(chan *client, 10),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx ends or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()
	defer h.closeAll()

	for {
		select {
		case <-h.done:
			return
		case <-ctx.Done():
			h.Stop()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("Websocket client registered", zap.String("client_id", c.id), zap.Int("clients", h.ClientCount()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("Websocket client unregistered", zap.String("client_id", c.id))

		case ev := <-h.broadcast:
			h.fanOut(ev)

		case <-heartbeat.C:
			h.fanOut(Event{Type: EventPing, Timestamp: time.Now()})
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Broadcast queues ev for every client. It never blocks.
func (h *Hub) Broadcast(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- ev:
	case <-h.done:
	default:
		h.logger.Warn("Websocket broadcast channel full, dropping event", zap.String("type", ev.Type))
	}
}

// PublishResult broadcasts results that carry a snapshot.
func (h *Hub) PublishResult(res models.Result) {
	if res.Snapshot == nil {
		return
	}
	r := res
	h.Broadcast(Event{Type: EventResult, Result: &r, Snapshot: res.Snapshot})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events to the client, starting
// with initial.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial models.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan Event, clientBuffer),
	}
	c.send <- Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: &initial}

	select {
	case <-h.done:
		conn.Close()
		return
	default:
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) fanOut(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("Websocket client buffer full", zap.String("client_id", c.id))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			h.leave(c)
			// Drain until the hub closes send.
			for range c.send {
			}
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards client frames and detects disconnects.
func (h *Hub) readLoop(c *client) {
	for {
		var msg json.RawMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Debug("Websocket read error", zap.String("client_id", c.id), zap.Error(err))
			}
			h.leave(c)
			return
		}
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
