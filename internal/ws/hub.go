package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connection subscribed to a single tenant's feed.
type Client struct {
	TenantID uuid.UUID
	Conn     Conn
}

// Message is delivered only to clients of TenantID.
type Message struct {
	TenantID uuid.UUID
	Payload  []byte
}

type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Message
	done       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	defer close(h.done)
	for {
		select {
		case <-stop:
			h.closeAll()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			if h.clients[c.TenantID] == nil {
				h.clients[c.TenantID] = make(map[*Client]bool)
			}
			h.clients[c.TenantID][c] = true
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("tenant_id", c.TenantID.String()))

		case c := <-h.Unregister:
			h.mutex.Lock()
			h.remove(c)
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			for c := range h.clients[msg.TenantID] {
				if err := c.Conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
					h.remove(c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join subscribes c. It reports false once the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unsubscribes c. After shutdown it returns at once.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	set := h.clients[c.TenantID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	_ = c.Conn.Close()
	if len(set) == 0 {
		delete(h.clients, c.TenantID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for c := range set {
			_ = c.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]bool)
}

// ClientCount reports how many connections a tenant has open.
func (h *Hub) ClientCount(tenantID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[tenantID])
}

// Publish marshals v and queues it for the tenant's clients. It never blocks
// the caller; when the queue is full the event is dropped and logged.
func (h *Hub) Publish(tenantID uuid.UUID, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error("ws payload encode failed", zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- Message{TenantID: tenantID, Payload: payload}:
	default:
		h.log.Warn("ws broadcast queue full, event dropped", zap.String("tenant_id", tenantID.String()))
	}
}
