package ws

import (
	"encoding/json"
	"reviewpilot/internal/logger"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Dashboard message types
const (
	MsgPoolCreated     MessageType = "review_pool_created"
	MsgReviewConsumed  MessageType = "review_consumed"
	MsgPoolRegenerated MessageType = "review_pool_regenerated"
	MsgConnected       MessageType = "connected"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans business-scoped pool events out to owner dashboards
type Hub struct {
	// businessID -> connections
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log *logger.Logger
}

// Connection represents one dashboard WebSocket connection
type Connection struct {
	BusinessID string
	Send       chan []byte
	Hub        *Hub
}

// BroadcastMessage is a message for every dashboard of a business
type BroadcastMessage struct {
	BusinessID string
	Message    *Message
}

// NewHub creates a hub and starts its event loop
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        log.With("component", "ws.Hub"),
	}
	go h.run()
	return h
}

// NewConnection creates a connection bound to the hub
func (h *Hub) NewConnection(businessID string) *Connection {
	return &Connection{
		BusinessID: businessID,
		Send:       make(chan []byte, 256),
		Hub:        h,
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.BusinessID] == nil {
				h.conns[conn.BusinessID] = make(map[*Connection]struct{})
			}
			h.conns[conn.BusinessID][conn] = struct{}{}
			n := len(h.conns[conn.BusinessID])
			h.mu.Unlock()
			h.log.Debug("Dashboard connected", "businessId", conn.BusinessID, "subscribers", n)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.BusinessID]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					if len(subs) == 0 {
						delete(h.conns, conn.BusinessID)
					}
					h.log.Debug("Dashboard disconnected", "businessId", conn.BusinessID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Warn("Dropping unencodable message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.BusinessID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, subs := range h.conns {
				for conn := range subs {
					close(conn.Send)
				}
			}
			h.conns = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the event loop and closes every connection's send channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Subscribers returns the number of dashboards connected for a business
func (h *Hub) Subscribers(businessID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[businessID])
}

// BroadcastToBusiness sends an event to every dashboard of the business (implements service.Broadcaster).
// It never blocks the caller; events are dropped when the hub is backed up.
func (h *Hub) BroadcastToBusiness(businessID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("Failed to encode event payload", "type", msgType, "error", err)
		return
	}
	msg := &BroadcastMessage{
		BusinessID: businessID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Warn("Hub backlog full, dropping event", "businessId", businessID, "type", msgType)
	}
}
