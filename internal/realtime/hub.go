// Package realtime pushes events to connected staff dashboards over
// Server-Sent Events and relays events between processes through Redis.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"clinic_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventConnected      EventType = "connected"
	EventJourneyUpdated EventType = "journey_updated"
	EventJourneyError   EventType = "journey_error"
	EventIntakeAlert    EventType = "intake_alert"
	EventStallAlert     EventType = "stall_alert"
)

const clientBuffer = 32

// Event is an SSE event payload.
type Event struct {
	Type    EventType   `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type client struct {
	userID uuid.UUID
	events chan Event
}

// Hub manages SSE connections and event broadcasting.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	log     *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (h *Hub) addClient(userID uuid.UUID) *client {
	c := &client{userID: userID, events: make(chan Event, clientBuffer)}
	h.mu.Lock()
	h.clients[userID] = append(h.clients[userID], c)
	h.mu.Unlock()
	return c
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			h.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(h.clients[c.userID]) == 0 {
		delete(h.clients, c.userID)
	}
}

// Publish sends an event to every connection of one user. Slow clients
// whose buffer is full miss the event.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[userID] {
		h.send(c, event)
	}
}

// Broadcast sends an event to every connected staff member.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			h.send(c, event)
		}
	}
}

func (h *Hub) send(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		h.log.Warn("sse buffer full, dropping event", "userId", c.userID, "type", event.Type)
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Handler returns a Gin handler for SSE connections
func (h *Hub) Handler(getUserID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := h.addClient(userID)
		defer h.removeClient(cl)

		c.SSEvent(string(EventConnected), gin.H{"userId": userID})
		c.Writer.Flush()
		h.log.Debug("sse client connected", "userId", userID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				h.log.Debug("sse client disconnected", "userId", userID)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					h.log.Error("sse marshal failed", "type", event.Type, "error", err)
					continue
				}
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	h.clients = make(map[uuid.UUID][]*client)
}
