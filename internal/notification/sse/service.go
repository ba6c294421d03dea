// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"crm_backend/internal/events"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventChange        EventType = "change"
	EventLeadQualified EventType = "lead_qualified"
)

// Event represents an SSE event payload
type Event struct {
	Type    EventType       `json:"type"`
	Entity  string          `json:"entity,omitempty"`
	Op      events.ChangeOp `json:"op,omitempty"`
	ID      uuid.UUID       `json:"id,omitempty"`
	LeadID  uuid.UUID       `json:"leadId,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    any             `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	profileID uuid.UUID
	admin     bool
	events    chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // profileID -> clients
	log     *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.profileID] = append(s.clients[c.profileID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.profileID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.profileID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.profileID]) == 0 {
		delete(s.clients, c.profileID)
	}
}

// Publish sends an event to the owner's connections and to every admin
// connection. A Nil owner reaches admins only.
func (s *Service) Publish(ownerID uuid.UUID, event Event) int {
	s.mu.RLock()
	var targets []*client
	for id, clients := range s.clients {
		for _, c := range clients {
			if c.admin || (ownerID != uuid.Nil && id == ownerID) {
				targets = append(targets, c)
			}
		}
	}
	s.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full", "profileId", c.profileID, "type", event.Type)
		}
	}
	return len(targets)
}

// PublishChange forwards a store change notification.
func (s *Service) PublishChange(change events.Change) int {
	return s.Publish(change.OwnerID, Event{
		Type:   EventChange,
		Entity: change.Entity,
		Op:     change.Op,
		ID:     change.ID,
		Data:   change.Snapshot,
	})
}

// Clients returns the number of open connections.
func (s *Service) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, clients := range s.clients {
		n += len(clients)
	}
	return n
}

// Handler streams events to the authenticated caller.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		actor := access.FromIdentity(identity)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			profileID: actor.ProfileID,
			admin:     actor.IsAdmin(),
			events:    make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"profileId": actor.ProfileID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event := <-cl.events:
				data, err := json.Marshal(event)
				if err != nil {
					s.log.Error("sse marshal failed", "error", err)
					continue
				}
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}
