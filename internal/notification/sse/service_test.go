package sse

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm_backend/internal/events"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return New(logger.NewWithWriter("test", io.Discard))
}

func connect(s *Service, profileID uuid.UUID, admin bool) *client {
	c := &client{profileID: profileID, admin: admin, events: make(chan Event, 4)}
	s.addClient(c)
	return c
}

func TestPublishRoutesToOwnerAndAdmins(t *testing.T) {
	s := newService()
	owner, other := uuid.New(), uuid.New()
	ownerConn := connect(s, owner, false)
	otherConn := connect(s, other, false)
	adminConn := connect(s, uuid.New(), true)

	n := s.PublishChange(events.NewChange(events.EntityLeads, events.ChangeUpdate, uuid.New(), owner, nil))

	assert.Equal(t, 2, n)
	assert.Len(t, ownerConn.events, 1)
	assert.Len(t, adminConn.events, 1)
	assert.Empty(t, otherConn.events)
}

func TestPublishWithoutOwnerReachesAdminsOnly(t *testing.T) {
	s := newService()
	seller := connect(s, uuid.New(), false)
	admin := connect(s, uuid.New(), true)

	s.Publish(uuid.Nil, Event{Type: EventChange})

	assert.Empty(t, seller.events)
	assert.Len(t, admin.events, 1)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	s := newService()
	owner := uuid.New()
	c := connect(s, owner, false)
	for i := 0; i < cap(c.events)+2; i++ {
		s.Publish(owner, Event{Type: EventChange})
	}
	assert.Len(t, c.events, cap(c.events))
}

func TestRemoveClient(t *testing.T) {
	s := newService()
	c := connect(s, uuid.New(), false)
	require.Equal(t, 1, s.Clients())
	s.removeClient(c)
	assert.Equal(t, 0, s.Clients())
}

func TestHandlerRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", newService().Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newService()
	profileID := uuid.New()

	r := gin.New()
	r.GET("/stream", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextProfileIDKey, profileID)
		c.Set(httpkit.ContextRolesKey, []string{"seller"})
		c.Next()
	}, s.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx))
	}()

	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 5*time.Millisecond)
	s.PublishChange(events.NewChange(events.EntityMessages, events.ChangeInsert, uuid.New(), profileID, nil))
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients[profileID][0].events) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event:connected")
	assert.Contains(t, body, "event:change")
	assert.Contains(t, body, `"entity":"messages"`)
	assert.Equal(t, 0, s.Clients())
}
