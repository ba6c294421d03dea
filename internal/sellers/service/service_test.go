package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"crm_backend/internal/events"
	"crm_backend/internal/sellers/domain"
	"crm_backend/internal/sellers/repository"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	profiles map[uuid.UUID]domain.Profile
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return domain.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (domain.Profile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return domain.Profile{}, repository.ErrNotFound
}

func (f *fakeRepo) UpdateAgentContext(_ context.Context, id uuid.UUID, agentContext, style *string) (domain.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return domain.Profile{}, repository.ErrNotFound
	}
	p.AgentContext = agentContext
	p.CommunicationStyle = style
	f.profiles[id] = p
	return p, nil
}

func TestUpdateAgentContextRegeneratesSynchronously(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{profiles: map[uuid.UUID]domain.Profile{id: {ID: id, Name: "Ana", Role: domain.RoleSeller}}}
	bus := events.NewInMemoryBus(logger.NewWithWriter("test", io.Discard))

	var regenerated []uuid.UUID
	bus.Subscribe(events.SellerProfileUpdated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		regenerated = append(regenerated, e.(events.SellerProfileUpdated).SellerID)
		return nil
	}))

	svc := New(repo, bus)
	p, err := svc.UpdateAgentContext(context.Background(), id, "  Especialista em aterramento ", " ")
	require.NoError(t, err)

	require.NotNil(t, p.AgentContext)
	assert.Equal(t, "Especialista em aterramento", *p.AgentContext)
	assert.Nil(t, p.CommunicationStyle)
	assert.Equal(t, []uuid.UUID{id}, regenerated)
}

func TestUpdateAgentContextSurfacesHandlerError(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{profiles: map[uuid.UUID]domain.Profile{id: {ID: id}}}
	bus := events.NewInMemoryBus(logger.NewWithWriter("test", io.Discard))
	bus.Subscribe(events.SellerProfileUpdated{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		return errors.New("agent store down")
	}))

	_, err := New(repo, bus).UpdateAgentContext(context.Background(), id, "ctx", "")
	assert.ErrorContains(t, err, "agent store down")
}

func TestGetByIDNotFound(t *testing.T) {
	svc := New(&fakeRepo{profiles: map[uuid.UUID]domain.Profile{}}, nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
