package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/conversations/domain"
	"crm_backend/internal/conversations/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	owners   map[uuid.UUID]*uuid.UUID
	messages []domain.Message
}

func (f *fakeRepo) LeadOwner(_ context.Context, leadID uuid.UUID) (*uuid.UUID, error) {
	owner, ok := f.owners[leadID]
	if !ok {
		return nil, repository.ErrLeadNotFound
	}
	return owner, nil
}

func (f *fakeRepo) ListByLead(_ context.Context, leadID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.LeadID == leadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Insert(_ context.Context, p repository.InsertParams) (domain.Message, error) {
	if _, ok := f.owners[p.LeadID]; !ok {
		return domain.Message{}, repository.ErrLeadNotFound
	}
	m := domain.Message{ID: uuid.New(), LeadID: p.LeadID, Type: p.Type, Body: p.Body, Metadata: p.Metadata, CreatedAt: time.Now()}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeRepo) GetWithOwner(_ context.Context, id uuid.UUID) (domain.Message, *uuid.UUID, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, f.owners[m.LeadID], nil
		}
	}
	return domain.Message{}, nil, repository.ErrMessageNotFound
}

func (f *fakeRepo) MarkRead(_ context.Context, id uuid.UUID) (domain.Message, error) {
	for i, m := range f.messages {
		if m.ID == id {
			f.messages[i].IsRead = true
			return f.messages[i], nil
		}
	}
	return domain.Message{}, repository.ErrMessageNotFound
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	bus     *events.InMemoryBus
	seller  access.Actor
	other   access.Actor
	admin   access.Actor
	leadID  uuid.UUID
	changes []events.Change
	mu      sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sellerID := uuid.New()
	leadID := uuid.New()
	f := &fixture{
		repo:   &fakeRepo{owners: map[uuid.UUID]*uuid.UUID{leadID: &sellerID}},
		bus:    events.NewInMemoryBus(logger.NewWithWriter("test", io.Discard)),
		seller: access.Actor{ProfileID: sellerID, Roles: []string{"seller"}},
		other:  access.Actor{ProfileID: uuid.New(), Roles: []string{"seller"}},
		admin:  access.Actor{ProfileID: uuid.New(), Roles: []string{access.RoleAdmin}},
		leadID: leadID,
	}
	events.SubscribeChanges(f.bus, events.EntityMessages, func(_ context.Context, c events.Change) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.changes = append(f.changes, c)
		return nil
	})
	f.svc = New(f.repo, f.bus)
	return f
}

func TestSendDefaultsToSent(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.Send(context.Background(), f.seller, f.leadID, "", "Bom dia!")
	require.NoError(t, err)
	f.bus.Wait()

	assert.Equal(t, domain.MessageSent, m.Type)
	require.Len(t, f.changes, 1)
	assert.Equal(t, events.ChangeInsert, f.changes[0].Op)
	assert.Equal(t, f.seller.ProfileID, f.changes[0].OwnerID)
}

func TestSendRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), f.seller, f.leadID, "broadcast", "oi")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.repo.messages)
}

func TestOtherSellerCannotSeeConversation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Send(context.Background(), f.seller, f.leadID, "received", "Olá")
	require.NoError(t, err)

	_, err = f.svc.List(context.Background(), f.other, f.leadID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	msgs, err := f.svc.List(context.Background(), f.admin, f.leadID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestListKeepsOrder(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{"um", "dois", "três"} {
		_, err := f.svc.Send(context.Background(), f.seller, f.leadID, "sent", body)
		require.NoError(t, err)
	}

	msgs, err := f.svc.List(context.Background(), f.seller, f.leadID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "um", msgs[0].Body)
	assert.Equal(t, "três", msgs[2].Body)
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.Send(context.Background(), f.seller, f.leadID, "received", "Olá")
	require.NoError(t, err)

	_, err = f.svc.MarkRead(context.Background(), f.other, m.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	read, err := f.svc.MarkRead(context.Background(), f.seller, m.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = f.svc.MarkRead(context.Background(), f.seller, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSendUnknownLead(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), f.admin, uuid.New(), "sent", "oi")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
