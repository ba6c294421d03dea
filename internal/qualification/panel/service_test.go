package panel

import (
	"context"
	"testing"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/qualification/domain"
	"crm_backend/internal/qualification/repository"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	leads   map[uuid.UUID]domain.LeadSnapshot
	records map[uuid.UUID]domain.Record
	owner   *uuid.UUID
}

func (f *fakeStore) GetLead(_ context.Context, id uuid.UUID) (domain.LeadSnapshot, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.LeadSnapshot{}, repository.ErrLeadNotFound
	}
	return lead, nil
}

func (f *fakeStore) ListQualified(_ context.Context, ownerID *uuid.UUID) ([]repository.QualifiedLead, error) {
	f.owner = ownerID
	return nil, nil
}

func (f *fakeStore) MarkTransferred(_ context.Context, leadID uuid.UUID, at time.Time) (domain.Record, error) {
	rec, ok := f.records[leadID]
	if !ok {
		return domain.Record{}, repository.ErrRecordNotFound
	}
	rec.Status = domain.StatusTransferred
	if rec.TransferredAt == nil {
		rec.TransferredAt = &at
	}
	f.records[leadID] = rec
	return rec, nil
}

func (f *fakeStore) ListTurns(context.Context, uuid.UUID) ([]domain.Turn, error) {
	return []domain.Turn{{Type: domain.TurnCustomer, Body: "oi"}}, nil
}

type captureBus struct{ published []events.Event }

func (b *captureBus) Subscribe(string, events.Handler) {}
func (b *captureBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}
func (b *captureBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func setup() (*fakeStore, uuid.UUID, access.Actor) {
	seller := uuid.New()
	leadID := uuid.New()
	store := &fakeStore{
		leads:   map[uuid.UUID]domain.LeadSnapshot{leadID: {ID: leadID, Name: "Lead", SellerID: &seller}},
		records: map[uuid.UUID]domain.Record{leadID: {LeadID: leadID, Status: domain.StatusQualified, CurrentScore: 7}},
	}
	return store, leadID, access.Actor{ProfileID: seller, Roles: []string{"seller"}}
}

func TestTakeOverMarksTransferred(t *testing.T) {
	store, leadID, owner := setup()
	bus := &captureBus{}
	svc := New(store, bus)

	rec, err := svc.TakeOver(context.Background(), owner, leadID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTransferred, rec.Status)
	assert.NotNil(t, rec.TransferredAt)

	require.Len(t, bus.published, 2)
	taken, ok := bus.published[0].(events.ConversationTakenOver)
	require.True(t, ok)
	assert.Equal(t, owner.ProfileID, taken.SellerID)
}

func TestTakeOverErrors(t *testing.T) {
	store, leadID, owner := setup()
	svc := New(store, nil)

	_, err := svc.TakeOver(context.Background(), access.Actor{ProfileID: uuid.New()}, leadID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "other sellers cannot see the lead")

	delete(store.records, leadID)
	_, err = svc.TakeOver(context.Background(), owner, leadID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.TakeOver(context.Background(), owner, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListQualifiedScopesByOwner(t *testing.T) {
	store, _, owner := setup()
	svc := New(store, nil)

	_, err := svc.ListQualified(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, store.owner)
	assert.Equal(t, owner.ProfileID, *store.owner)

	_, err = svc.ListQualified(context.Background(), access.Actor{Roles: []string{access.RoleAdmin}})
	require.NoError(t, err)
	assert.Nil(t, store.owner)
}

func TestTranscript(t *testing.T) {
	store, leadID, owner := setup()
	svc := New(store, nil)

	turns, err := svc.Transcript(context.Background(), owner, leadID)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
