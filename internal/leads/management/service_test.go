package management

import (
	"context"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]domain.Lead
	last  repository.ListParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]domain.Lead)}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = params
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if params.OwnerID != nil && (lead.SellerID == nil || *lead.SellerID != *params.OwnerID) {
			continue
		}
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	lead := domain.Lead{
		ID: uuid.New(), Name: p.Name, Phone: p.Phone, Email: p.Email, Company: p.Company,
		Status: domain.StatusNew, Score: p.Score, Channel: p.Channel, Notes: p.Notes,
		SellerID: p.SellerID, CreatedAt: now, UpdatedAt: now,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, p repository.UpdateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Notes != nil {
		lead.Notes = p.Notes
	}
	if p.AssignSeller {
		lead.SellerID = p.SellerID
	}
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

type recordingBus struct {
	mu      sync.Mutex
	changes []events.Change
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := event.(events.Change); ok {
		b.changes = append(b.changes, c)
	}
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func seller() access.Actor {
	return access.Actor{ProfileID: uuid.New(), Roles: []string{"seller"}}
}

func TestCreateAssignsCallerAndEmitsChange(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, bus)
	actor := seller()

	resp, err := svc.Create(context.Background(), actor, transport.CreateLeadRequest{
		Name: "Maria", Phone: "5511999990000", Channel: "whatsapp",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.SellerID)
	assert.Equal(t, actor.ProfileID, *resp.SellerID)
	assert.Equal(t, "new", resp.Status)
	require.NotNil(t, resp.Channel)
	assert.Equal(t, "whatsapp", *resp.Channel)

	require.Len(t, bus.changes, 1)
	assert.Equal(t, events.EntityLeads, bus.changes[0].Entity)
	assert.Equal(t, events.ChangeInsert, bus.changes[0].Op)
	assert.Equal(t, actor.ProfileID, bus.changes[0].OwnerID)
}

func TestGetByIDHidesOtherSellersLeads(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil)
	owner := seller()

	created, err := svc.Create(context.Background(), owner, transport.CreateLeadRequest{Name: "Lead"})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), seller(), created.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	admin := access.Actor{ProfileID: uuid.New(), Roles: []string{access.RoleAdmin}}
	got, err := svc.GetByID(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListScopesSellersToOwnLeads(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil)
	a, b := seller(), seller()

	_, err := svc.Create(context.Background(), a, transport.CreateLeadRequest{Name: "A1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), b, transport.CreateLeadRequest{Name: "B1"})
	require.NoError(t, err)

	result, err := svc.List(context.Background(), a, transport.ListLeadsRequest{Status: "new"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "A1", result.Items[0].Name)
	require.NotNil(t, repo.last.Status)
	assert.Equal(t, domain.StatusNew, *repo.last.Status)

	admin := access.Actor{Roles: []string{access.RoleAdmin}}
	all, err := svc.List(context.Background(), admin, transport.ListLeadsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	assert.Nil(t, repo.last.OwnerID)
}

func TestUpdateReassignRequiresAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil)
	owner := seller()

	created, err := svc.Create(context.Background(), owner, transport.CreateLeadRequest{Name: "Lead"})
	require.NoError(t, err)

	other := uuid.New()
	req := transport.UpdateLeadRequest{SellerID: transport.OptionalUUID{Set: true, Value: &other}}

	_, err = svc.Update(context.Background(), owner, created.ID, req)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	admin := access.Actor{Roles: []string{access.RoleAdmin}}
	updated, err := svc.Update(context.Background(), admin, created.ID, req)
	require.NoError(t, err)
	require.NotNil(t, updated.SellerID)
	assert.Equal(t, other, *updated.SellerID)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, bus)
	owner := seller()

	created, err := svc.Create(context.Background(), owner, transport.CreateLeadRequest{Name: "Lead"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), owner, created.ID, transport.UpdateLeadStatusRequest{Status: "in_negotiation"})
	require.NoError(t, err)
	assert.Equal(t, "in_negotiation", updated.Status)
	assert.Len(t, bus.changes, 2)

	_, err = svc.UpdateStatus(context.Background(), owner, created.ID, transport.UpdateLeadStatusRequest{Status: "archived"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateStatus(context.Background(), owner, uuid.New(), transport.UpdateLeadStatusRequest{Status: "lost"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
