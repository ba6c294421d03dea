package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"crm_backend/internal/agents/domain"
	"crm_backend/internal/agents/repository"
	"crm_backend/internal/events"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	agents map[uuid.UUID]domain.Agent
}

func newFakeStore() *fakeStore {
	return &fakeStore{agents: map[uuid.UUID]domain.Agent{}}
}

func (f *fakeStore) GetBySeller(_ context.Context, sellerID uuid.UUID) (domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[sellerID]
	if !ok {
		return domain.Agent{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) Upsert(_ context.Context, sellerID uuid.UUID, persona string, settings domain.Settings) (domain.Agent, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	if a, ok := f.agents[sellerID]; ok {
		a.PersonaPrompt = persona
		a.UpdatedAt = now
		f.agents[sellerID] = a
		return a, false, nil
	}
	a := domain.Agent{
		ID:            uuid.New(),
		SellerID:      sellerID,
		PersonaPrompt: persona,
		Settings:      settings,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.agents[sellerID] = a
	return a, true, nil
}

type fakeDirectory struct {
	inputs map[uuid.UUID]domain.PersonaInput
	order  []uuid.UUID
	active map[uuid.UUID]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{inputs: map[uuid.UUID]domain.PersonaInput{}, active: map[uuid.UUID]bool{}}
}

func (f *fakeDirectory) add(in domain.PersonaInput) uuid.UUID {
	id := uuid.New()
	f.inputs[id] = in
	f.order = append(f.order, id)
	return id
}

func (f *fakeDirectory) PersonaInput(_ context.Context, sellerID uuid.UUID) (domain.PersonaInput, error) {
	in, ok := f.inputs[sellerID]
	if !ok {
		return domain.PersonaInput{}, apperr.NotFound("profile not found")
	}
	return in, nil
}

func (f *fakeDirectory) MarkAgentActive(_ context.Context, sellerID uuid.UUID) error {
	f.active[sellerID] = true
	return nil
}

func (f *fakeDirectory) ListSellerIDs(context.Context) ([]uuid.UUID, error) {
	return f.order, nil
}

func newService(t *testing.T) (*Service, *fakeStore, *fakeDirectory, *events.InMemoryBus) {
	t.Helper()
	log := logger.NewWithWriter("test", io.Discard)
	bus := events.NewInMemoryBus(log)
	store := newFakeStore()
	dir := newFakeDirectory()
	return New(store, dir, bus, log), store, dir, bus
}

func TestGenerateCreatesAgentWithDefaults(t *testing.T) {
	svc, _, dir, bus := newService(t)
	sellerID := dir.add(domain.PersonaInput{Name: "Ana", Portfolio: "C"})

	var got []events.AgentGenerated
	var mu sync.Mutex
	bus.Subscribe(events.AgentGenerated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.AgentGenerated))
		return nil
	}))

	res, err := svc.Generate(context.Background(), sellerID)
	require.NoError(t, err)
	bus.Wait()

	assert.True(t, res.Created)
	assert.Equal(t, domain.DefaultSettings(), res.Agent.Settings)
	persona, err := domain.RenderPersona(domain.PersonaInput{Name: "Ana", Portfolio: "C"})
	require.NoError(t, err)
	assert.Equal(t, persona, res.Agent.PersonaPrompt)
	assert.Equal(t, domain.Preview(res.Agent.PersonaPrompt), res.Preview)
	assert.True(t, dir.active[sellerID])
	require.Len(t, got, 1)
	assert.Equal(t, res.Agent.ID, got[0].AgentID)
	assert.True(t, got[0].Created)
}

func TestGenerateOverwritesExistingPersona(t *testing.T) {
	svc, _, dir, _ := newService(t)
	sellerID := dir.add(domain.PersonaInput{Name: "Ana"})

	first, err := svc.Generate(context.Background(), sellerID)
	require.NoError(t, err)

	dir.inputs[sellerID] = domain.PersonaInput{Name: "Ana", Context: "Atende construtoras no interior."}
	second, err := svc.Generate(context.Background(), sellerID)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Agent.ID, second.Agent.ID)
	assert.Contains(t, second.Agent.PersonaPrompt, "Atende construtoras no interior.")
	assert.NotEqual(t, first.Agent.PersonaPrompt, second.Agent.PersonaPrompt)
}

func TestGenerateUnknownSeller(t *testing.T) {
	svc, store, _, _ := newService(t)

	_, err := svc.Generate(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, store.agents)
}

func TestProfileUpdateRegeneratesAgent(t *testing.T) {
	svc, store, dir, bus := newService(t)
	svc.Subscribe(bus)
	sellerID := dir.add(domain.PersonaInput{Name: "Bruno"})

	err := bus.PublishSync(context.Background(), events.SellerProfileUpdated{BaseEvent: events.NewBaseEvent(), SellerID: sellerID})
	require.NoError(t, err)

	agent, err := store.GetBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Contains(t, agent.PersonaPrompt, "VOCÊ É BRUNO")
}

func TestGetMissingAgent(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRegenerateAllContinuesPastFailures(t *testing.T) {
	svc, store, dir, _ := newService(t)
	a := dir.add(domain.PersonaInput{Name: "Ana"})
	missing := uuid.New()
	dir.order = append(dir.order, missing)
	b := dir.add(domain.PersonaInput{Name: "Bia"})

	done, err := svc.RegenerateAll(context.Background())
	assert.Equal(t, 2, done)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), missing.String())

	_, errA := store.GetBySeller(context.Background(), a)
	_, errB := store.GetBySeller(context.Background(), b)
	assert.NoError(t, errA)
	assert.NoError(t, errB)
	assert.False(t, errors.Is(err, repository.ErrNotFound))
}
