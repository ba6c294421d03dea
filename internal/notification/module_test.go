package notification

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSender struct {
	to   []string
	data []email.LeadQualified
	err  error
}

func (s *testSender) SendLeadQualifiedEmail(_ context.Context, to string, data email.LeadQualified) error {
	s.to = append(s.to, to)
	s.data = append(s.data, data)
	return s.err
}

type testWhatsApp struct {
	phones   []string
	messages []string
}

func (w *testWhatsApp) SendMessage(_ context.Context, phone, message string) error {
	w.phones = append(w.phones, phone)
	w.messages = append(w.messages, message)
	return nil
}

type testContacts map[uuid.UUID]SellerContact

func (c testContacts) SellerContact(_ context.Context, id uuid.UUID) (SellerContact, error) {
	contact, ok := c[id]
	if !ok {
		return SellerContact{}, errors.New("profile not found")
	}
	return contact, nil
}

type testPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *testPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *testPublisher) Close() error { return nil }

func testLogger() *logger.Logger { return logger.NewWithWriter("test", io.Discard) }

func qualifiedEvent(sellerID *uuid.UUID) events.LeadQualified {
	return events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		SellerID:  sellerID,
		LeadName:  "Ana Lima",
		LeadPhone: "+5511988887777",
		Score:     8,
		Reason:    "Orçamento aprovado",
	}
}

func TestLeadQualifiedAlertsSeller(t *testing.T) {
	sellerID := uuid.New()
	sender, wa := &testSender{}, &testWhatsApp{}
	m := New(sender, wa, testContacts{sellerID: {Name: "Carla", Email: "carla@match.com", WhatsApp: "+5511977776666"}}, nil, testLogger())
	m.SetPanelURL("https://crm.example.com/crm")

	require.NoError(t, m.Handle(context.Background(), qualifiedEvent(&sellerID)))

	require.Equal(t, []string{"carla@match.com"}, sender.to)
	assert.Equal(t, "Carla", sender.data[0].SellerName)
	assert.Equal(t, 8, sender.data[0].Score)
	assert.Equal(t, "https://crm.example.com/crm", sender.data[0].PanelURL)

	require.Equal(t, []string{"+5511977776666"}, wa.phones)
	assert.Contains(t, wa.messages[0], "Nome: Ana Lima")
	assert.Contains(t, wa.messages[0], "Motivo: Orçamento aprovado")
}

func TestLeadQualifiedSkipsMissingChannels(t *testing.T) {
	sellerID := uuid.New()
	sender, wa := &testSender{}, &testWhatsApp{}
	m := New(sender, wa, testContacts{sellerID: {Name: "Carla"}}, nil, testLogger())

	require.NoError(t, m.Handle(context.Background(), qualifiedEvent(&sellerID)))
	assert.Empty(t, sender.to)
	assert.Empty(t, wa.phones)
}

func TestLeadQualifiedEmailFailureIsBestEffort(t *testing.T) {
	sellerID := uuid.New()
	sender, wa := &testSender{err: errors.New("smtp down")}, &testWhatsApp{}
	m := New(sender, wa, testContacts{sellerID: {Email: "c@match.com", WhatsApp: "+5511977776666"}}, nil, testLogger())

	require.NoError(t, m.Handle(context.Background(), qualifiedEvent(&sellerID)))
	assert.Len(t, wa.phones, 1)
}

func TestLeadQualifiedWithoutSeller(t *testing.T) {
	sender := &testSender{}
	m := New(sender, nil, testContacts{}, nil, testLogger())

	require.NoError(t, m.Handle(context.Background(), qualifiedEvent(nil)))
	assert.Empty(t, sender.to)
}

func TestLeadQualifiedUnknownSeller(t *testing.T) {
	sellerID := uuid.New()
	m := New(&testSender{}, nil, testContacts{}, nil, testLogger())
	assert.Error(t, m.Handle(context.Background(), qualifiedEvent(&sellerID)))
}

func TestChangesReachFeed(t *testing.T) {
	pub := &testPublisher{}
	bus := events.NewInMemoryBus(testLogger())
	m := New(nil, nil, testContacts{}, NewChangeFeed(pub), testLogger())
	m.RegisterHandlers(bus)

	require.NoError(t, bus.PublishSync(context.Background(), events.NewChange(events.EntityLeads, events.ChangeUpdate, uuid.New(), uuid.New(), nil)))
	require.NoError(t, bus.PublishSync(context.Background(), events.NewChange(events.EntityCampaigns, events.ChangeInsert, uuid.New(), uuid.Nil, nil)))

	assert.Equal(t, []string{"leads.update", "campaigns.insert"}, pub.keys)
}

func TestHandoffMessageOmitsEmptyReason(t *testing.T) {
	e := qualifiedEvent(nil)
	e.Reason = ""
	msg := handoffMessage(e)
	assert.False(t, strings.Contains(msg, "Motivo"))
	assert.Contains(t, msg, "Score: 8")
}
