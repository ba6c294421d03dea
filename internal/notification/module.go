// Package notification reacts to domain events: it pushes change
// notifications to connected browsers, forwards them to the optional AMQP
// feed, and alerts sellers when the AI agent hands a lead over.
package notification

import (
	"context"
	"fmt"
	"strings"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/notification/sse"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// SellerContact is how a seller is reached outside the CRM.
type SellerContact struct {
	Name     string
	Email    string
	WhatsApp string
}

// SellerContacts resolves a seller's contact details.
type SellerContacts interface {
	SellerContact(ctx context.Context, sellerID uuid.UUID) (SellerContact, error)
}

// WhatsAppSender sends WhatsApp messages.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender   email.Sender
	whatsapp WhatsAppSender
	sellers  SellerContacts
	sse      *sse.Service
	feed     *ChangeFeed
	panelURL string
	log      *logger.Logger
}

// New creates the module. whatsapp and feed may be nil.
func New(sender email.Sender, whatsapp WhatsAppSender, sellers SellerContacts, feed *ChangeFeed, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender:   sender,
		whatsapp: whatsapp,
		sellers:  sellers,
		sse:      sse.New(log),
		feed:     feed,
		log:      log,
	}
}

// SetPanelURL sets the link placed in handoff emails.
func (m *Module) SetPanelURL(url string) { m.panelURL = url }

// SSE exposes the stream hub.
func (m *Module) SSE() *sse.Service { return m.sse }

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events/stream", m.sse.Handler())
}

// RegisterHandlers subscribes to the handoff event and every change feed.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
	for _, entity := range events.ChangeEntities {
		events.SubscribeChanges(bus, entity, m.handleChange)
	}
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadQualified:
		return m.handleLeadQualified(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleChange(ctx context.Context, change events.Change) error {
	m.sse.PublishChange(change)
	if m.feed == nil {
		return nil
	}
	if err := m.feed.Forward(ctx, change); err != nil {
		return fmt.Errorf("forward %s: %w", RoutingKey(change), err)
	}
	return nil
}

func (m *Module) handleLeadQualified(ctx context.Context, e events.LeadQualified) error {
	var owner uuid.UUID
	if e.SellerID != nil {
		owner = *e.SellerID
	}
	m.sse.Publish(owner, sse.Event{
		Type:    sse.EventLeadQualified,
		LeadID:  e.LeadID,
		Message: e.Reason,
		Data:    map[string]any{"score": e.Score, "leadName": e.LeadName},
	})

	if e.SellerID == nil {
		return nil
	}
	contact, err := m.sellers.SellerContact(ctx, *e.SellerID)
	if err != nil {
		return fmt.Errorf("seller contact: %w", err)
	}

	log := m.log.WithContext(ctx).WithAttrs("leadId", e.LeadID, "sellerId", *e.SellerID)
	if contact.Email != "" {
		if err := m.sender.SendLeadQualifiedEmail(ctx, contact.Email, email.LeadQualified{
			SellerName: contact.Name,
			LeadName:   e.LeadName,
			LeadPhone:  e.LeadPhone,
			Score:      e.Score,
			Reason:     e.Reason,
			PanelURL:   m.panelURL,
		}); err != nil {
			log.Warn("handoff email failed", "error", err)
		}
	}
	if m.whatsapp != nil && contact.WhatsApp != "" {
		if err := m.whatsapp.SendMessage(ctx, contact.WhatsApp, handoffMessage(e)); err != nil {
			log.Warn("handoff whatsapp failed", "error", err)
		}
	}
	return nil
}

func handoffMessage(e events.LeadQualified) string {
	var b strings.Builder
	b.WriteString("🔥 Lead qualificado pelo agente de IA!\n\n")
	fmt.Fprintf(&b, "Nome: %s\n", e.LeadName)
	fmt.Fprintf(&b, "Telefone: %s\n", e.LeadPhone)
	fmt.Fprintf(&b, "Score: %d\n", e.Score)
	if e.Reason != "" {
		fmt.Fprintf(&b, "Motivo: %s\n", e.Reason)
	}
	b.WriteString("\nAssuma a conversa pelo painel do CRM.")
	return b.String()
}

var _ apphttp.Module = (*Module)(nil)
