// Package panel serves the seller-facing side of qualification: the list of
// leads waiting for a human, the take-over action and the AI transcript.
package panel

import (
	"context"
	"errors"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/qualification/domain"
	"crm_backend/internal/qualification/repository"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Store is the persistence the panel needs.
type Store interface {
	GetLead(ctx context.Context, leadID uuid.UUID) (domain.LeadSnapshot, error)
	ListQualified(ctx context.Context, ownerID *uuid.UUID) ([]repository.QualifiedLead, error)
	MarkTransferred(ctx context.Context, leadID uuid.UUID, at time.Time) (domain.Record, error)
	ListTurns(ctx context.Context, leadID uuid.UUID) ([]domain.Turn, error)
}

type Service struct {
	store Store
	bus   events.Bus
}

// New creates the panel service. bus may be nil.
func New(store Store, bus events.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// ListQualified returns the actor's qualified leads, highest score first.
func (s *Service) ListQualified(ctx context.Context, actor access.Actor) ([]repository.QualifiedLead, error) {
	return s.store.ListQualified(ctx, actor.OwnerFilter())
}

// TakeOver hands the conversation to the seller. The record moves to
// 'transferred' and the webhook stops routing the lead to the AI agent.
func (s *Service) TakeOver(ctx context.Context, actor access.Actor, leadID uuid.UUID) (domain.Record, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return domain.Record{}, err
	}

	rec, err := s.store.MarkTransferred(ctx, leadID, time.Now())
	if errors.Is(err, repository.ErrRecordNotFound) {
		return domain.Record{}, apperr.NotFound("qualification record not found")
	}
	if err != nil {
		return domain.Record{}, err
	}

	if s.bus != nil {
		owner := uuid.Nil
		if lead.SellerID != nil {
			owner = *lead.SellerID
		}
		s.bus.Publish(ctx, events.ConversationTakenOver{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			SellerID:  actor.ProfileID,
		})
		s.bus.Publish(ctx, events.NewChange(events.EntityQualifications, events.ChangeUpdate, leadID, owner, rec))
	}
	return rec, nil
}

// Transcript returns the AI conversation of a lead, oldest first.
func (s *Service) Transcript(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]domain.Turn, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return nil, err
	}
	return s.store.ListTurns(ctx, leadID)
}

func (s *Service) authorize(ctx context.Context, actor access.Actor, leadID uuid.UUID) (domain.LeadSnapshot, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return domain.LeadSnapshot{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.LeadSnapshot{}, err
	}
	if !actor.CanSee(lead.SellerID) {
		return domain.LeadSnapshot{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}
