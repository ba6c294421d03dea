// Package service implements the human conversation log.
package service

import (
	"context"
	"errors"
	"strings"

	"crm_backend/internal/conversations/domain"
	"crm_backend/internal/conversations/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound    = "lead not found"
	msgMessageNotFound = "message not found"
)

// Repository is the message storage used by the service.
type Repository interface {
	LeadOwner(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Message, error)
	Insert(ctx context.Context, p repository.InsertParams) (domain.Message, error)
	GetWithOwner(ctx context.Context, id uuid.UUID) (domain.Message, *uuid.UUID, error)
	MarkRead(ctx context.Context, id uuid.UUID) (domain.Message, error)
}

type Service struct {
	repo Repository
	bus  events.Bus
}

func New(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// List returns the conversation of a lead the actor can see, oldest first.
func (s *Service) List(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListByLead(ctx, leadID)
}

// Send appends a message to a lead the actor can see. The type defaults to sent.
func (s *Service) Send(ctx context.Context, actor access.Actor, leadID uuid.UUID, msgType, body string) (domain.Message, error) {
	t, err := domain.ParseMessageType(msgType)
	if err != nil {
		return domain.Message{}, apperr.Validation(err.Error())
	}
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, apperr.Validation("message body is required")
	}

	owner, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return domain.Message{}, err
	}

	return s.Record(ctx, leadID, owner, t, body, nil)
}

// Record appends a message without an actor check. Used by the campaign worker.
func (s *Service) Record(ctx context.Context, leadID uuid.UUID, owner *uuid.UUID, t domain.MessageType, body string, metadata map[string]any) (domain.Message, error) {
	m, err := s.repo.Insert(ctx, repository.InsertParams{LeadID: leadID, Type: t, Body: body, Metadata: metadata})
	if errors.Is(err, repository.ErrLeadNotFound) {
		return domain.Message{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return domain.Message{}, err
	}
	s.publish(ctx, events.ChangeInsert, m, owner)
	return m, nil
}

// MarkRead flags a message as read.
func (s *Service) MarkRead(ctx context.Context, actor access.Actor, id uuid.UUID) (domain.Message, error) {
	_, owner, err := s.repo.GetWithOwner(ctx, id)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return domain.Message{}, apperr.NotFound(msgMessageNotFound)
	}
	if err != nil {
		return domain.Message{}, err
	}
	if !actor.CanSee(owner) {
		return domain.Message{}, apperr.NotFound(msgMessageNotFound)
	}

	m, err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return domain.Message{}, apperr.NotFound(msgMessageNotFound)
	}
	if err != nil {
		return domain.Message{}, err
	}
	s.publish(ctx, events.ChangeUpdate, m, owner)
	return m, nil
}

func (s *Service) authorize(ctx context.Context, actor access.Actor, leadID uuid.UUID) (*uuid.UUID, error) {
	owner, err := s.repo.LeadOwner(ctx, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return nil, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(owner) {
		return nil, apperr.NotFound(msgLeadNotFound)
	}
	return owner, nil
}

func (s *Service) publish(ctx context.Context, op events.ChangeOp, m domain.Message, owner *uuid.UUID) {
	if s.bus == nil {
		return
	}
	ownerID := uuid.Nil
	if owner != nil {
		ownerID = *owner
	}
	s.bus.Publish(ctx, events.NewChange(events.EntityMessages, op, m.ID, ownerID, map[string]any{
		"leadId": m.LeadID,
		"type":   m.Type,
		"isRead": m.IsRead,
	}))
}
