// Package service holds the seller profile use cases.
package service

import (
	"context"
	"errors"
	"strings"

	"crm_backend/internal/events"
	"crm_backend/internal/sellers/domain"
	"crm_backend/internal/sellers/repository"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const msgProfileNotFound = "profile not found"

// Repository is the profile storage used by the service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	UpdateAgentContext(ctx context.Context, id uuid.UUID, agentContext, style *string) (domain.Profile, error)
}

type Service struct {
	repo Repository
	bus  events.Bus
}

func New(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Profile{}, apperr.NotFound(msgProfileNotFound)
	}
	return p, err
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Profile{}, apperr.NotFound(msgProfileNotFound)
	}
	return p, err
}

// UpdateAgentContext stores the seller's own description and style, then
// publishes SellerProfileUpdated synchronously so the agent is regenerated
// before the call returns. Blank values reset the field to its default.
func (s *Service) UpdateAgentContext(ctx context.Context, sellerID uuid.UUID, agentContext, style string) (domain.Profile, error) {
	p, err := s.repo.UpdateAgentContext(ctx, sellerID, blankToNil(agentContext), blankToNil(style))
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Profile{}, apperr.NotFound(msgProfileNotFound)
	}
	if err != nil {
		return domain.Profile{}, err
	}

	if s.bus != nil {
		event := events.SellerProfileUpdated{BaseEvent: events.NewBaseEvent(), SellerID: sellerID}
		if err := s.bus.PublishSync(ctx, event); err != nil {
			return domain.Profile{}, err
		}
	}
	return p, nil
}

func blankToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
