package adapters

import (
	"context"
	"errors"

	agentsdomain "crm_backend/internal/agents/domain"
	agentsservice "crm_backend/internal/agents/service"
	sellersrepo "crm_backend/internal/sellers/repository"
	"crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// SellerDirectory adapts the seller profile store for agent generation.
type SellerDirectory struct {
	repo *sellersrepo.Repository
}

func NewSellerDirectory(repo *sellersrepo.Repository) *SellerDirectory {
	return &SellerDirectory{repo: repo}
}

func (a *SellerDirectory) PersonaInput(ctx context.Context, sellerID uuid.UUID) (agentsdomain.PersonaInput, error) {
	p, err := a.repo.GetByID(ctx, sellerID)
	if errors.Is(err, sellersrepo.ErrNotFound) {
		return agentsdomain.PersonaInput{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return agentsdomain.PersonaInput{}, err
	}

	in := agentsdomain.PersonaInput{
		Name:     p.Name,
		Email:    p.Email,
		WhatsApp: deref(p.WhatsAppNumber),
		Context:  deref(p.AgentContext),
		Style:    deref(p.CommunicationStyle),
	}
	if p.Portfolio != nil {
		in.Portfolio = string(*p.Portfolio)
	}
	return in, nil
}

func (a *SellerDirectory) MarkAgentActive(ctx context.Context, sellerID uuid.UUID) error {
	return a.repo.SetAgentActive(ctx, sellerID, true)
}

func (a *SellerDirectory) ListSellerIDs(ctx context.Context) ([]uuid.UUID, error) {
	return a.repo.ListSellerIDs(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Compile-time check.
var _ agentsservice.SellerDirectory = (*SellerDirectory)(nil)
