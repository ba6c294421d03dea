package adapters

import (
	"context"

	agentshandler "crm_backend/internal/agents/handler"
	sellersservice "crm_backend/internal/sellers/service"

	"github.com/google/uuid"
)

// AgentContextUpdater adapts the seller profile service for the agent screen.
type AgentContextUpdater struct {
	svc *sellersservice.Service
}

func NewAgentContextUpdater(svc *sellersservice.Service) *AgentContextUpdater {
	return &AgentContextUpdater{svc: svc}
}

func (a *AgentContextUpdater) UpdateAgentContext(ctx context.Context, sellerID uuid.UUID, agentContext, style string) error {
	_, err := a.svc.UpdateAgentContext(ctx, sellerID, agentContext, style)
	return err
}

// Compile-time check.
var _ agentshandler.ContextUpdater = (*AgentContextUpdater)(nil)
