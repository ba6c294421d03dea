package adapters

import (
	"context"

	campaignsservice "crm_backend/internal/campaigns/service"
	"crm_backend/internal/scheduler"

	"github.com/google/uuid"
)

// CampaignRunner lets the job worker drive campaign delivery.
type CampaignRunner struct {
	svc *campaignsservice.Service
}

func NewCampaignRunner(svc *campaignsservice.Service) *CampaignRunner {
	return &CampaignRunner{svc: svc}
}

func (r *CampaignRunner) RunCampaign(ctx context.Context, campaignID uuid.UUID) error {
	_, err := r.svc.Run(ctx, campaignID)
	return err
}

var _ scheduler.CampaignRunner = (*CampaignRunner)(nil)
