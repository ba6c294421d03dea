package adapters

import (
	"context"

	campaignsservice "crm_backend/internal/campaigns/service"
	convdomain "crm_backend/internal/conversations/domain"
	convservice "crm_backend/internal/conversations/service"

	"github.com/google/uuid"
)

// CampaignMessageRecorder logs delivered broadcasts in the lead conversation.
type CampaignMessageRecorder struct {
	svc *convservice.Service
}

func NewCampaignMessageRecorder(svc *convservice.Service) *CampaignMessageRecorder {
	return &CampaignMessageRecorder{svc: svc}
}

func (r *CampaignMessageRecorder) RecordCampaignMessage(ctx context.Context, leadID, sellerID, campaignID uuid.UUID, body string) error {
	owner := sellerID
	_, err := r.svc.Record(ctx, leadID, &owner, convdomain.MessageSent, body, map[string]any{
		"campaignId": campaignID.String(),
	})
	return err
}

var _ campaignsservice.MessageRecorder = (*CampaignMessageRecorder)(nil)
