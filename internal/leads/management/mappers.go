package management

import (
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/transport"
)

func ToLeadResponse(lead domain.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                lead.ID,
		Name:              lead.Name,
		Phone:             lead.Phone,
		Email:             lead.Email,
		Company:           lead.Company,
		Status:            string(lead.Status),
		Score:             lead.Score,
		Notes:             lead.Notes,
		LastInteractionAt: lead.LastInteractionAt,
		SellerID:          lead.SellerID,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
	if lead.Channel != nil {
		ch := string(*lead.Channel)
		resp.Channel = &ch
	}
	return resp
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseOptionalChannel(raw *string) (*domain.Channel, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	ch, err := domain.ParseChannel(*raw)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}
