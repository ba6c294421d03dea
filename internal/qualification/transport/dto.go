package transport

import (
	"time"

	"github.com/google/uuid"
)

// ProcessMessageRequest is the body of the processar-mensagem-ia function.
type ProcessMessageRequest struct {
	LeadID   string `json:"lead_id"`
	Mensagem string `json:"mensagem"`
}

// ProcessMessageResponse mirrors the function's success body.
type ProcessMessageResponse struct {
	Success        bool   `json:"success"`
	Resposta       string `json:"resposta"`
	DeveTransferir bool   `json:"deve_transferir"`
	Score          int    `json:"score"`
	Motivo         string `json:"motivo"`
}

type RecordResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          uuid.UUID  `json:"leadId"`
	CurrentScore    int        `json:"currentScore"`
	Status          string     `json:"status"`
	MatchedCriteria []string   `json:"matchedCriteria"`
	TransferReason  *string    `json:"transferReason,omitempty"`
	TransferredAt   *time.Time `json:"transferredAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type QualifiedLeadResponse struct {
	RecordResponse
	LeadName  string     `json:"leadName"`
	LeadPhone *string    `json:"leadPhone,omitempty"`
	SellerID  *uuid.UUID `json:"sellerId,omitempty"`
}

type TurnResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Body        string    `json:"body"`
	Score       *int      `json:"score,omitempty"`
	Transferred *bool     `json:"transferred,omitempty"`
	Criteria    []string  `json:"criteria,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
