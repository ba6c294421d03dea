package transport

import (
	"time"

	"github.com/google/uuid"
)

// GenerateAgentRequest is the gerar-agente-personalizado function body.
type GenerateAgentRequest struct {
	VendedorID string `json:"vendedor_id"`
}

// GenerateAgentResponse is the gerar-agente-personalizado success body.
type GenerateAgentResponse struct {
	Success bool          `json:"success"`
	Agente  AgentResponse `json:"agente"`
	Preview string        `json:"preview"`
}

type SettingsResponse struct {
	TransferThreshold      int `json:"transfer_threshold"`
	MaxUnqualifiedMessages int `json:"max_unqualified_messages"`
}

type AgentResponse struct {
	ID            uuid.UUID        `json:"id"`
	SellerID      uuid.UUID        `json:"sellerId"`
	PersonaPrompt string           `json:"personaPrompt"`
	Settings      SettingsResponse `json:"settings"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// UpdateContextRequest edits the seller fields that feed the persona.
type UpdateContextRequest struct {
	Context string `json:"context" validate:"max=4000"`
	Style   string `json:"style" validate:"max=100"`
}
