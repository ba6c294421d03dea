package webhook

import (
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the webhook-whatsapp function.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// InboundRequest is the provider payload.
type InboundRequest struct {
	Telefone   string `json:"telefone"`
	Mensagem   string `json:"mensagem"`
	InstanceID string `json:"instance_id"`
}

// InboundResponse is the webhook body. Ignored messages carry only Message.
type InboundResponse struct {
	Success         bool       `json:"success"`
	Message         string     `json:"message,omitempty"`
	LeadID          *uuid.UUID `json:"lead_id,omitempty"`
	RespostaEnviada *string    `json:"resposta_enviada,omitempty"`
	DeveTransferir  *bool      `json:"deve_transferir,omitempty"`
	Score           *int       `json:"score,omitempty"`
}

// HandleWhatsApp receives one inbound message. Failures answer 500 {error}.
func (h *Handler) HandleWhatsApp(c *gin.Context) {
	var req InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.FunctionError(c, apperr.BadRequest("invalid request body"))
		return
	}

	outcome, err := h.service.HandleInbound(c.Request.Context(), Inbound{
		Phone:      req.Telefone,
		Text:       req.Mensagem,
		InstanceID: req.InstanceID,
	})
	if err != nil {
		httpkit.FunctionError(c, err)
		return
	}

	httpkit.OK(c, toResponse(outcome))
}

func toResponse(o Outcome) InboundResponse {
	resp := InboundResponse{Success: true, Message: o.Message}
	if o.Processed == nil {
		return resp
	}
	leadID := o.LeadID
	reply := o.Processed.Reply
	transfer := o.Processed.ShouldTransfer
	score := o.Processed.Score
	resp.LeadID = &leadID
	resp.RespostaEnviada = &reply
	resp.DeveTransferir = &transfer
	resp.Score = &score
	return resp
}
