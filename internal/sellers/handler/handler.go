package handler

import (
	"time"

	"crm_backend/internal/sellers/domain"
	"crm_backend/internal/sellers/service"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

type ProfileResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	WhatsAppNumber     *string   `json:"whatsappNumber,omitempty"`
	Portfolio          *string   `json:"portfolio,omitempty"`
	AgentContext       *string   `json:"agentContext,omitempty"`
	CommunicationStyle *string   `json:"communicationStyle,omitempty"`
	AgentActive        bool      `json:"agentActive"`
	Role               string    `json:"role"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.GetIdentity(c)
	profile, err := h.svc.GetByID(c.Request.Context(), id.ProfileID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToProfileResponse(profile))
}

func ToProfileResponse(p domain.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Email:              p.Email,
		WhatsAppNumber:     p.WhatsAppNumber,
		AgentContext:       p.AgentContext,
		CommunicationStyle: p.CommunicationStyle,
		AgentActive:        p.AgentActive,
		Role:               string(p.Role),
		UpdatedAt:          p.UpdatedAt,
	}
	if p.Portfolio != nil {
		pf := string(*p.Portfolio)
		resp.Portfolio = &pf
	}
	return resp
}
