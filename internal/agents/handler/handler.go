package handler

import (
	"context"
	"net/http"
	"strings"

	"crm_backend/internal/agents/domain"
	"crm_backend/internal/agents/service"
	"crm_backend/internal/agents/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgSellerRequired = "vendedor_id é obrigatório"

// ContextUpdater stores the seller's persona fields and regenerates the
// agent before returning.
type ContextUpdater interface {
	UpdateAgentContext(ctx context.Context, sellerID uuid.UUID, agentContext, style string) error
}

type Handler struct {
	svc     *service.Service
	updater ContextUpdater
	val     *validator.Validator
}

func New(svc *service.Service, updater ContextUpdater, val *validator.Validator) *Handler {
	return &Handler{svc: svc, updater: updater, val: val}
}

// GenerateFunction is the gerar-agente-personalizado function. Every failure
// answers 500 {error}.
func (h *Handler) GenerateFunction(c *gin.Context) {
	var req transport.GenerateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.FunctionError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.VendedorID) == "" {
		httpkit.FunctionError(c, apperr.Validation(msgSellerRequired))
		return
	}
	sellerID, err := uuid.Parse(strings.TrimSpace(req.VendedorID))
	if err != nil {
		httpkit.FunctionError(c, apperr.Validation("vendedor_id inválido"))
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), sellerID)
	if err != nil {
		httpkit.FunctionError(c, err)
		return
	}

	httpkit.OK(c, transport.GenerateAgentResponse{
		Success: true,
		Agente:  ToAgentResponse(res.Agent),
		Preview: res.Preview,
	})
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Mine)
	rg.POST("/me/generate", h.GenerateMine)
	rg.PUT("/me/context", h.UpdateContext)
}

func (h *Handler) Mine(c *gin.Context) {
	agent, err := h.svc.Get(c.Request.Context(), httpkit.GetIdentity(c).ProfileID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToAgentResponse(agent))
}

func (h *Handler) GenerateMine(c *gin.Context) {
	res, err := h.svc.Generate(c.Request.Context(), httpkit.GetIdentity(c).ProfileID())
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, gin.H{"agent": ToAgentResponse(res.Agent), "preview": res.Preview})
}

func (h *Handler) UpdateContext(c *gin.Context) {
	var req transport.UpdateContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	sellerID := httpkit.GetIdentity(c).ProfileID()
	if err := h.updater.UpdateAgentContext(c.Request.Context(), sellerID, req.Context, req.Style); httpkit.HandleError(c, err) {
		return
	}

	agent, err := h.svc.Get(c.Request.Context(), sellerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ToAgentResponse(agent))
}

func ToAgentResponse(a domain.Agent) transport.AgentResponse {
	return transport.AgentResponse{
		ID:            a.ID,
		SellerID:      a.SellerID,
		PersonaPrompt: a.PersonaPrompt,
		Settings: transport.SettingsResponse{
			TransferThreshold:      a.Settings.TransferThreshold,
			MaxUnqualifiedMessages: a.Settings.MaxUnqualifiedMessages,
		},
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
