package handler

import (
	"net/http"

	"crm_backend/internal/campaigns/domain"
	"crm_backend/internal/campaigns/service"
	"crm_backend/internal/campaigns/transport"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/dispatch", h.Dispatch)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), actor(c))
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.CampaignResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	httpkit.OK(c, gin.H{"items": resp})
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCampaignRequest
	if !h.bind(c, &req) {
		return
	}

	campaign, err := h.svc.Create(c.Request.Context(), actor(c), service.CreateInput{
		Name:             req.Name,
		Message:          req.Message,
		TargetPortfolios: req.TargetPortfolios,
		ScheduledAt:      req.ScheduledAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(campaign))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	campaign, err := h.svc.Get(c.Request.Context(), actor(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateCampaignRequest
	if !h.bind(c, &req) {
		return
	}

	campaign, err := h.svc.Update(c.Request.Context(), actor(c), id, service.UpdateInput{
		Name:             req.Name,
		Message:          req.Message,
		TargetPortfolios: req.TargetPortfolios,
		ScheduledAt:      req.ScheduledAt,
		ClearSchedule:    req.ClearSchedule,
		Status:           req.Status,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

func (h *Handler) Dispatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	campaign, err := h.svc.Dispatch(c.Request.Context(), actor(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, toResponse(campaign))
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid campaign id"))
		return uuid.Nil, false
	}
	return id, true
}

func toResponse(c domain.Campaign) transport.CampaignResponse {
	return transport.CampaignResponse{
		ID:               c.ID,
		Name:             c.Name,
		Message:          c.Message,
		TargetPortfolios: c.TargetPortfolios,
		Status:           string(c.Status),
		ScheduledAt:      c.ScheduledAt,
		TotalSent:        c.TotalSent,
		TotalDelivered:   c.TotalDelivered,
		TotalRead:        c.TotalRead,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func actor(c *gin.Context) access.Actor {
	return access.FromIdentity(httpkit.GetIdentity(c))
}
