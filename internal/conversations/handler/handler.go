package handler

import (
	"net/http"
	"time"

	"crm_backend/internal/conversations/domain"
	"crm_backend/internal/conversations/service"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

type SendMessageRequest struct {
	Type string `json:"type" validate:"omitempty,oneof=sent received system"`
	Body string `json:"body" validate:"required,notblank,max=4096"`
}

type MessageResponse struct {
	ID        uuid.UUID      `json:"id"`
	LeadID    uuid.UUID      `json:"leadId"`
	Type      string         `json:"type"`
	Body      string         `json:"body"`
	IsRead    bool           `json:"isRead"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RegisterRoutes mounts the chat routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:id/messages", h.List)
	rg.POST("/leads/:id/messages", h.Send)
	rg.PATCH("/messages/:id/read", h.MarkRead)
}

func (h *Handler) List(c *gin.Context) {
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	msgs, err := h.svc.List(c.Request.Context(), actor(c), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toResponse(m))
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) Send(c *gin.Context) {
	leadID, ok := parseID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	m, err := h.svc.Send(c.Request.Context(), actor(c), leadID, req.Type, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(m))
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	m, err := h.svc.MarkRead(c.Request.Context(), actor(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(m))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func toResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		LeadID:    m.LeadID,
		Type:      string(m.Type),
		Body:      m.Body,
		IsRead:    m.IsRead,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

func actor(c *gin.Context) access.Actor {
	return access.FromIdentity(httpkit.GetIdentity(c))
}
