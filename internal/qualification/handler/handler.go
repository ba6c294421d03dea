package handler

import (
	"strings"

	"crm_backend/internal/qualification/domain"
	"crm_backend/internal/qualification/panel"
	"crm_backend/internal/qualification/pipeline"
	"crm_backend/internal/qualification/repository"
	"crm_backend/internal/qualification/transport"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgMissingFields = "lead_id e mensagem são obrigatórios"

type Handler struct {
	pipeline *pipeline.Service
	panel    *panel.Service
}

func New(pipelineSvc *pipeline.Service, panelSvc *panel.Service) *Handler {
	return &Handler{pipeline: pipelineSvc, panel: panelSvc}
}

// ProcessMessage is the processar-mensagem-ia function. Every failure,
// including a malformed body, answers 500 {error}.
func (h *Handler) ProcessMessage(c *gin.Context) {
	var req transport.ProcessMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.FunctionError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.LeadID) == "" || strings.TrimSpace(req.Mensagem) == "" {
		httpkit.FunctionError(c, apperr.Validation(msgMissingFields))
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.FunctionError(c, apperr.Validation("lead_id inválido"))
		return
	}

	result, err := h.pipeline.Process(c.Request.Context(), leadID, req.Mensagem)
	if err != nil {
		httpkit.FunctionError(c, err)
		return
	}

	httpkit.OK(c, transport.ProcessMessageResponse{
		Success:        true,
		Resposta:       result.Reply,
		DeveTransferir: result.ShouldTransfer,
		Score:          result.Score,
		Motivo:         result.Reason,
	})
}

// RegisterRoutes mounts the CRM panel routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/qualifications/qualified", h.ListQualified)
	rg.POST("/qualifications/:leadId/take-over", h.TakeOver)
	rg.GET("/leads/:id/ai-turns", h.Transcript)
}

func (h *Handler) ListQualified(c *gin.Context) {
	items, err := h.panel.ListQualified(c.Request.Context(), actor(c))
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.QualifiedLeadResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toQualifiedResponse(item))
	}
	httpkit.OK(c, gin.H{"items": resp})
}

func (h *Handler) TakeOver(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead id"))
		return
	}

	rec, err := h.panel.TakeOver(c.Request.Context(), actor(c), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toRecordResponse(rec))
}

func (h *Handler) Transcript(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead id"))
		return
	}

	turns, err := h.panel.Transcript(c.Request.Context(), actor(c), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := make([]transport.TurnResponse, 0, len(turns))
	for _, t := range turns {
		item := transport.TurnResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Body:        t.Body,
			Score:       t.Score,
			Transferred: t.Transferred,
			CreatedAt:   t.CreatedAt,
		}
		if t.Metadata != nil {
			item.Criteria = t.Metadata.Criteria
			item.Reason = t.Metadata.Reason
		}
		resp = append(resp, item)
	}
	httpkit.OK(c, gin.H{"items": resp})
}

func toRecordResponse(rec domain.Record) transport.RecordResponse {
	return transport.RecordResponse{
		ID:              rec.ID,
		LeadID:          rec.LeadID,
		CurrentScore:    rec.CurrentScore,
		Status:          string(rec.Status),
		MatchedCriteria: rec.MatchedCriteria,
		TransferReason:  rec.TransferReason,
		TransferredAt:   rec.TransferredAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func toQualifiedResponse(item repository.QualifiedLead) transport.QualifiedLeadResponse {
	return transport.QualifiedLeadResponse{
		RecordResponse: toRecordResponse(item.Record),
		LeadName:       item.LeadName,
		LeadPhone:      item.LeadPhone,
		SellerID:       item.SellerID,
	}
}

func actor(c *gin.Context) access.Actor {
	return access.FromIdentity(httpkit.GetIdentity(c))
}
