package dashboard

import (
	"crm_backend/internal/shared/access"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type SummaryResponse struct {
	TotalLeads    int                    `json:"totalLeads"`
	LeadsByStatus map[string]int         `json:"leadsByStatus"`
	Qualified     int                    `json:"qualified"`
	Campaigns     CampaignTotalsResponse `json:"campaigns"`
	Metrics       SellerMetrics          `json:"metrics"`
}

type CampaignTotalsResponse struct {
	Campaigns int `json:"campaigns"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Read      int `json:"read"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
	rg.GET("/menu", h.Menu)
}

func (h *Handler) Summary(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	sum, err := h.svc.Summary(c.Request.Context(), access.FromIdentity(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	byStatus := make(map[string]int, len(sum.LeadsByStatus))
	for status, n := range sum.LeadsByStatus {
		byStatus[string(status)] = n
	}
	httpkit.OK(c, SummaryResponse{
		TotalLeads:    sum.TotalLeads,
		LeadsByStatus: byStatus,
		Qualified:     sum.Qualified,
		Campaigns: CampaignTotalsResponse{
			Campaigns: sum.Campaigns.Campaigns,
			Sent:      sum.Campaigns.Sent,
			Delivered: sum.Campaigns.Delivered,
			Read:      sum.Campaigns.Read,
		},
		Metrics: sum.Metrics,
	})
}

func (h *Handler) Menu(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	httpkit.OK(c, gin.H{"items": MenuForActor(access.FromIdentity(identity))})
}
