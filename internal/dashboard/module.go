package dashboard

import (
	campaignsrepo "crm_backend/internal/campaigns/repository"
	apphttp "crm_backend/internal/http"
	qualrepo "crm_backend/internal/qualification/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboard module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule builds the dashboard over the leads counters and the shared pool.
func NewModule(pool *pgxpool.Pool, leads LeadCounter) *Module {
	svc := NewService(
		leads,
		qualrepo.New(pool),
		campaignsrepo.New(pool),
		&metricsRepository{q: pool},
	)
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "dashboard"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dashboard"))
}

var _ apphttp.Module = (*Module)(nil)
