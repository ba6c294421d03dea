// Package campaigns provides WhatsApp broadcast campaigns.
package campaigns

import (
	"crm_backend/internal/campaigns/handler"
	"crm_backend/internal/campaigns/repository"
	"crm_backend/internal/campaigns/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule builds the module. A nil enqueuer leaves dispatch disabled.
func NewModule(q db.Querier, enqueuer service.Enqueuer, sender service.Sender, recorder service.MessageRecorder, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(q), enqueuer, sender, recorder, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "campaigns"
}

// Service returns the campaign service for the worker and the dashboard.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/campaigns"))
}

var _ apphttp.Module = (*Module)(nil)
