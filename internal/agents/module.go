// Package agents generates the per-seller AI personas and serves the agent
// screen and the gerar-agente-personalizado function.
package agents

import (
	"crm_backend/internal/agents/handler"
	"crm_backend/internal/agents/repository"
	"crm_backend/internal/agents/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"
)

// Module is the agents bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule builds the module and subscribes it to seller profile updates.
func NewModule(q db.Querier, sellers service.SellerDirectory, updater handler.ContextUpdater, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(q), sellers, eventBus, log)
	if eventBus != nil {
		svc.Subscribe(eventBus)
	}
	return &Module{
		handler: handler.New(svc, updater, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "agents"
}

// Service returns the generator for batch regeneration.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Function("gerar-agente-personalizado", m.handler.GenerateFunction)
	m.handler.RegisterRoutes(ctx.Protected.Group("/agents"))
}

var _ apphttp.Module = (*Module)(nil)
