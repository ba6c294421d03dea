// Package conversations holds the human chat log of each lead.
package conversations

import (
	"crm_backend/internal/conversations/handler"
	"crm_backend/internal/conversations/repository"
	"crm_backend/internal/conversations/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/db"
	"crm_backend/platform/validator"
)

// Module is the conversations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(q db.Querier, eventBus events.Bus, val *validator.Validator) *Module {
	svc := service.New(repository.New(q), eventBus)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "conversations"
}

// Service returns the message log for the campaign worker.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
