// Package sellers provides seller profiles and binds authenticated users to them.
package sellers

import (
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/sellers/handler"
	"crm_backend/internal/sellers/repository"
	"crm_backend/internal/sellers/service"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is the sellers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
	log     *logger.Logger
}

func NewModule(q db.Querier, eventBus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(q)
	svc := service.New(repo, eventBus)
	return &Module{handler: handler.New(svc), service: svc, repo: repo, log: log}
}

func (m *Module) Name() string {
	return "sellers"
}

// Service returns the profile service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the profile store for adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// ProfileMiddleware returns the middleware installed on the protected group.
func (m *Module) ProfileMiddleware() gin.HandlerFunc {
	return ProfileMiddleware(m.repo, m.log)
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/profile"))
}

var _ apphttp.Module = (*Module)(nil)
