// Package qualification wires the AI lead-qualification pipeline, its
// function endpoint and the seller-facing qualified-lead panel.
package qualification

import (
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/qualification/handler"
	"crm_backend/internal/qualification/panel"
	"crm_backend/internal/qualification/pipeline"
	"crm_backend/internal/qualification/repository"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/adk/model"
)

// Module is the qualification bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	pipeline *pipeline.Service
	repo     *repository.Repository
}

// NewModule creates the module. llm is the chat model used for both the
// reply and the analysis call.
func NewModule(pool *pgxpool.Pool, llm model.LLM, eventBus events.Bus, cfg config.QualificationConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	pipelineSvc := pipeline.New(repo, llm, eventBus, log, pipeline.Options{
		HistoryLimit:     cfg.GetQualificationHistoryLimit(),
		DefaultThreshold: cfg.GetQualificationDefaultThreshold(),
	})
	panelSvc := panel.New(repo, eventBus)

	return &Module{
		handler:  handler.New(pipelineSvc, panelSvc),
		pipeline: pipelineSvc,
		repo:     repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "qualification"
}

// Pipeline returns the pipeline for the webhook module.
func (m *Module) Pipeline() *pipeline.Service {
	return m.pipeline
}

// Repository exposes phone lookup and dashboard counters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the function endpoint and the CRM panel routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Function("processar-mensagem-ia", m.handler.ProcessMessage)
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
