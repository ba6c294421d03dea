// Package webhook receives inbound WhatsApp messages and routes them into
// the qualification pipeline.
package webhook

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the webhook module. sender may be nil when no WhatsApp
// gateway is configured.
func NewModule(leads LeadFinder, qualifier Qualifier, sender ReplySender, autoReply bool, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(NewService(leads, qualifier, sender, autoReply, log))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook-whatsapp function. The provider delivers
// every lead from a few addresses, so the route is not rate limited.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Function("webhook-whatsapp", m.handler.HandleWhatsApp)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
