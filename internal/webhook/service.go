package webhook

import (
	"context"
	"errors"
	"strings"

	qualdomain "crm_backend/internal/qualification/domain"
	"crm_backend/internal/qualification/pipeline"
	qualrepo "crm_backend/internal/qualification/repository"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"

	"github.com/google/uuid"
)

const (
	msgIncomplete   = "Dados incompletos"
	msgUnknownLead  = "Lead não encontrado"
	msgTransferred  = "Lead já transferido"
	msgPipelineFail = "Erro ao processar com IA"
)

// LeadFinder resolves an inbound phone number to a lead. Satisfied by the
// qualification repository.
type LeadFinder interface {
	FindLeadByPhone(ctx context.Context, phone string) (qualdomain.PhoneMatch, error)
}

// Qualifier runs the qualification pipeline. Satisfied by pipeline.Service.
type Qualifier interface {
	Process(ctx context.Context, leadID uuid.UUID, text string) (pipeline.Result, error)
}

// ReplySender delivers the agent reply back to the lead.
type ReplySender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// Inbound is one message received from the WhatsApp provider.
type Inbound struct {
	Phone      string
	Text       string
	InstanceID string
}

// Outcome is what the webhook reports back. Processed is nil when the
// message was ignored, in which case Message says why.
type Outcome struct {
	Message   string
	LeadID    uuid.UUID
	Processed *pipeline.Result
}

// Service routes inbound WhatsApp messages into the qualification pipeline.
type Service struct {
	leads     LeadFinder
	qualifier Qualifier
	sender    ReplySender
	autoReply bool
	log       *logger.Logger
}

// NewService creates the webhook service. sender may be nil; replies are only
// delivered when autoReply is set and a sender exists.
func NewService(leads LeadFinder, qualifier Qualifier, sender ReplySender, autoReply bool, log *logger.Logger) *Service {
	return &Service{
		leads:     leads,
		qualifier: qualifier,
		sender:    sender,
		autoReply: autoReply,
		log:       log,
	}
}

// HandleInbound applies the routing rules: incomplete payloads, unknown
// phones and leads already handed to a human are acknowledged without
// touching the pipeline.
func (s *Service) HandleInbound(ctx context.Context, in Inbound) (Outcome, error) {
	log := s.log.WithContext(ctx)

	if strings.TrimSpace(in.Phone) == "" || strings.TrimSpace(in.Text) == "" {
		log.Info("webhook ignored", "reason", "incomplete payload")
		metrics.WebhookOutcomes.WithLabelValues("incomplete").Inc()
		return Outcome{Message: msgIncomplete}, nil
	}

	match, err := s.leads.FindLeadByPhone(ctx, in.Phone)
	if errors.Is(err, qualrepo.ErrLeadNotFound) {
		log.Info("webhook ignored", "reason", "unknown phone", "phone", in.Phone)
		metrics.WebhookOutcomes.WithLabelValues("unknown_lead").Inc()
		return Outcome{Message: msgUnknownLead}, nil
	}
	if err != nil {
		log.DatabaseError("find lead by phone", err)
		metrics.WebhookOutcomes.WithLabelValues("error").Inc()
		return Outcome{}, err
	}

	log = log.WithAttrs("leadId", match.LeadID)
	if match.Transferred() {
		log.Info("webhook ignored", "reason", "lead transferred")
		metrics.WebhookOutcomes.WithLabelValues("transferred").Inc()
		return Outcome{Message: msgTransferred, LeadID: match.LeadID}, nil
	}

	result, err := s.qualifier.Process(ctx, match.LeadID, in.Text)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues("error").Inc()
		return Outcome{}, apperr.Wrap(apperr.KindInternal, msgPipelineFail, err)
	}
	metrics.WebhookOutcomes.WithLabelValues("processed").Inc()

	s.deliver(ctx, log, in, result.Reply)
	return Outcome{LeadID: match.LeadID, Processed: &result}, nil
}

func (s *Service) deliver(ctx context.Context, log *logger.Logger, in Inbound, reply string) {
	if !s.autoReply || s.sender == nil || strings.TrimSpace(reply) == "" {
		return
	}
	if err := s.sender.SendMessage(ctx, in.Phone, reply); err != nil {
		log.Warn("auto-reply failed", "instanceId", in.InstanceID, "error", err)
		return
	}
	log.Info("auto-reply sent", "instanceId", in.InstanceID)
}
