// Package pipeline runs an inbound customer message through the seller's AI
// agent: it generates a reply, scores the conversation and records the
// outcome, handing the lead to a human once the score reaches the agent's
// transfer threshold.
package pipeline

import (
	"context"
	"errors"
	"time"

	"crm_backend/internal/events"
	"crm_backend/internal/qualification/domain"
	"crm_backend/internal/qualification/repository"
	"crm_backend/platform/ai/gateway"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"

	"github.com/google/uuid"
	"google.golang.org/adk/model"
)

const (
	purposeReply    = "reply"
	purposeAnalysis = "analysis"

	defaultHistoryLimit = 10
	defaultThreshold    = 6
)

// Store is the persistence the pipeline needs.
type Store interface {
	GetLead(ctx context.Context, leadID uuid.UUID) (domain.LeadSnapshot, error)
	GetAgentForSeller(ctx context.Context, sellerID uuid.UUID) (domain.AgentSnapshot, error)
	RecentTurns(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Turn, error)
	AppendTurn(ctx context.Context, params repository.AppendTurnParams) (domain.Turn, error)
	RecordOutcome(ctx context.Context, params repository.OutcomeParams) (repository.Outcome, error)
}

// Options tunes the pipeline. Zero values take the defaults.
type Options struct {
	HistoryLimit     int
	DefaultThreshold int
}

// Result is what the caller gets back for one processed message.
type Result struct {
	LeadID         uuid.UUID
	Reply          string
	ShouldTransfer bool
	Score          int
	Reason         string
}

type Service struct {
	store Store
	llm   model.LLM
	bus   events.Bus
	log   *logger.Logger
	opts  Options
}

// New builds the pipeline. bus may be nil.
func New(store Store, llm model.LLM, bus events.Bus, log *logger.Logger, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.DefaultThreshold <= 0 {
		opts.DefaultThreshold = defaultThreshold
	}
	return &Service{store: store, llm: llm, bus: bus, log: log, opts: opts}
}

// Process handles one inbound message for leadID.
//
// The customer's turn is stored before the reply is generated, so it
// survives a failed reply call. A failed analysis is absorbed into a neutral
// result; every other failure is returned.
func (s *Service) Process(ctx context.Context, leadID uuid.UUID, text string) (Result, error) {
	log := s.log.WithContext(ctx).WithAttrs("leadId", leadID)

	result, err := s.process(ctx, log, leadID, text)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		log.Error("qualification pipeline failed", "error", err)
		return Result{}, err
	}

	outcome := "in_progress"
	if result.ShouldTransfer {
		outcome = "qualified"
	}
	metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	return result, nil
}

func (s *Service) process(ctx context.Context, log *logger.Logger, leadID uuid.UUID, text string) (Result, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return Result{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Result{}, err
	}
	if lead.SellerID == nil {
		return Result{}, apperr.NotFound("lead has no seller")
	}

	agent, err := s.store.GetAgentForSeller(ctx, *lead.SellerID)
	if errors.Is(err, repository.ErrAgentNotFound) {
		return Result{}, apperr.NotFound("agent not found for seller")
	}
	if err != nil {
		return Result{}, err
	}
	threshold := domain.EffectiveThreshold(agent.Threshold, s.opts.DefaultThreshold)

	history, err := s.store.RecentTurns(ctx, leadID, s.opts.HistoryLimit)
	if err != nil {
		return Result{}, err
	}

	zero := 0
	if _, err := s.store.AppendTurn(ctx, repository.AppendTurnParams{
		LeadID:  leadID,
		AgentID: agent.ID,
		Type:    domain.TurnCustomer,
		Body:    text,
		Score:   &zero,
	}); err != nil {
		return Result{}, err
	}

	reply, err := s.generate(ctx, log, purposeReply, buildReplyRequest(agent, lead, history, text))
	if err != nil {
		return Result{}, apperr.Upstream("reply generation failed", err)
	}

	analysis := s.analyse(ctx, log, history, text, threshold)

	outcome, err := s.store.RecordOutcome(ctx, repository.OutcomeParams{
		LeadID:   leadID,
		AgentID:  agent.ID,
		Reply:    reply,
		Analysis: analysis,
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("message qualified",
		"agentId", agent.ID,
		"score", analysis.Score,
		"currentScore", outcome.Record.CurrentScore,
		"threshold", threshold,
		"transfer", analysis.ShouldTransfer,
	)

	s.publish(ctx, lead, outcome, analysis)

	return Result{
		LeadID:         leadID,
		Reply:          reply,
		ShouldTransfer: analysis.ShouldTransfer,
		Score:          analysis.Score,
		Reason:         analysis.Reason,
	}, nil
}

func (s *Service) analyse(ctx context.Context, log *logger.Logger, history []domain.Turn, text string, threshold int) domain.Analysis {
	raw, err := s.generate(ctx, log, purposeAnalysis, buildAnalysisRequest(history, text, threshold))
	if err != nil {
		return domain.FallbackAnalysis()
	}
	analysis, err := domain.ParseAnalysis(raw, threshold)
	if err != nil {
		log.Warn("qualification analysis unreadable", "error", err)
		return domain.FallbackAnalysis()
	}
	return analysis
}

func (s *Service) generate(ctx context.Context, log *logger.Logger, purpose string, req *model.LLMRequest) (string, error) {
	start := time.Now()
	text, err := gateway.GenerateText(ctx, s.llm, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var callErr *gateway.CallError
		if errors.As(err, &callErr) {
			outcome = string(callErr.Kind)
		}
	}
	metrics.LLMCalls.WithLabelValues(purpose, outcome).Inc()
	metrics.LLMDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
	log.LLMCall(purpose, s.llm.Name(), float64(elapsed.Microseconds())/1000, err)

	return text, err
}

func (s *Service) publish(ctx context.Context, lead domain.LeadSnapshot, outcome repository.Outcome, analysis domain.Analysis) {
	if s.bus == nil {
		return
	}
	owner := uuid.Nil
	if lead.SellerID != nil {
		owner = *lead.SellerID
	}

	s.bus.Publish(ctx, events.NewChange(events.EntityQualifications, events.ChangeUpdate, outcome.Record.LeadID, owner, outcome.Record))

	if !analysis.ShouldTransfer {
		return
	}
	s.bus.Publish(ctx, events.NewChange(events.EntityLeads, events.ChangeUpdate, lead.ID, owner, nil))

	phone := ""
	if lead.Phone != nil {
		phone = *lead.Phone
	}
	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		SellerID:  lead.SellerID,
		LeadName:  lead.Name,
		LeadPhone: phone,
		Score:     analysis.Score,
		Reason:    analysis.Reason,
	})
}
