// Package service implements campaign management, dispatch and delivery.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm_backend/internal/campaigns/domain"
	"crm_backend/internal/campaigns/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/metrics"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgNotFound         = "campaign not found"
	msgDispatchDisabled = "campaign dispatch disabled"
)

// Store is the campaign storage used by the service.
type Store interface {
	Create(ctx context.Context, p repository.CreateParams) (domain.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Campaign, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdateParams) (domain.Campaign, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (domain.Campaign, error)
	Targets(ctx context.Context, campaignID uuid.UUID) ([]domain.Target, error)
	ClaimDelivery(ctx context.Context, campaignID, leadID uuid.UUID) (bool, error)
	FinishDelivery(ctx context.Context, campaignID, leadID uuid.UUID, sendErr error) error
	Totals(ctx context.Context, ownerID *uuid.UUID) (domain.Totals, error)
}

// Enqueuer schedules the background broadcast of a campaign.
type Enqueuer interface {
	EnqueueCampaignDispatch(ctx context.Context, campaignID uuid.UUID, runAt time.Time) error
}

// Sender delivers a WhatsApp text.
type Sender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// MessageRecorder writes the broadcast into the lead's conversation log.
type MessageRecorder interface {
	RecordCampaignMessage(ctx context.Context, leadID, sellerID, campaignID uuid.UUID, body string) error
}

type Service struct {
	store    Store
	enqueuer Enqueuer
	sender   Sender
	recorder MessageRecorder
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates the service. A nil enqueuer disables dispatch; a nil sender
// makes the worker fail every delivery.
func New(store Store, enqueuer Enqueuer, sender Sender, recorder MessageRecorder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		enqueuer: enqueuer,
		sender:   sender,
		recorder: recorder,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name             string
	Message          string
	TargetPortfolios []string
	ScheduledAt      *time.Time
}

func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (domain.Campaign, error) {
	name := sanitize.Text(in.Name)
	if name == "" || strings.TrimSpace(in.Message) == "" {
		return domain.Campaign{}, apperr.Validation("name and message are required")
	}
	if len(in.TargetPortfolios) == 0 {
		return domain.Campaign{}, apperr.Validation("at least one portfolio is required")
	}

	c, err := s.store.Create(ctx, repository.CreateParams{
		Name:             name,
		Message:          in.Message,
		TargetPortfolios: dedupe(in.TargetPortfolios),
		ScheduledAt:      in.ScheduledAt,
		CreatedBy:        actor.ProfileID,
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	s.publishChange(ctx, events.ChangeInsert, c)
	return c, nil
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (domain.Campaign, error) {
	return s.load(ctx, actor, id)
}

func (s *Service) List(ctx context.Context, actor access.Actor) ([]domain.Campaign, error) {
	return s.store.List(ctx, actor.OwnerFilter())
}

type UpdateInput struct {
	Name             *string
	Message          *string
	TargetPortfolios []string
	ScheduledAt      *time.Time
	ClearSchedule    bool
	Status           *string
}

// Update edits a campaign that has not started. The only status changes
// allowed here are back to draft and cancelled.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, in UpdateInput) (domain.Campaign, error) {
	current, err := s.load(ctx, actor, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := current.CheckEditable(); err != nil {
		return domain.Campaign{}, apperr.Conflict(err.Error())
	}

	params := repository.UpdateParams{
		Name:          sanitize.TextPtr(in.Name),
		Message:       in.Message,
		ScheduledAt:   in.ScheduledAt,
		ClearSchedule: in.ClearSchedule,
	}
	if in.TargetPortfolios != nil {
		if len(in.TargetPortfolios) == 0 {
			return domain.Campaign{}, apperr.Validation("at least one portfolio is required")
		}
		params.TargetPortfolios = dedupe(in.TargetPortfolios)
	}
	if in.Status != nil {
		status, err := domain.ParseCampaignStatus(*in.Status)
		if err != nil {
			return domain.Campaign{}, apperr.Validation(err.Error())
		}
		if status != domain.StatusDraft && status != domain.StatusCancelled {
			return domain.Campaign{}, apperr.Validation("status can only be set to draft or cancelled; use dispatch")
		}
		params.Status = &status
	}

	c, err := s.store.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Campaign{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	s.publishChange(ctx, events.ChangeUpdate, c)
	return c, nil
}

// Dispatch moves the campaign to running (or scheduled) and queues the
// broadcast for its schedule.
func (s *Service) Dispatch(ctx context.Context, actor access.Actor, id uuid.UUID) (domain.Campaign, error) {
	current, err := s.load(ctx, actor, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := current.CheckDispatch(); err != nil {
		return domain.Campaign{}, apperr.Conflict(err.Error())
	}
	if s.enqueuer == nil {
		return domain.Campaign{}, apperr.Conflict(msgDispatchDisabled)
	}

	now := s.now()
	next := current.DispatchStatus(now)
	c, err := s.store.SetStatus(ctx, id, next)
	if err != nil {
		return domain.Campaign{}, err
	}

	runAt := now
	if next == domain.StatusScheduled {
		runAt = *current.ScheduledAt
	}
	if err := s.enqueuer.EnqueueCampaignDispatch(ctx, id, runAt); err != nil {
		if _, revertErr := s.store.SetStatus(ctx, id, current.Status); revertErr != nil {
			s.log.DatabaseError("revert campaign status", revertErr)
		}
		return domain.Campaign{}, apperr.Upstream("failed to queue campaign", err)
	}

	s.log.WithContext(ctx).Info("campaign dispatched", "campaignId", id, "status", next, "runAt", runAt)
	if s.bus != nil {
		s.bus.Publish(ctx, events.CampaignDispatched{BaseEvent: events.NewBaseEvent(), CampaignID: id, ActorID: actor.ProfileID})
	}
	s.publishChange(ctx, events.ChangeUpdate, c)
	return c, nil
}

// RunResult summarizes one worker run.
type RunResult struct {
	Sent    int
	Failed  int
	Skipped int
}

// Run delivers a dispatched campaign. Leads already delivered to are
// skipped, so a retried task never sends twice. Cancelled or finished
// campaigns are ignored.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (RunResult, error) {
	log := s.log.WithContext(ctx).WithAttrs("campaignId", id)

	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("campaign vanished before delivery")
		return RunResult{}, nil
	}
	if err != nil {
		return RunResult{}, err
	}
	if c.Status != domain.StatusRunning && c.Status != domain.StatusScheduled {
		log.Info("campaign skipped", "status", c.Status)
		return RunResult{}, nil
	}
	if c.Status == domain.StatusScheduled {
		if c, err = s.store.SetStatus(ctx, id, domain.StatusRunning); err != nil {
			return RunResult{}, err
		}
		s.publishChange(ctx, events.ChangeUpdate, c)
	}

	targets, err := s.store.Targets(ctx, id)
	if err != nil {
		return RunResult{}, err
	}

	var res RunResult
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		claimed, err := s.store.ClaimDelivery(ctx, id, target.LeadID)
		if err != nil {
			return res, err
		}
		if !claimed {
			res.Skipped++
			continue
		}

		sendErr := s.send(ctx, target.Phone, c.Message)
		if err := s.store.FinishDelivery(ctx, id, target.LeadID, sendErr); err != nil {
			return res, err
		}
		if sendErr != nil {
			res.Failed++
			metrics.CampaignDeliveries.WithLabelValues("failed").Inc()
			log.Warn("campaign delivery failed", "leadId", target.LeadID, "error", sendErr)
			continue
		}
		res.Sent++
		metrics.CampaignDeliveries.WithLabelValues("sent").Inc()

		if s.recorder != nil {
			if err := s.recorder.RecordCampaignMessage(ctx, target.LeadID, target.SellerID, id, c.Message); err != nil {
				log.Warn("campaign message not logged", "leadId", target.LeadID, "error", err)
			}
		}
	}

	c, err = s.store.SetStatus(ctx, id, domain.StatusCompleted)
	if err != nil {
		return res, err
	}
	log.Info("campaign completed", "sent", res.Sent, "failed", res.Failed, "skipped", res.Skipped)
	if s.bus != nil {
		s.bus.Publish(ctx, events.CampaignCompleted{BaseEvent: events.NewBaseEvent(), CampaignID: id, Sent: res.Sent, Failed: res.Failed})
	}
	s.publishChange(ctx, events.ChangeUpdate, c)
	return res, nil
}

// Totals returns the delivery counters visible to the actor.
func (s *Service) Totals(ctx context.Context, actor access.Actor) (domain.Totals, error) {
	return s.store.Totals(ctx, actor.OwnerFilter())
}

func (s *Service) send(ctx context.Context, phone, message string) error {
	if s.sender == nil {
		return errors.New("no whatsapp gateway configured")
	}
	return s.sender.SendMessage(ctx, phone, message)
}

func (s *Service) load(ctx context.Context, actor access.Actor, id uuid.UUID) (domain.Campaign, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Campaign{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	owner := c.CreatedBy
	if !actor.CanSee(&owner) {
		return domain.Campaign{}, apperr.NotFound(msgNotFound)
	}
	return c, nil
}

func (s *Service) publishChange(ctx context.Context, op events.ChangeOp, c domain.Campaign) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.NewChange(events.EntityCampaigns, op, c.ID, c.CreatedBy, map[string]any{
		"status":    c.Status,
		"totalSent": c.TotalSent,
	}))
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
