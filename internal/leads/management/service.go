// Package management handles lead CRUD operations.
// Sellers work on their own leads; admins see the whole book.
package management

import (
	"context"
	"errors"

	"crm_backend/internal/events"
	"crm_backend/internal/leads/domain"
	"crm_backend/internal/leads/repository"
	"crm_backend/internal/leads/transport"
	"crm_backend/internal/shared/access"
	"crm_backend/platform/apperr"
	"crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const msgLeadNotFound = "lead not found"

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo Repository
	bus  events.Bus
}

// New creates a new lead management service. bus may be nil.
func New(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Create creates a lead owned by the calling seller.
func (s *Service) Create(ctx context.Context, actor access.Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	channel, err := parseOptionalChannel(optionalString(req.Channel))
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation(err.Error())
	}

	params := repository.CreateLeadParams{
		Name:    sanitize.Text(req.Name),
		Phone:   optionalString(req.Phone),
		Email:   optionalString(req.Email),
		Company: optionalString(sanitize.Text(req.Company)),
		Channel: channel,
		Notes:   optionalString(sanitize.Text(req.Notes)),
		Score:   req.Score,
	}
	if actor.ProfileID != uuid.Nil {
		owner := actor.ProfileID
		params.SellerID = &owner
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	resp := ToLeadResponse(lead)
	s.publish(ctx, events.ChangeInsert, lead, resp)
	return resp, nil
}

// GetByID returns one lead if the actor may see it.
func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// List returns the actor's leads, newest first.
func (s *Service) List(ctx context.Context, actor access.Actor, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{
		OwnerID: actor.OwnerFilter(),
		Search:  req.Search,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	if req.Status != "" {
		status, err := domain.ParseLeadStatus(req.Status)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation(err.Error())
		}
		params.Status = &status
	}
	channel, err := parseOptionalChannel(optionalString(req.Channel))
	if err != nil {
		return transport.LeadListResponse{}, apperr.Validation(err.Error())
	}
	params.Channel = channel

	leads, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, ToLeadResponse(lead))
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// Update overwrites the provided fields. Only admins may reassign the seller.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return transport.LeadResponse{}, err
	}

	channel, err := parseOptionalChannel(req.Channel)
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation(err.Error())
	}

	params := repository.UpdateLeadParams{
		Name:    sanitize.TextPtr(req.Name),
		Phone:   req.Phone,
		Email:   req.Email,
		Company: sanitize.TextPtr(req.Company),
		Channel: channel,
		Notes:   sanitize.TextPtr(req.Notes),
		Score:   req.Score,
	}
	if req.SellerID.Set {
		if !actor.IsAdmin() {
			return transport.LeadResponse{}, apperr.Forbidden("only admins can reassign leads")
		}
		params.AssignSeller = true
		params.SellerID = req.SellerID.Value
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	resp := ToLeadResponse(lead)
	s.publish(ctx, events.ChangeUpdate, lead, resp)
	return resp, nil
}

// UpdateStatus moves a lead to another funnel stage.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	status, err := domain.ParseLeadStatus(req.Status)
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation(err.Error())
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	resp := ToLeadResponse(lead)
	s.publish(ctx, events.ChangeUpdate, lead, resp)
	return resp, nil
}

// load fetches a lead and hides leads the actor does not own behind a 404.
func (s *Service) load(ctx context.Context, actor access.Actor, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, mapNotFound(err)
	}
	if !actor.CanSee(lead.SellerID) {
		return domain.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	return lead, nil
}

func (s *Service) publish(ctx context.Context, op events.ChangeOp, lead domain.Lead, snapshot transport.LeadResponse) {
	if s.bus == nil {
		return
	}
	owner := uuid.Nil
	if lead.SellerID != nil {
		owner = *lead.SellerID
	}
	s.bus.Publish(ctx, events.NewChange(events.EntityLeads, op, lead.ID, owner, snapshot))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}
