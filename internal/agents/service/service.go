// Package service generates and serves the per-seller AI agents.
package service

import (
	"context"
	"errors"
	"fmt"

	"crm_backend/internal/agents/domain"
	"crm_backend/internal/agents/repository"
	"crm_backend/internal/events"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Store persists agents.
type Store interface {
	GetBySeller(ctx context.Context, sellerID uuid.UUID) (domain.Agent, error)
	Upsert(ctx context.Context, sellerID uuid.UUID, persona string, settings domain.Settings) (domain.Agent, bool, error)
}

// SellerDirectory reads the seller data that feeds the persona.
type SellerDirectory interface {
	PersonaInput(ctx context.Context, sellerID uuid.UUID) (domain.PersonaInput, error)
	MarkAgentActive(ctx context.Context, sellerID uuid.UUID) error
	ListSellerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Generated is the outcome of a generation run.
type Generated struct {
	Agent   domain.Agent
	Created bool
	Preview string
}

type Service struct {
	store   Store
	sellers SellerDirectory
	bus     events.Bus
	log     *logger.Logger
}

func New(store Store, sellers SellerDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, sellers: sellers, bus: bus, log: log}
}

// Subscribe regenerates the agent whenever a seller edits their profile.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(events.SellerProfileUpdated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.SellerProfileUpdated)
		if !ok {
			return nil
		}
		_, err := s.Generate(ctx, e.SellerID)
		return err
	}))
}

// Generate renders the seller's persona and stores it. A new agent starts
// with the default settings; an existing one only has its persona replaced.
func (s *Service) Generate(ctx context.Context, sellerID uuid.UUID) (Generated, error) {
	input, err := s.sellers.PersonaInput(ctx, sellerID)
	if err != nil {
		return Generated{}, err
	}

	persona, err := domain.RenderPersona(input)
	if err != nil {
		return Generated{}, apperr.Wrap(apperr.KindInternal, "failed to render persona", err)
	}
	agent, created, err := s.store.Upsert(ctx, sellerID, persona, domain.DefaultSettings())
	if err != nil {
		return Generated{}, err
	}
	if err := s.sellers.MarkAgentActive(ctx, sellerID); err != nil {
		return Generated{}, err
	}

	if s.log != nil {
		s.log.WithContext(ctx).Info("agent generated",
			"agentId", agent.ID, "sellerId", sellerID, "created", created)
	}
	if s.bus != nil {
		op := events.ChangeUpdate
		if created {
			op = events.ChangeInsert
		}
		s.bus.Publish(ctx, events.AgentGenerated{
			BaseEvent: events.NewBaseEvent(),
			AgentID:   agent.ID,
			SellerID:  sellerID,
			Created:   created,
		})
		s.bus.Publish(ctx, events.NewChange(events.EntityAgents, op, agent.ID, sellerID, nil))
	}

	return Generated{Agent: agent, Created: created, Preview: domain.Preview(persona)}, nil
}

// Get returns the seller's agent.
func (s *Service) Get(ctx context.Context, sellerID uuid.UUID) (domain.Agent, error) {
	agent, err := s.store.GetBySeller(ctx, sellerID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Agent{}, apperr.NotFound("agent not found")
	}
	return agent, err
}

// RegenerateAll regenerates every seller's agent. It keeps going past
// failures and returns how many succeeded along with the joined errors.
func (s *Service) RegenerateAll(ctx context.Context) (int, error) {
	ids, err := s.sellers.ListSellerIDs(ctx)
	if err != nil {
		return 0, err
	}

	var (
		done int
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Generate(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("seller %s: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}
