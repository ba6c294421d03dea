// Package repository persists AI agents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crm_backend/internal/agents/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("agent not found")

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

const agentColumns = `id, seller_id, persona_prompt, settings, active, created_at, updated_at`

func scanAgent(row pgx.Row, extra ...any) (domain.Agent, error) {
	var (
		a        domain.Agent
		settings []byte
	)
	dest := append([]any{&a.ID, &a.SellerID, &a.PersonaPrompt, &settings, &a.Active, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Agent{}, ErrNotFound
		}
		return domain.Agent{}, err
	}
	a.Settings = domain.DefaultSettings()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &a.Settings); err != nil {
			return domain.Agent{}, fmt.Errorf("decode agent settings: %w", err)
		}
	}
	return a, nil
}

// GetBySeller returns the agent owned by sellerID.
func (r *Repository) GetBySeller(ctx context.Context, sellerID uuid.UUID) (domain.Agent, error) {
	return scanAgent(r.q.QueryRow(ctx, `SELECT `+agentColumns+` FROM ai_agents WHERE seller_id = $1`, sellerID))
}

// Upsert stores the persona for sellerID. An existing agent keeps its id and
// settings and gets a fresh updated_at; a new one is inserted with settings.
// The boolean reports whether a row was inserted.
func (r *Repository) Upsert(ctx context.Context, sellerID uuid.UUID, persona string, settings domain.Settings) (domain.Agent, bool, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return domain.Agent{}, false, err
	}

	var inserted bool
	agent, err := scanAgent(r.q.QueryRow(ctx, `
		INSERT INTO ai_agents (seller_id, persona_prompt, settings)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (seller_id) DO UPDATE
		SET persona_prompt = EXCLUDED.persona_prompt, updated_at = now()
		RETURNING `+agentColumns+`, (xmax = 0) AS inserted`,
		sellerID, persona, string(raw),
	), &inserted)
	if err != nil {
		return domain.Agent{}, false, err
	}
	return agent, inserted, nil
}
