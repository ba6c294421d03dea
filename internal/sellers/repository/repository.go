package repository

import (
	"context"
	"errors"

	"crm_backend/internal/sellers/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("profile not found")

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

const profileColumns = `id, user_id, name, email, whatsapp_number, portfolio, agent_context,
	communication_style, agent_active, role, created_at, updated_at`

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p         domain.Profile
		portfolio *string
		role      string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.WhatsAppNumber, &portfolio, &p.AgentContext,
		&p.CommunicationStyle, &p.AgentActive, &role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	p.Role = domain.Role(role)
	if portfolio != nil {
		pf := domain.Portfolio(*portfolio)
		p.Portfolio = &pf
	}
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	return scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	return scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

// UpdateAgentContext overwrites the fields that feed the persona prompt.
// Nil values clear the column so the persona falls back to its defaults.
func (r *Repository) UpdateAgentContext(ctx context.Context, id uuid.UUID, agentContext, style *string) (domain.Profile, error) {
	return scanProfile(r.q.QueryRow(ctx, `
		UPDATE profiles
		SET agent_context = $2, communication_style = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns, id, agentContext, style))
}

// SetAgentActive flags whether the seller's AI agent is live.
func (r *Repository) SetAgentActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE profiles SET agent_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSellerIDs returns every seller profile ID, oldest first.
func (r *Repository) ListSellerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM profiles WHERE role = 'seller' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
