package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm_backend/internal/leads/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

const leadColumns = `id, name, phone, email, company, status, score, channel, notes,
	last_interaction_at, seller_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (domain.Lead, error) {
	var (
		lead    domain.Lead
		status  string
		channel *string
	)
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.Company, &status, &lead.Score, &channel, &lead.Notes,
		&lead.LastInteractionAt, &lead.SellerID, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.LeadStatus(status)
	if channel != nil {
		c := domain.Channel(*channel)
		lead.Channel = &c
	}
	return lead, nil
}

type CreateLeadParams struct {
	Name     string
	Phone    *string
	Email    *string
	Company  *string
	Channel  *domain.Channel
	Notes    *string
	Score    int
	SellerID *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, company, channel, notes, score, seller_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'new')
		RETURNING `+leadColumns,
		params.Name, params.Phone, params.Email, params.Company, channelArg(params.Channel), params.Notes, params.Score, params.SellerID,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := scanLead(r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

type ListParams struct {
	OwnerID *uuid.UUID
	Status  *domain.LeadStatus
	Channel *domain.Channel
	Search  string
	Limit   int
	Offset  int
}

// List returns leads newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	where := []string{"1=1"}
	args := make([]any, 0, 6)

	if params.OwnerID != nil {
		args = append(args, *params.OwnerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Channel != nil {
		args = append(args, string(*params.Channel))
		where = append(where, fmt.Sprintf("channel = $%d", len(args)))
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR company ILIKE $%d OR phone ILIKE $%d)", len(args), len(args), len(args)))
	}

	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit, params.Offset)

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	return items, rows.Err()
}

// UpdateLeadParams carries the fields to overwrite. Nil pointers leave the
// column untouched.
type UpdateLeadParams struct {
	Name              *string
	Phone             *string
	Email             *string
	Company           *string
	Channel           *domain.Channel
	Notes             *string
	Score             *int
	LastInteractionAt *time.Time
	AssignSeller      bool
	SellerID          *uuid.UUID
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			company = COALESCE($5, company),
			channel = COALESCE($6, channel),
			notes = COALESCE($7, notes),
			score = COALESCE($8, score),
			last_interaction_at = COALESCE($9, last_interaction_at),
			seller_id = CASE WHEN $10 THEN $11 ELSE seller_id END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, params.Name, params.Phone, params.Email, params.Company, channelArg(params.Channel), params.Notes, params.Score, params.LastInteractionAt,
		params.AssignSeller, params.SellerID,
	)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (domain.Lead, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id, string(status))
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[domain.LeadStatus]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM leads
		WHERE ($1::uuid IS NULL OR seller_id = $1)
		GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LeadStatus]int, len(domain.LeadStatuses))
	for _, s := range domain.LeadStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.LeadStatus(status)] = n
	}
	return counts, rows.Err()
}

func channelArg(c *domain.Channel) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

var (
	_ LeadReader    = (*Repository)(nil)
	_ LeadWriter    = (*Repository)(nil)
	_ MetricsReader = (*Repository)(nil)
)
