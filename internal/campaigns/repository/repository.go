// Package repository persists campaigns and their deliveries.
package repository

import (
	"context"
	"errors"
	"time"

	"crm_backend/internal/campaigns/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("campaign not found")

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

const campaignColumns = `id, name, message, target_portfolios, status, scheduled_at,
	total_sent, total_delivered, total_read, created_by, created_at, updated_at`

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c      domain.Campaign
		status string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Message, &c.TargetPortfolios, &status, &c.ScheduledAt,
		&c.TotalSent, &c.TotalDelivered, &c.TotalRead, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, ErrNotFound
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	c.Status = domain.CampaignStatus(status)
	return c, nil
}

type CreateParams struct {
	Name             string
	Message          string
	TargetPortfolios []string
	ScheduledAt      *time.Time
	CreatedBy        uuid.UUID
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (domain.Campaign, error) {
	return scanCampaign(r.q.QueryRow(ctx, `
		INSERT INTO campaigns (name, message, target_portfolios, scheduled_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+campaignColumns,
		p.Name, p.Message, p.TargetPortfolios, p.ScheduledAt, p.CreatedBy))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Campaign, error) {
	return scanCampaign(r.q.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

// List returns campaigns newest first. A nil ownerID lists every campaign.
func (r *Repository) List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Campaign, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE $1::uuid IS NULL OR created_by = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateParams holds the editable fields. Nil fields keep their value;
// ClearSchedule removes the schedule.
type UpdateParams struct {
	Name             *string
	Message          *string
	TargetPortfolios []string
	ScheduledAt      *time.Time
	ClearSchedule    bool
	Status           *domain.CampaignStatus
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (domain.Campaign, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	return scanCampaign(r.q.QueryRow(ctx, `
		UPDATE campaigns SET
			name = COALESCE($2, name),
			message = COALESCE($3, message),
			target_portfolios = COALESCE($4, target_portfolios),
			scheduled_at = CASE WHEN $6 THEN NULL ELSE COALESCE($5, scheduled_at) END,
			status = COALESCE($7, status),
			updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns,
		id, p.Name, p.Message, p.TargetPortfolios, p.ScheduledAt, p.ClearSchedule, status))
}

// SetStatus moves a campaign to status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.CampaignStatus) (domain.Campaign, error) {
	return scanCampaign(r.q.QueryRow(ctx, `
		UPDATE campaigns SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns, id, string(status)))
}

// Targets lists the leads with a phone whose seller works one of the
// campaign's portfolios.
func (r *Repository) Targets(ctx context.Context, campaignID uuid.UUID) ([]domain.Target, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.phone, l.seller_id
		FROM campaigns c
		JOIN profiles p ON p.portfolio = ANY(c.target_portfolios)
		JOIN leads l ON l.seller_id = p.id
		WHERE c.id = $1 AND l.phone IS NOT NULL AND btrim(l.phone) <> ''
		ORDER BY l.created_at`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.LeadID, &t.Phone, &t.SellerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ClaimDelivery reserves the (campaign, lead) pair. It reports false when the
// lead was already sent to or is being sent to; failed deliveries can be
// claimed again.
func (r *Repository) ClaimDelivery(ctx context.Context, campaignID, leadID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := r.q.QueryRow(ctx, `
		INSERT INTO campaign_deliveries (campaign_id, lead_id)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id, lead_id) DO UPDATE
		SET status = 'pending', error = NULL, updated_at = now()
		WHERE campaign_deliveries.status = 'failed'
		RETURNING id`, campaignID, leadID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// FinishDelivery stores the send outcome and counts successful sends on
// the campaign.
func (r *Repository) FinishDelivery(ctx context.Context, campaignID, leadID uuid.UUID, sendErr error) error {
	if sendErr != nil {
		_, err := r.q.Exec(ctx, `
			UPDATE campaign_deliveries SET status = 'failed', error = $3, updated_at = now()
			WHERE campaign_id = $1 AND lead_id = $2`, campaignID, leadID, sendErr.Error())
		return err
	}
	_, err := r.q.Exec(ctx, `
		WITH sent AS (
			UPDATE campaign_deliveries SET status = 'sent', error = NULL, updated_at = now()
			WHERE campaign_id = $1 AND lead_id = $2 AND status = 'pending'
			RETURNING campaign_id
		)
		UPDATE campaigns SET total_sent = total_sent + 1, updated_at = now()
		WHERE id IN (SELECT campaign_id FROM sent)`, campaignID, leadID)
	return err
}

// Totals sums the delivery counters. A nil ownerID covers every campaign.
func (r *Repository) Totals(ctx context.Context, ownerID *uuid.UUID) (domain.Totals, error) {
	var t domain.Totals
	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(total_sent), 0), COALESCE(sum(total_delivered), 0), COALESCE(sum(total_read), 0)
		FROM campaigns
		WHERE $1::uuid IS NULL OR created_by = $1`, ownerID,
	).Scan(&t.Campaigns, &t.Sent, &t.Delivered, &t.Read)
	return t, err
}
