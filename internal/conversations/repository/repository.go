// Package repository persists conversation messages.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crm_backend/internal/conversations/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrMessageNotFound = errors.New("message not found")
)

type Repository struct {
	q db.Querier
}

func New(q db.Querier) *Repository {
	return &Repository{q: q}
}

const messageColumns = `id, lead_id, message_type, body, is_read, metadata, created_at`

func scanMessage(row pgx.Row, extra ...any) (domain.Message, error) {
	var (
		m        domain.Message
		msgType  string
		metadata []byte
	)
	dest := append([]any{&m.ID, &m.LeadID, &msgType, &m.Body, &m.IsRead, &metadata, &m.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Message{}, ErrMessageNotFound
		}
		return domain.Message{}, err
	}
	m.Type = domain.MessageType(msgType)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return domain.Message{}, fmt.Errorf("decode message metadata: %w", err)
		}
	}
	return m, nil
}

// LeadOwner returns the seller that owns leadID, nil when unassigned.
func (r *Repository) LeadOwner(ctx context.Context, leadID uuid.UUID) (*uuid.UUID, error) {
	var owner *uuid.UUID
	err := r.q.QueryRow(ctx, `SELECT seller_id FROM leads WHERE id = $1`, leadID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return owner, err
}

// ListByLead returns the conversation of leadID, oldest first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+messageColumns+`
		FROM conversation_messages
		WHERE lead_id = $1
		ORDER BY created_at, id`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type InsertParams struct {
	LeadID   uuid.UUID
	Type     domain.MessageType
	Body     string
	Metadata map[string]any
}

// Insert appends a message and bumps the lead's last interaction time.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (domain.Message, error) {
	var metadata []byte
	if p.Metadata != nil {
		raw, err := json.Marshal(p.Metadata)
		if err != nil {
			return domain.Message{}, err
		}
		metadata = raw
	}

	m, err := scanMessage(r.q.QueryRow(ctx, `
		WITH touched AS (
			UPDATE leads SET last_interaction_at = now(), updated_at = now() WHERE id = $1
		)
		INSERT INTO conversation_messages (lead_id, message_type, body, metadata)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING `+messageColumns,
		p.LeadID, string(p.Type), p.Body, metadata))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Message{}, ErrLeadNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

// GetWithOwner loads a message with the seller owning its lead.
func (r *Repository) GetWithOwner(ctx context.Context, id uuid.UUID) (domain.Message, *uuid.UUID, error) {
	var owner *uuid.UUID
	m, err := scanMessage(r.q.QueryRow(ctx, `
		SELECT m.id, m.lead_id, m.message_type, m.body, m.is_read, m.metadata, m.created_at, l.seller_id
		FROM conversation_messages m
		JOIN leads l ON l.id = m.lead_id
		WHERE m.id = $1`, id), &owner)
	if err != nil {
		return domain.Message{}, nil, err
	}
	return m, owner, nil
}

// MarkRead flags a message as read.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	return scanMessage(r.q.QueryRow(ctx, `
		UPDATE conversation_messages SET is_read = true
		WHERE id = $1
		RETURNING `+messageColumns, id))
}
