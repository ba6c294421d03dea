// Package repository persists the AI conversation and qualification state.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm_backend/internal/qualification/domain"
	"crm_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrRecordNotFound = errors.New("qualification record not found")
)

type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	tx  txStarter
	q   db.Querier
	now func() time.Time
}

// New wraps pool. RecordOutcome opens its own transaction on it.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{tx: pool, q: pool, now: time.Now}
}

// GetLead loads a lead joined with its seller's contact fields.
func (r *Repository) GetLead(ctx context.Context, leadID uuid.UUID) (domain.LeadSnapshot, error) {
	var (
		lead        domain.LeadSnapshot
		sellerName  *string
		sellerEmail *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT l.id, l.name, l.phone, l.company, l.channel, l.notes, l.seller_id,
			p.name, p.email, p.whatsapp_number
		FROM leads l
		LEFT JOIN profiles p ON p.id = l.seller_id
		WHERE l.id = $1`, leadID,
	).Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Company, &lead.Channel, &lead.Notes, &lead.SellerID,
		&sellerName, &sellerEmail, &lead.SellerWhatsApp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LeadSnapshot{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.LeadSnapshot{}, err
	}
	if sellerName != nil {
		lead.SellerName = *sellerName
	}
	if sellerEmail != nil {
		lead.SellerEmail = *sellerEmail
	}
	return lead, nil
}

// GetAgentForSeller loads the seller's agent. The returned Threshold is the
// raw stored value; callers resolve defaults.
func (r *Repository) GetAgentForSeller(ctx context.Context, sellerID uuid.UUID) (domain.AgentSnapshot, error) {
	var (
		agent     domain.AgentSnapshot
		threshold *int
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, seller_id, persona_prompt, (settings->>'transfer_threshold')::int
		FROM ai_agents
		WHERE seller_id = $1`, sellerID,
	).Scan(&agent.ID, &agent.SellerID, &agent.Persona, &threshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AgentSnapshot{}, ErrAgentNotFound
	}
	if err != nil {
		return domain.AgentSnapshot{}, err
	}
	if threshold != nil {
		agent.Threshold = *threshold
	}
	return agent, nil
}

const turnColumns = `id, lead_id, agent_id, turn_type, body, score, transferred, metadata, created_at`

func scanTurn(row pgx.Row) (domain.Turn, error) {
	var (
		t        domain.Turn
		turnType string
		metadata []byte
	)
	if err := row.Scan(&t.ID, &t.LeadID, &t.AgentID, &turnType, &t.Body, &t.Score, &t.Transferred, &metadata, &t.CreatedAt); err != nil {
		return domain.Turn{}, err
	}
	typ, err := domain.ParseTurnType(turnType)
	if err != nil {
		return domain.Turn{}, err
	}
	t.Type = typ
	if len(metadata) > 0 {
		var md domain.TurnMetadata
		if err := json.Unmarshal(metadata, &md); err != nil {
			return domain.Turn{}, fmt.Errorf("decode turn metadata: %w", err)
		}
		t.Metadata = &md
	}
	return t, nil
}

// RecentTurns returns up to limit of the latest turns, oldest first.
func (r *Repository) RecentTurns(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Turn, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+turnColumns+`
		FROM ai_turns
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]domain.Turn, 0, limit)
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// ListTurns returns the whole AI conversation of a lead, oldest first.
func (r *Repository) ListTurns(ctx context.Context, leadID uuid.UUID) ([]domain.Turn, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+turnColumns+`
		FROM ai_turns
		WHERE lead_id = $1
		ORDER BY created_at ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := make([]domain.Turn, 0)
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

type AppendTurnParams struct {
	LeadID      uuid.UUID
	AgentID     uuid.UUID
	Type        domain.TurnType
	Body        string
	Score       *int
	Transferred *bool
	Metadata    *domain.TurnMetadata
}

// AppendTurn writes one conversation turn and touches the lead's
// last interaction timestamp.
func (r *Repository) AppendTurn(ctx context.Context, params AppendTurnParams) (domain.Turn, error) {
	return appendTurn(ctx, r.q, params)
}

func appendTurn(ctx context.Context, q db.Querier, params AppendTurnParams) (domain.Turn, error) {
	var metadata []byte
	if params.Metadata != nil {
		encoded, err := json.Marshal(params.Metadata)
		if err != nil {
			return domain.Turn{}, err
		}
		metadata = encoded
	}

	turn, err := scanTurn(q.QueryRow(ctx, `
		INSERT INTO ai_turns (lead_id, agent_id, turn_type, body, score, transferred, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+turnColumns,
		params.LeadID, params.AgentID, string(params.Type), params.Body, params.Score, params.Transferred, metadata,
	))
	if err != nil {
		return domain.Turn{}, err
	}

	if _, err := q.Exec(ctx, `UPDATE leads SET last_interaction_at = $2 WHERE id = $1`, params.LeadID, turn.CreatedAt); err != nil {
		return domain.Turn{}, err
	}
	return turn, nil
}

type OutcomeParams struct {
	LeadID   uuid.UUID
	AgentID  uuid.UUID
	Reply    string
	Analysis domain.Analysis
}

type Outcome struct {
	Turn   domain.Turn
	Record domain.Record
}

// RecordOutcome stores the agent's reply turn, folds the analysis into the
// qualification record and, when the analysis says so, marks the lead
// qualified. All writes share one transaction.
//
// The record row is created if missing and then locked with FOR UPDATE, so
// concurrent runs for the same lead apply Record.Merge one after the other.
func (r *Repository) RecordOutcome(ctx context.Context, params OutcomeParams) (Outcome, error) {
	tx, err := r.tx.Begin(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a := params.Analysis
	score := a.Score
	transferred := a.ShouldTransfer
	turn, err := appendTurn(ctx, tx, AppendTurnParams{
		LeadID:      params.LeadID,
		AgentID:     params.AgentID,
		Type:        domain.TurnAgent,
		Body:        params.Reply,
		Score:       &score,
		Transferred: &transferred,
		Metadata:    &domain.TurnMetadata{Criteria: a.Criteria, Reason: a.Reason},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("append agent turn: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_qualifications (lead_id, current_score, status, matched_criteria)
		VALUES ($1, 0, 'in_progress', '[]')
		ON CONFLICT (lead_id) DO NOTHING`, params.LeadID); err != nil {
		return Outcome{}, fmt.Errorf("ensure qualification: %w", err)
	}

	current, err := scanRecord(tx.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM lead_qualifications
		WHERE lead_id = $1
		FOR UPDATE`, params.LeadID))
	if err != nil {
		return Outcome{}, fmt.Errorf("lock qualification: %w", err)
	}

	merged := current.Merge(a, r.now())
	if merged.MatchedCriteria == nil {
		merged.MatchedCriteria = []string{}
	}
	criteria, err := json.Marshal(merged.MatchedCriteria)
	if err != nil {
		return Outcome{}, err
	}
	record, err := scanRecord(tx.QueryRow(ctx, `
		UPDATE lead_qualifications
		SET current_score = $2, status = $3, matched_criteria = $4,
			transfer_reason = $5, transferred_at = $6, updated_at = $7
		WHERE lead_id = $1
		RETURNING `+recordColumns,
		params.LeadID, merged.CurrentScore, string(merged.Status), criteria,
		merged.TransferReason, merged.TransferredAt, merged.UpdatedAt,
	))
	if err != nil {
		return Outcome{}, fmt.Errorf("update qualification: %w", err)
	}

	if a.ShouldTransfer {
		if _, err := tx.Exec(ctx, `UPDATE leads SET status = 'qualified', updated_at = now() WHERE id = $1`, params.LeadID); err != nil {
			return Outcome{}, fmt.Errorf("mark lead qualified: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Outcome{}, err
	}
	return Outcome{Turn: turn, Record: record}, nil
}

const recordColumns = `id, lead_id, current_score, status, matched_criteria, transfer_reason, transferred_at, created_at, updated_at`

func scanRecord(row pgx.Row) (domain.Record, error) {
	var (
		rec      domain.Record
		status   string
		criteria []byte
	)
	if err := row.Scan(&rec.ID, &rec.LeadID, &rec.CurrentScore, &status, &criteria, &rec.TransferReason, &rec.TransferredAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return domain.Record{}, err
	}
	parsed, err := domain.ParseQualificationStatus(status)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Status = parsed
	rec.MatchedCriteria = []string{}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &rec.MatchedCriteria); err != nil {
			return domain.Record{}, fmt.Errorf("decode matched criteria: %w", err)
		}
	}
	return rec, nil
}

// FindLeadByPhone resolves an inbound phone to a lead by exact match. When
// several leads share the number the most recently updated one wins.
func (r *Repository) FindLeadByPhone(ctx context.Context, phone string) (domain.PhoneMatch, error) {
	var (
		match  domain.PhoneMatch
		status *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT l.id, q.status
		FROM leads l
		LEFT JOIN lead_qualifications q ON q.lead_id = l.id
		WHERE l.phone = $1
		ORDER BY l.updated_at DESC
		LIMIT 1`, phone,
	).Scan(&match.LeadID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PhoneMatch{}, ErrLeadNotFound
	}
	if err != nil {
		return domain.PhoneMatch{}, err
	}
	if status != nil {
		s, err := domain.ParseQualificationStatus(*status)
		if err != nil {
			return domain.PhoneMatch{}, err
		}
		match.QualificationStatus = &s
	}
	return match, nil
}

// QualifiedLead is a row of the qualified-lead panel.
type QualifiedLead struct {
	Record    domain.Record
	LeadName  string
	LeadPhone *string
	SellerID  *uuid.UUID
}

// ListQualified returns qualified records, highest score first. A nil
// ownerID lists every seller's leads.
func (r *Repository) ListQualified(ctx context.Context, ownerID *uuid.UUID) ([]QualifiedLead, error) {
	rows, err := r.q.Query(ctx, `
		SELECT q.id, q.lead_id, q.current_score, q.status, q.matched_criteria, q.transfer_reason,
			q.transferred_at, q.created_at, q.updated_at, l.name, l.phone, l.seller_id
		FROM lead_qualifications q
		JOIN leads l ON l.id = q.lead_id
		WHERE q.status = 'qualified'
			AND ($1::uuid IS NULL OR l.seller_id = $1)
		ORDER BY q.current_score DESC, q.updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]QualifiedLead, 0)
	for rows.Next() {
		var (
			item     QualifiedLead
			status   string
			criteria []byte
		)
		if err := rows.Scan(
			&item.Record.ID, &item.Record.LeadID, &item.Record.CurrentScore, &status, &criteria,
			&item.Record.TransferReason, &item.Record.TransferredAt, &item.Record.CreatedAt, &item.Record.UpdatedAt,
			&item.LeadName, &item.LeadPhone, &item.SellerID,
		); err != nil {
			return nil, err
		}
		parsed, err := domain.ParseQualificationStatus(status)
		if err != nil {
			return nil, err
		}
		item.Record.Status = parsed
		item.Record.MatchedCriteria = []string{}
		if len(criteria) > 0 {
			if err := json.Unmarshal(criteria, &item.Record.MatchedCriteria); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetRecord returns the qualification record of a lead.
func (r *Repository) GetRecord(ctx context.Context, leadID uuid.UUID) (domain.Record, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, `SELECT `+recordColumns+` FROM lead_qualifications WHERE lead_id = $1`, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, ErrRecordNotFound
	}
	return rec, err
}

// MarkTransferred moves a record into the terminal 'transferred' status.
// The transfer timestamp is kept when the pipeline already set one.
func (r *Repository) MarkTransferred(ctx context.Context, leadID uuid.UUID, at time.Time) (domain.Record, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, `
		UPDATE lead_qualifications
		SET status = 'transferred', transferred_at = COALESCE(transferred_at, $2), updated_at = now()
		WHERE lead_id = $1
		RETURNING `+recordColumns, leadID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, ErrRecordNotFound
	}
	return rec, err
}

// CountQualified counts qualified and transferred records for the dashboard.
func (r *Repository) CountQualified(ctx context.Context, ownerID *uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM lead_qualifications q
		JOIN leads l ON l.id = q.lead_id
		WHERE q.status IN ('qualified', 'transferred')
			AND ($1::uuid IS NULL OR l.seller_id = $1)`, ownerID).Scan(&n)
	return n, err
}
