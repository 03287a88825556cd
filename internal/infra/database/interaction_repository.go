package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/hirelocal/internal/entity"
)

const interactionColumns = "id, freelancer_id, lead_id, status, missed_reason, notes, notified_at, viewed_at, responded_at"

type InteractionRepository struct {
	DB *sql.DB
}

var _ entity.InteractionRepository = (*InteractionRepository)(nil)

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func scanInteraction(row rowScanner) (*entity.FreelancerLeadInteraction, error) {
	var i entity.FreelancerLeadInteraction
	err := row.Scan(
		&i.ID,
		&i.FreelancerID,
		&i.LeadID,
		&i.Status,
		&i.MissedReason,
		&i.Notes,
		&i.NotifiedAt,
		&i.ViewedAt,
		&i.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InteractionRepository) UpsertNotified(ctx context.Context, freelancerID, leadID string, at time.Time) (bool, error) {
	query := `
		INSERT INTO freelancer_lead_interactions (id, freelancer_id, lead_id, status, notified_at)
		VALUES ($1, $2, $3, 'notified', $4)
		ON CONFLICT (freelancer_id, lead_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query, uuid.New().String(), freelancerID, leadID, at)
	if err != nil {
		return false, fmt.Errorf("upsert interaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *InteractionRepository) MarkViewed(ctx context.Context, freelancerID, leadID string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	query := `
		UPDATE freelancer_lead_interactions
		SET viewed_at = COALESCE(viewed_at, $3),
			status = CASE WHEN status = 'notified' THEN 'viewed' ELSE status END
		WHERE freelancer_id = $1 AND lead_id = $2
		RETURNING ` + interactionColumns

	row, err := scanInteraction(r.DB.QueryRowContext(ctx, query, freelancerID, leadID, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInteractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark viewed: %w", err)
	}
	return row, nil
}

// RecordResponse writes the outcome only while responded_at is NULL. A conflicting row
// that already responded makes the upsert return nothing.
func (r *InteractionRepository) RecordResponse(ctx context.Context, freelancerID, leadID string, outcome entity.InteractionStatus, reason, notes *string, at time.Time) (*entity.FreelancerLeadInteraction, error) {
	if !outcome.Terminal() {
		return nil, entity.ErrInvalidOutcome
	}
	query := `
		INSERT INTO freelancer_lead_interactions
			(id, freelancer_id, lead_id, status, missed_reason, notes, notified_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (freelancer_id, lead_id) DO UPDATE
		SET status = EXCLUDED.status,
			missed_reason = EXCLUDED.missed_reason,
			notes = EXCLUDED.notes,
			responded_at = EXCLUDED.responded_at
		WHERE freelancer_lead_interactions.responded_at IS NULL
		RETURNING ` + interactionColumns

	return responseOutcome(r.DB.QueryRowContext(ctx, query,
		uuid.New().String(), freelancerID, leadID, outcome, reason, notes, at))
}

// responseOutcome reads the RETURNING row of the response upsert. The guarded DO UPDATE
// returns nothing for a pair that already responded.
func responseOutcome(row rowScanner) (*entity.FreelancerLeadInteraction, error) {
	i, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAlreadyResponded
	}
	if err != nil {
		return nil, fmt.Errorf("record response: %w", err)
	}
	return i, nil
}

func (r *InteractionRepository) MarkMissed(ctx context.Context, leadID, exceptFreelancerID, reason string, at time.Time) (int64, error) {
	query := `
		UPDATE freelancer_lead_interactions
		SET status = 'missed', missed_reason = $3, responded_at = $4
		WHERE lead_id = $1 AND freelancer_id <> $2 AND responded_at IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, leadID, exceptFreelancerID, reason, at)
	if err != nil {
		return 0, fmt.Errorf("mark missed: %w", err)
	}
	return res.RowsAffected()
}

func (r *InteractionRepository) Find(ctx context.Context, freelancerID, leadID string) (*entity.FreelancerLeadInteraction, error) {
	row, err := scanInteraction(r.DB.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM freelancer_lead_interactions WHERE freelancer_id = $1 AND lead_id = $2`,
		freelancerID, leadID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInteractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select interaction: %w", err)
	}
	return row, nil
}

func (r *InteractionRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.FreelancerLeadInteraction, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+interactionColumns+` FROM freelancer_lead_interactions WHERE lead_id = $1 ORDER BY notified_at`,
		leadID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return collectInteractions(rows)
}

func (r *InteractionRepository) ListByFreelancer(ctx context.Context, freelancerID string, limit int) ([]*entity.FreelancerLeadInteraction, error) {
	q := psql.Select(interactionColumns).
		From("freelancer_lead_interactions").
		Where("freelancer_id = ?", freelancerID).
		OrderBy("notified_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build inbox query: %w", err)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return collectInteractions(rows)
}

func collectInteractions(rows *sql.Rows) ([]*entity.FreelancerLeadInteraction, error) {
	defer rows.Close()
	var out []*entity.FreelancerLeadInteraction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
