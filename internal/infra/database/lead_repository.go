package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/hirelocal/internal/entity"
)

const leadColumns = `id, customer_id, category_id, title, description, budget_min, budget_max,
	location, mobile_number, status, accepted_by, accepted_at, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

var _ entity.LeadRepository = (*LeadRepository)(nil)

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID,
		&l.CustomerID,
		&l.CategoryID,
		&l.Title,
		&l.Description,
		&l.BudgetMin,
		&l.BudgetMax,
		&l.Location,
		&l.MobileNumber,
		&l.Status,
		&l.AcceptedBy,
		&l.AcceptedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, customer_id, category_id, title, description, budget_min, budget_max,
			location, mobile_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.CustomerID,
		lead.CategoryID,
		lead.Title,
		lead.Description,
		lead.BudgetMin,
		lead.BudgetMax,
		lead.Location,
		lead.MobileNumber,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", mapError(err))
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}
	return collectLeads(rows)
}

func (r *LeadRepository) ListByStatus(ctx context.Context, status entity.LeadStatus, limit int) ([]*entity.Lead, error) {
	q := psql.Select(leadColumns).
		From("leads").
		Where("status = ?", status).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lead listing: %w", err)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return collectLeads(rows)
}

func collectLeads(rows *sql.Rows) ([]*entity.Lead, error) {
	defer rows.Close()
	var out []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// TryAccept is one conditional UPDATE: whichever statement Postgres applies first wins,
// the rest see zero rows and are classified from the current row.
func (r *LeadRepository) TryAccept(ctx context.Context, leadID, freelancerID string, at time.Time) (entity.AcceptResult, error) {
	query := `
		UPDATE leads
		SET status = 'accepted', accepted_by = $2, accepted_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + leadColumns

	row := r.DB.QueryRowContext(ctx, query, leadID, freelancerID, at)
	return acceptOutcome(row, func() (*entity.Lead, error) { return r.FindByID(ctx, leadID) })
}

// acceptOutcome classifies the conditional accept. A returned row is the win. No row means
// the lead is gone or left pending already, and current tells which.
func acceptOutcome(row rowScanner, current func() (*entity.Lead, error)) (entity.AcceptResult, error) {
	l, err := scanLead(row)
	if err == nil {
		return entity.AcceptResult{Accepted: true, Lead: l}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return entity.AcceptResult{}, fmt.Errorf("accept lead: %w", err)
	}

	now, err := current()
	if errors.Is(err, entity.ErrLeadNotFound) {
		return entity.AcceptResult{Reason: entity.AcceptNotFound}, nil
	}
	if err != nil {
		return entity.AcceptResult{}, err
	}
	// a pending row here was released by a rollback between the two statements; the
	// caller still lost this round
	if now.Status == entity.LeadAccepted || now.Status == entity.LeadCompleted {
		return entity.AcceptResult{Reason: entity.AcceptAlreadyAccepted, Lead: now}, nil
	}
	return entity.AcceptResult{Reason: entity.AcceptNotPending, Lead: now}, nil
}

// transitionSources keeps the from statuses that may legally move to `to`. Acceptance has its
// own conditional update and never goes through here.
func transitionSources(from []entity.LeadStatus, to entity.LeadStatus) ([]string, error) {
	if to == entity.LeadAccepted {
		return nil, entity.ErrInvalidTransition
	}
	allowed := make([]string, 0, len(from))
	for _, f := range from {
		if entity.CanTransition(f, to) {
			allowed = append(allowed, string(f))
		}
	}
	if len(allowed) == 0 {
		return nil, entity.ErrInvalidTransition
	}
	return allowed, nil
}

func (r *LeadRepository) Transition(ctx context.Context, leadID string, from []entity.LeadStatus, to entity.LeadStatus, at time.Time) (*entity.Lead, error) {
	allowed, err := transitionSources(from, to)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE leads
		SET status = $2::text,
			accepted_by = CASE WHEN $2::text = 'completed' THEN accepted_by END,
			accepted_at = CASE WHEN $2::text = 'completed' THEN accepted_at END,
			updated_at = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + leadColumns

	l, err := scanLead(r.DB.QueryRowContext(ctx, query, leadID, string(to), at, pq.Array(allowed)))
	if errors.Is(err, sql.ErrNoRows) {
		if _, ferr := r.FindByID(ctx, leadID); ferr != nil {
			return nil, ferr
		}
		return nil, entity.ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) ReleaseAcceptance(ctx context.Context, leadID, freelancerID string, at time.Time) error {
	query := `
		UPDATE leads
		SET status = 'pending', accepted_by = NULL, accepted_at = NULL, updated_at = $3
		WHERE id = $1 AND status = 'accepted' AND accepted_by = $2
	`
	res, err := r.DB.ExecContext(ctx, query, leadID, freelancerID, at)
	if err != nil {
		return fmt.Errorf("release lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}

func (r *LeadRepository) ExpirePending(ctx context.Context, cutoff, at time.Time) ([]string, error) {
	query := `
		UPDATE leads
		SET status = 'missed', updated_at = $2
		WHERE status = 'pending' AND created_at < $1
		RETURNING id
	`
	rows, err := r.DB.QueryContext(ctx, query, cutoff, at)
	if err != nil {
		return nil, fmt.Errorf("expire pending leads: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
