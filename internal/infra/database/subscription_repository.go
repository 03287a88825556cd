package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type SubscriptionRepository struct {
	DB *sql.DB
}

var _ entity.SubscriptionRepository = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

// FindActive filters on both status and end date; the status column alone can be stale.
func (r *SubscriptionRepository) FindActive(ctx context.Context, freelancerID string, typ entity.SubscriptionType, now time.Time) ([]*entity.Subscription, error) {
	query := `
		SELECT id, freelancer_id, type, status, start_date, end_date,
			category_id, area, position, badge_type, created_at, updated_at
		FROM subscriptions
		WHERE freelancer_id = $1
			AND type = $2
			AND status = 'active'
			AND end_date > $3
		ORDER BY end_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, freelancerID, typ, now)
	if err != nil {
		return nil, fmt.Errorf("select subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Subscription
	for rows.Next() {
		var s entity.Subscription
		err := rows.Scan(
			&s.ID,
			&s.FreelancerID,
			&s.Type,
			&s.Status,
			&s.StartDate,
			&s.EndDate,
			&s.CategoryID,
			&s.Area,
			&s.Position,
			&s.BadgeType,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE subscriptions SET status = 'expired', updated_at = $1 WHERE status = 'active' AND end_date <= $1`
	res, err := r.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("expire subscriptions: %w", err)
	}
	return res.RowsAffected()
}
