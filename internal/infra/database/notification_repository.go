package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

var _ entity.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.Link,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", mapError(err))
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, f entity.NotificationFilter) ([]*entity.Notification, error) {
	q := psql.Select("id, user_id, type, title, message, link, is_read, read_at, created_at").
		From("notifications").
		Where("user_id = ?", userID)
	if f.UnreadOnly {
		q = q.Where("NOT is_read")
	}
	if f.Since != nil {
		q = q.Where("created_at > ?", *f.Since)
	}
	q = q.OrderBy("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification query: %w", err)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = $3
		WHERE user_id = $1 AND id = ANY($2) AND NOT is_read
	`
	res, err := r.DB.ExecContext(ctx, query, userID, pq.Array(ids), at)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.RowsAffected()
}
