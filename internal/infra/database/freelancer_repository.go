package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/xavierca1/hirelocal/internal/entity"
)

const profileColumns = "id, user_id, category_id, area, verification_status, is_available, rating, created_at, updated_at"

type FreelancerRepository struct {
	DB *sql.DB
}

var _ entity.FreelancerRepository = (*FreelancerRepository)(nil)

func NewFreelancerRepository(db *sql.DB) *FreelancerRepository {
	return &FreelancerRepository{DB: db}
}

func scanProfile(row rowScanner) (*entity.FreelancerProfile, error) {
	var p entity.FreelancerProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CategoryID,
		&p.Area,
		&p.VerificationStatus,
		&p.IsAvailable,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FreelancerRepository) findOne(ctx context.Context, column, value string) (*entity.FreelancerProfile, error) {
	query, args, err := psql.Select(profileColumns).
		From("freelancer_profiles").
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}
	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return p, nil
}

func (r *FreelancerRepository) FindByID(ctx context.Context, id string) (*entity.FreelancerProfile, error) {
	return r.findOne(ctx, "id", id)
}

func (r *FreelancerRepository) FindByUserID(ctx context.Context, userID string) (*entity.FreelancerProfile, error) {
	return r.findOne(ctx, "user_id", userID)
}

// FindEligible compares against the generated area_key column, which normalizes the same
// way entity.NormalizeArea does.
func (r *FreelancerRepository) FindEligible(ctx context.Context, categoryID, areaKey string) ([]*entity.FreelancerProfile, error) {
	query, args, err := eligibleQuery(categoryID, areaKey)
	if err != nil {
		return nil, fmt.Errorf("build match query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match freelancers: %w", err)
	}
	defer rows.Close()

	var out []*entity.FreelancerProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// eligibleQuery drops the area filter for a blank area, which reaches the whole category.
func eligibleQuery(categoryID, areaKey string) (string, []any, error) {
	q := psql.Select(profileColumns).
		From("freelancer_profiles").
		Where(sq.Eq{
			"category_id":         categoryID,
			"verification_status": string(entity.VerificationApproved),
			"is_available":        true,
		})
	if areaKey != "" {
		q = q.Where(sq.Eq{"area_key": areaKey})
	}
	return q.OrderBy("rating DESC", "id").ToSql()
}
