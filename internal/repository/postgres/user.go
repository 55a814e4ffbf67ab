package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user with their derived reputation state.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, display_name, role, trust_score, level, total_reviews,
		       followers, following, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.DisplayName,
		&u.Role,
		&u.TrustScore,
		&u.Level,
		&u.TotalReviews,
		&u.Followers,
		&u.Following,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// AdjustReviewCount shifts the denormalized review counter, floored at zero.
func (r *UserRepository) AdjustReviewCount(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE users
		SET total_reviews = GREATEST(total_reviews + $2, 0), updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust review count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

// UpdateTrust persists the derived trust score and level.
func (r *UserRepository) UpdateTrust(ctx context.Context, id string, score float64, level int) error {
	query := `UPDATE users SET trust_score = $2, level = $3, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, score, level)
	if err != nil {
		return fmt.Errorf("update trust: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

// Delete removes the user row. The cascade service is responsible for
// repairing dependent aggregates before calling this.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}
