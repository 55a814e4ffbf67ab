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

// BusinessRepository implements repository.BusinessRepository using
// PostgreSQL.
type BusinessRepository struct {
	pool database.DBTX
}

// NewBusinessRepository creates a PostgreSQL-backed business repository.
func NewBusinessRepository(pool database.DBTX) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

// Create inserts a new business with an empty rating aggregate.
func (r *BusinessRepository) Create(ctx context.Context, business *domain.Business) error {
	query := `
		INSERT INTO businesses (id, owner_id, name, description, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		business.ID,
		business.OwnerID,
		business.Name,
		business.Description,
		business.Category,
		business.IsActive,
		business.CreatedAt,
		business.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}

	return nil
}

// GetByID retrieves a business with its rating aggregate.
func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	query := `
		SELECT id, owner_id, name, description, category,
		       rating_average, rating_count, rating_1, rating_2, rating_3, rating_4, rating_5,
		       is_active, created_at, updated_at
		FROM businesses
		WHERE id = $1`

	var b domain.Business
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&b.Description,
		&b.Category,
		&b.Rating.Average,
		&b.Rating.Count,
		&b.Rating.Distribution[0],
		&b.Rating.Distribution[1],
		&b.Rating.Distribution[2],
		&b.Rating.Distribution[3],
		&b.Rating.Distribution[4],
		&b.IsActive,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("business", id)
		}
		return nil, fmt.Errorf("get business: %w", err)
	}

	return &b, nil
}

// UpdateRating persists the rating aggregate and the legacy stats mirror in
// one statement so the two representations can never diverge.
func (r *BusinessRepository) UpdateRating(ctx context.Context, id string, rating domain.RatingSnapshot) error {
	query := `
		UPDATE businesses
		SET rating_average = $2, rating_count = $3,
		    rating_1 = $4, rating_2 = $5, rating_3 = $6, rating_4 = $7, rating_5 = $8,
		    stats_avg_rating = $2, stats_total_reviews = $3,
		    updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id,
		rating.Average,
		rating.Count,
		rating.Distribution[0],
		rating.Distribution[1],
		rating.Distribution[2],
		rating.Distribution[3],
		rating.Distribution[4],
	)
	if err != nil {
		return fmt.Errorf("update business rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("business", id)
	}

	return nil
}

// Claim sets the owner only while the business is unclaimed.
func (r *BusinessRepository) Claim(ctx context.Context, id, ownerID string) error {
	query := `
		UPDATE businesses
		SET owner_id = $2, updated_at = NOW()
		WHERE id = $1 AND owner_id IS NULL AND is_active`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("claim business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing business from an already-claimed one.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM businesses WHERE id = $1 AND is_active)`, id,
		).Scan(&exists); checkErr != nil {
			return fmt.Errorf("check business claim: %w", checkErr)
		}
		if !exists {
			return apperrors.NotFound("business", id)
		}
		return apperrors.Conflict("business is already claimed")
	}

	return nil
}

// Delete removes the business row.
func (r *BusinessRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("business", id)
	}

	return nil
}
