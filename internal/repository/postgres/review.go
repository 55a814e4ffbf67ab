package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review ledger.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `id, business_id, item_id, user_id, review_type, rating, title, body,
	images, owner_response, helpful_count, not_helpful_count, is_active, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.BusinessID,
		&rv.ItemID,
		&rv.UserID,
		&rv.ReviewType,
		&rv.Rating,
		&rv.Title,
		&rv.Body,
		&rv.Images,
		&rv.OwnerResponse,
		&rv.HelpfulCount,
		&rv.NotHelpful,
		&rv.IsActive,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review row. A unique violation on the active-review
// index means a concurrent writer won the race past the service's duplicate
// pre-check; it surfaces as the same conflict the pre-check reports.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, business_id, item_id, user_id, review_type, rating, title, body,
		                     images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.BusinessID,
		review.ItemID,
		review.UserID,
		review.ReviewType,
		review.Rating,
		review.Title,
		review.Body,
		review.Images,
		review.IsActive,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("an active review for this target already exists")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review regardless of its active flag.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return rv, nil
}

// Update rewrites the mutable fields of a review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, title = $3, body = $4, images = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		review.ID,
		review.Rating,
		review.Title,
		review.Body,
		review.Images,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Deactivate soft-deletes a review.
func (r *ReviewRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE reviews SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// SetOwnerResponse stores the single owner response on a review.
func (r *ReviewRepository) SetOwnerResponse(ctx context.Context, id, response string) error {
	query := `UPDATE reviews SET owner_response = $2, updated_at = NOW() WHERE id = $1 AND is_active`

	tag, err := r.pool.Exec(ctx, query, id, response)
	if err != nil {
		return fmt.Errorf("set owner response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// ActiveExists reports whether an active review exists for the triple.
// Soft-deleted rows are excluded so a reviewer may re-review after deleting.
func (r *ReviewRepository) ActiveExists(ctx context.Context, userID, businessID string, itemID *string, reviewType domain.ReviewType) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reviews
			WHERE user_id = $1 AND business_id = $2 AND review_type = $3
			  AND item_id IS NOT DISTINCT FROM $4
			  AND is_active
		)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, businessID, reviewType, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active review: %w", err)
	}

	return exists, nil
}

// List returns paginated reviews for a business or item target, newest first.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `
		SELECT ` + reviewColumns + `, count(*) OVER() AS total_count
		FROM reviews
		WHERE business_id = $1 AND item_id IS NOT DISTINCT FROM $2 AND is_active
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, filter.BusinessID, filter.ItemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BusinessID,
			&rv.ItemID,
			&rv.UserID,
			&rv.ReviewType,
			&rv.Rating,
			&rv.Title,
			&rv.Body,
			&rv.Images,
			&rv.OwnerResponse,
			&rv.HelpfulCount,
			&rv.NotHelpful,
			&rv.IsActive,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// tally runs a rating-bucket aggregation query and folds the rows into a
// Distribution.
func (r *ReviewRepository) tally(ctx context.Context, query string, args ...any) (domain.Distribution, error) {
	var dist domain.Distribution

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return dist, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return dist, fmt.Errorf("scan tally row: %w", err)
		}
		if domain.ValidRating(rating) {
			dist[rating-1] = count
		}
	}

	return dist, rows.Err()
}

// TallyItem rebuilds an item's distribution from its active reviews.
func (r *ReviewRepository) TallyItem(ctx context.Context, itemID string) (domain.Distribution, error) {
	query := `
		SELECT rating, COUNT(*)::INT
		FROM reviews
		WHERE item_id = $1 AND review_type = 'item' AND is_active
		GROUP BY rating`

	dist, err := r.tally(ctx, query, itemID)
	if err != nil {
		return dist, fmt.Errorf("tally item reviews: %w", err)
	}
	return dist, nil
}

// TallyBusinessDirect tallies active business-level reviews only.
func (r *ReviewRepository) TallyBusinessDirect(ctx context.Context, businessID string) (domain.Distribution, error) {
	query := `
		SELECT rating, COUNT(*)::INT
		FROM reviews
		WHERE business_id = $1 AND review_type = 'business' AND is_active
		GROUP BY rating`

	dist, err := r.tally(ctx, query, businessID)
	if err != nil {
		return dist, fmt.Errorf("tally business reviews: %w", err)
	}
	return dist, nil
}

// TallyBusinessAll tallies every active review resolving to the business,
// both business-level and item-level. This is the one place the business
// aggregate re-scans reviews: per-bucket counts cannot be reconstructed from
// the items' weighted averages.
func (r *ReviewRepository) TallyBusinessAll(ctx context.Context, businessID string) (domain.Distribution, error) {
	query := `
		SELECT rating, COUNT(*)::INT
		FROM reviews
		WHERE business_id = $1 AND is_active
		GROUP BY rating`

	dist, err := r.tally(ctx, query, businessID)
	if err != nil {
		return dist, fmt.Errorf("tally all business reviews: %w", err)
	}
	return dist, nil
}

// ListActiveByUser returns the user's active reviews, oldest first so
// cascade processing is deterministic.
func (r *ReviewRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1 AND is_active
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BusinessID,
			&rv.ItemID,
			&rv.UserID,
			&rv.ReviewType,
			&rv.Rating,
			&rv.Title,
			&rv.Body,
			&rv.Images,
			&rv.OwnerResponse,
			&rv.HelpfulCount,
			&rv.NotHelpful,
			&rv.IsActive,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}

// HardDeleteByUser removes every review row authored by the user. Used only
// by the user-deletion cascade, after the aggregates have been repaired.
func (r *ReviewRepository) HardDeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete reviews by user: %w", err)
	}
	return nil
}

// CountActiveByReviewer returns active review counts per reviewer for a
// business.
func (r *ReviewRepository) CountActiveByReviewer(ctx context.Context, businessID string) (map[string]int, error) {
	query := `
		SELECT user_id, COUNT(*)::INT
		FROM reviews
		WHERE business_id = $1 AND is_active
		GROUP BY user_id`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("count reviews by reviewer: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var n int
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, fmt.Errorf("scan reviewer count: %w", err)
		}
		counts[userID] = n
	}

	return counts, rows.Err()
}

// DeleteByBusiness removes every review scoped to the business.
func (r *ReviewRepository) DeleteByBusiness(ctx context.Context, businessID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE business_id = $1`, businessID); err != nil {
		return fmt.Errorf("delete reviews by business: %w", err)
	}
	return nil
}
