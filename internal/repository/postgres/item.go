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

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	pool database.DBTX
}

// NewItemRepository creates a PostgreSQL-backed item repository.
func NewItemRepository(pool database.DBTX) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// Create inserts a new item with empty stats.
func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, business_id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.BusinessID,
		item.Name,
		item.Description,
		item.IsActive,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

// GetByID retrieves an item with its current stats.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `
		SELECT id, business_id, name, description,
		       average_rating, total_reviews, rating_1, rating_2, rating_3, rating_4, rating_5,
		       views, is_active, created_at, updated_at
		FROM items
		WHERE id = $1`

	var it domain.Item
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&it.ID,
		&it.BusinessID,
		&it.Name,
		&it.Description,
		&it.Stats.AverageRating,
		&it.Stats.TotalReviews,
		&it.Stats.Distribution[0],
		&it.Stats.Distribution[1],
		&it.Stats.Distribution[2],
		&it.Stats.Distribution[3],
		&it.Stats.Distribution[4],
		&it.Stats.Views,
		&it.IsActive,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &it, nil
}

// ListByBusiness returns paginated active items for a business.
func (r *ItemRepository) ListByBusiness(ctx context.Context, businessID string, page, perPage int) ([]domain.Item, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, business_id, name, description,
		       average_rating, total_reviews, rating_1, rating_2, rating_3, rating_4, rating_5,
		       views, is_active, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM items
		WHERE business_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var (
		items      []domain.Item
		totalCount int
	)

	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(
			&it.ID,
			&it.BusinessID,
			&it.Name,
			&it.Description,
			&it.Stats.AverageRating,
			&it.Stats.TotalReviews,
			&it.Stats.Distribution[0],
			&it.Stats.Distribution[1],
			&it.Stats.Distribution[2],
			&it.Stats.Distribution[3],
			&it.Stats.Distribution[4],
			&it.Stats.Views,
			&it.IsActive,
			&it.CreatedAt,
			&it.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate item rows: %w", err)
	}

	if items == nil {
		items = []domain.Item{}
	}

	return items, totalCount, nil
}

// GetStats returns the stats aggregate and the version guarding it.
func (r *ItemRepository) GetStats(ctx context.Context, itemID string) (domain.ItemStats, int64, error) {
	query := `
		SELECT average_rating, total_reviews, rating_1, rating_2, rating_3, rating_4, rating_5,
		       views, stats_version
		FROM items
		WHERE id = $1 AND is_active`

	var (
		stats   domain.ItemStats
		version int64
	)
	err := r.pool.QueryRow(ctx, query, itemID).Scan(
		&stats.AverageRating,
		&stats.TotalReviews,
		&stats.Distribution[0],
		&stats.Distribution[1],
		&stats.Distribution[2],
		&stats.Distribution[3],
		&stats.Distribution[4],
		&stats.Views,
		&version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats, 0, apperrors.NotFound("item", itemID)
		}
		return stats, 0, fmt.Errorf("get item stats: %w", err)
	}

	return stats, version, nil
}

// UpdateStats writes the aggregate conditionally on an unchanged version,
// bumping it. Returns ErrVersionConflict when a concurrent writer advanced
// the version first, so callers can retry or fall back to a full repair.
func (r *ItemRepository) UpdateStats(ctx context.Context, itemID string, stats domain.ItemStats, expectedVersion int64) error {
	query := `
		UPDATE items
		SET average_rating = $3, total_reviews = $4,
		    rating_1 = $5, rating_2 = $6, rating_3 = $7, rating_4 = $8, rating_5 = $9,
		    stats_version = stats_version + 1, updated_at = NOW()
		WHERE id = $1 AND stats_version = $2`

	tag, err := r.pool.Exec(ctx, query,
		itemID,
		expectedVersion,
		stats.AverageRating,
		stats.TotalReviews,
		stats.Distribution[0],
		stats.Distribution[1],
		stats.Distribution[2],
		stats.Distribution[3],
		stats.Distribution[4],
	)
	if err != nil {
		return fmt.Errorf("update item stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrVersionConflict
	}

	return nil
}

// SumActiveStats sums the review count and rating-weighted points across the
// business's active items, from their current aggregates (no review scan).
func (r *ItemRepository) SumActiveStats(ctx context.Context, businessID string) (int, float64, error) {
	query := `
		SELECT COALESCE(SUM(total_reviews), 0)::INT,
		       COALESCE(SUM(average_rating * total_reviews), 0)::FLOAT8
		FROM items
		WHERE business_id = $1 AND is_active`

	var (
		count  int
		points float64
	)
	if err := r.pool.QueryRow(ctx, query, businessID).Scan(&count, &points); err != nil {
		return 0, 0, fmt.Errorf("sum item stats: %w", err)
	}

	return count, points, nil
}

// IncrementViews bumps the view counter. Views are outside the versioned
// stats write because they are monotonic and never derived.
func (r *ItemRepository) IncrementViews(ctx context.Context, itemID string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE items SET views = views + 1 WHERE id = $1`, itemID,
	); err != nil {
		return fmt.Errorf("increment item views: %w", err)
	}
	return nil
}

// DeleteByBusiness removes every item owned by the business.
func (r *ItemRepository) DeleteByBusiness(ctx context.Context, businessID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM items WHERE business_id = $1`, businessID); err != nil {
		return fmt.Errorf("delete items by business: %w", err)
	}
	return nil
}
