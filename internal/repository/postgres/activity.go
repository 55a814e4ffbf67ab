package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
)

// ActivityRepository implements the append-only activity ledger using
// PostgreSQL.
type ActivityRepository struct {
	pool database.DBTX
}

// NewActivityRepository creates a PostgreSQL-backed activity ledger.
func NewActivityRepository(pool database.DBTX) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Append inserts a ledger entry. Entries are never updated or deleted in
// normal operation.
func (r *ActivityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	query := `
		INSERT INTO activity_log (id, user_id, activity_type, points, related_entity, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Type,
		entry.Points,
		entry.RelatedEntity,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	return nil
}

// SumPoints totals every ledger point for the user.
func (r *ActivityRepository) SumPoints(ctx context.Context, userID string) (int, error) {
	query := `SELECT COALESCE(SUM(points), 0)::INT FROM activity_log WHERE user_id = $1`

	var total int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum activity points: %w", err)
	}

	return total, nil
}

// CountSince counts ledger entries created at or after the cutoff.
func (r *ActivityRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*)::INT FROM activity_log WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent activity: %w", err)
	}

	return count, nil
}

// ListByUser returns paginated ledger entries, newest first.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, user_id, activity_type, points, related_entity, metadata, created_at,
		       count(*) OVER() AS total_count
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var (
		entries    []domain.ActivityEntry
		totalCount int
	)

	for rows.Next() {
		var e domain.ActivityEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Type,
			&e.Points,
			&e.RelatedEntity,
			&e.Metadata,
			&e.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan activity row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activity rows: %w", err)
	}

	if entries == nil {
		entries = []domain.ActivityEntry{}
	}

	return entries, totalCount, nil
}

// DeleteByUser removes the user's ledger. Only the user-deletion cascade
// calls this; the ledger is immutable otherwise.
func (r *ActivityRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM activity_log WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete activity by user: %w", err)
	}
	return nil
}
