package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

func TestItemRepository_GetStats(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewItemRepository(mockPool)

	rows := pgxmock.NewRows([]string{
		"average_rating", "total_reviews", "rating_1", "rating_2", "rating_3",
		"rating_4", "rating_5", "views", "stats_version",
	}).AddRow(4.5, 2, 0, 0, 0, 1, 1, int64(37), int64(6))

	mockPool.ExpectQuery(`SELECT average_rating, total_reviews`).
		WithArgs("item-1").
		WillReturnRows(rows)

	stats, version, err := repo.GetStats(context.Background(), "item-1")

	require.NoError(t, err)
	assert.Equal(t, int64(6), version)
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, 2, stats.TotalReviews)
	assert.Equal(t, domain.Distribution{0, 0, 0, 1, 1}, stats.Distribution)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestItemRepository_GetStats_NotFound(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewItemRepository(mockPool)

	mockPool.ExpectQuery(`SELECT average_rating, total_reviews`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"average_rating"}))

	_, _, err = repo.GetStats(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestItemRepository_UpdateStats(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewItemRepository(mockPool)

	stats := domain.ItemStats{
		AverageRating: 4.5,
		TotalReviews:  2,
		Distribution:  domain.Distribution{0, 0, 0, 1, 1},
	}

	mockPool.ExpectExec(`UPDATE items`).
		WithArgs("item-1", int64(6), 4.5, 2, 0, 0, 0, 1, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStats(context.Background(), "item-1", stats, 6)

	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestItemRepository_UpdateStats_VersionConflict(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewItemRepository(mockPool)

	mockPool.ExpectExec(`UPDATE items`).
		WithArgs("item-1", int64(6), 0.0, 0, 0, 0, 0, 0, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStats(context.Background(), "item-1", domain.ItemStats{}, 6)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
}

func TestItemRepository_SumActiveStats(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewItemRepository(mockPool)

	mockPool.ExpectQuery(`SELECT COALESCE\(SUM\(total_reviews\), 0\)`).
		WithArgs("biz-1").
		WillReturnRows(pgxmock.NewRows([]string{"count", "points"}).AddRow(2, 8.0))

	count, points, err := repo.SumActiveStats(context.Background(), "biz-1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 8.0, points)
}
