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

func TestBusinessRepository_UpdateRating_WritesMirror(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewBusinessRepository(mockPool)

	snapshot := domain.RatingSnapshot{
		Average:      3.75,
		Count:        4,
		Distribution: domain.Distribution{0, 0, 2, 1, 1},
	}

	// One statement carries both the rating columns and the legacy
	// stats_avg_rating/stats_total_reviews mirror.
	mockPool.ExpectExec(`UPDATE businesses`).
		WithArgs("biz-1", 3.75, 4, 0, 0, 2, 1, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateRating(context.Background(), "biz-1", snapshot)

	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestBusinessRepository_UpdateRating_NotFound(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewBusinessRepository(mockPool)

	mockPool.ExpectExec(`UPDATE businesses`).
		WithArgs("missing", 0.0, 0, 0, 0, 0, 0, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateRating(context.Background(), "missing", domain.RatingSnapshot{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBusinessRepository_Claim_AlreadyClaimed(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewBusinessRepository(mockPool)

	mockPool.ExpectExec(`UPDATE businesses`).
		WithArgs("biz-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockPool.ExpectQuery(`SELECT EXISTS`).
		WithArgs("biz-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err = repo.Claim(context.Background(), "biz-1", "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestBusinessRepository_Claim_NotFound(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewBusinessRepository(mockPool)

	mockPool.ExpectExec(`UPDATE businesses`).
		WithArgs("missing", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockPool.ExpectQuery(`SELECT EXISTS`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err = repo.Claim(context.Background(), "missing", "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
