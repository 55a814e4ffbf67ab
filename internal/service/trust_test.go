package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

func newTrustService(activityRepo *mockActivityRepo, userRepo *mockUserRepo, events Notifier) *TrustService {
	svc := NewTrustService(activityRepo, userRepo, events, testLogger())
	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestRecordActivity(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	svc := newTrustService(activityRepo, userRepo, nil)

	activityRepo.On("Append", ctx, mock.MatchedBy(func(e *domain.ActivityEntry) bool {
		return e.UserID == "user-1" &&
			e.Type == domain.ActivityReview &&
			e.Points == 10 &&
			e.ID != ""
	})).Return(nil).Once()

	activityRepo.On("SumPoints", ctx, "user-1").Return(150, nil).Once()
	cutoff := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC).Add(-domain.ConsistencyWindow)
	activityRepo.On("CountSince", ctx, "user-1", cutoff).Return(12, nil).Once()
	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", TotalReviews: 30, TrustScore: 50, Level: 1}, nil).Once()

	// 50 + 150*0.1 + 5 = 70; score 70 with 30 reviews lands level 6.
	userRepo.On("UpdateTrust", ctx, "user-1", 70.0, 6).Return(nil).Once()

	points, err := svc.RecordActivity(ctx, "user-1", domain.ActivityReview, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 10, points)
	activityRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestRecordActivity_UnknownType(t *testing.T) {
	activityRepo := new(mockActivityRepo)
	svc := newTrustService(activityRepo, new(mockUserRepo), nil)

	_, err := svc.RecordActivity(context.Background(), "user-1", "vibes", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	activityRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRecalculate_ClampsToCeiling(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	svc := newTrustService(activityRepo, userRepo, nil)

	activityRepo.On("SumPoints", ctx, "user-1").Return(2000, nil).Once()
	activityRepo.On("CountSince", ctx, "user-1", mock.Anything).Return(45, nil).Once()
	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", TotalReviews: 120}, nil).Once()

	// 50 + 200 + 10 clamps to 100; with 120 reviews that is level 10.
	userRepo.On("UpdateTrust", ctx, "user-1", 100.0, 10).Return(nil).Once()

	require.NoError(t, svc.Recalculate(ctx, "user-1"))
	userRepo.AssertExpectations(t)
}

func TestRecalculate_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	svc := newTrustService(activityRepo, userRepo, nil)

	activityRepo.On("SumPoints", ctx, "user-1").Return(0, nil).Once()
	activityRepo.On("CountSince", ctx, "user-1", mock.Anything).Return(0, nil).Once()
	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", TotalReviews: 0}, nil).Once()

	userRepo.On("UpdateTrust", ctx, "user-1", 50.0, 1).Return(nil).Once()

	require.NoError(t, svc.Recalculate(ctx, "user-1"))
	userRepo.AssertExpectations(t)
}

func TestRecalculate_PublishesOnChange(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	events := new(mockNotifier)
	svc := newTrustService(activityRepo, userRepo, events)

	activityRepo.On("SumPoints", ctx, "user-1").Return(60, nil).Once()
	activityRepo.On("CountSince", ctx, "user-1", mock.Anything).Return(6, nil).Once()
	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", TotalReviews: 6, TrustScore: 50, Level: 1}, nil).Once()

	// 50 + 6 + 3 = 59; with 6 reviews that is level 2.
	userRepo.On("UpdateTrust", ctx, "user-1", 59.0, 2).Return(nil).Once()
	events.On("TrustUpdated", ctx, "user-1", 59.0, 2).Once()

	require.NoError(t, svc.Recalculate(ctx, "user-1"))
	events.AssertExpectations(t)
}

func TestRecalculate_NoEventWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	events := new(mockNotifier)
	svc := newTrustService(activityRepo, userRepo, events)

	activityRepo.On("SumPoints", ctx, "user-1").Return(0, nil).Once()
	activityRepo.On("CountSince", ctx, "user-1", mock.Anything).Return(0, nil).Once()
	userRepo.On("GetByID", ctx, "user-1").
		Return(&domain.User{ID: "user-1", TrustScore: 50, Level: 1}, nil).Once()
	userRepo.On("UpdateTrust", ctx, "user-1", 50.0, 1).Return(nil).Once()

	require.NoError(t, svc.Recalculate(ctx, "user-1"))
	events.AssertNotCalled(t, "TrustUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordActivity_LedgerSurvivesRecalcFailure(t *testing.T) {
	ctx := context.Background()
	activityRepo := new(mockActivityRepo)
	userRepo := new(mockUserRepo)
	svc := newTrustService(activityRepo, userRepo, nil)

	activityRepo.On("Append", ctx, mock.Anything).Return(nil).Once()
	activityRepo.On("SumPoints", ctx, "user-1").Return(0, errors.New("timeout")).Once()

	points, err := svc.RecordActivity(ctx, "user-1", domain.ActivityFollow, nil, nil)

	require.Error(t, err)
	// The entry was appended before the recalculation failed, so the award stands.
	assert.Equal(t, 2, points)
	activityRepo.AssertExpectations(t)
	userRepo.AssertNotCalled(t, "UpdateTrust", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
