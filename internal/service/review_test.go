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

type reviewServiceMocks struct {
	reviewRepo   *mockReviewRepo
	itemRepo     *mockItemRepo
	businessRepo *mockBusinessRepo
	userRepo     *mockUserRepo
	socialRepo   *mockSocialRepo
	aggregator   *mockAggregator
	trust        *mockTrustEngine
	events       *mockNotifier
}

func newReviewService() (*ReviewService, *reviewServiceMocks) {
	m := &reviewServiceMocks{
		reviewRepo:   new(mockReviewRepo),
		itemRepo:     new(mockItemRepo),
		businessRepo: new(mockBusinessRepo),
		userRepo:     new(mockUserRepo),
		socialRepo:   new(mockSocialRepo),
		aggregator:   new(mockAggregator),
		trust:        new(mockTrustEngine),
		events:       new(mockNotifier),
	}
	svc := NewReviewService(
		m.reviewRepo, m.itemRepo, m.businessRepo, m.userRepo, m.socialRepo,
		m.aggregator, m.trust, m.events, testLogger(),
	)
	return svc, m
}

func activeBusiness(id string) *domain.Business {
	return &domain.Business{ID: id, Name: "Blue Door Cafe", IsActive: true}
}

func strPtr(s string) *string { return &s }

func TestCreateReview_ItemReview(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	itemID := "item-1"
	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.itemRepo.On("GetByID", ctx, itemID).
		Return(&domain.Item{ID: itemID, BusinessID: "biz-1", IsActive: true}, nil).Once()
	m.reviewRepo.On("ActiveExists", ctx, "user-1", "biz-1", &itemID, domain.ReviewTypeItem).
		Return(false, nil).Once()
	m.reviewRepo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil).Once()
	m.aggregator.On("AddItemRating", ctx, itemID, 5).Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.userRepo.On("AdjustReviewCount", ctx, "user-1", 1).Return(nil).Once()
	m.trust.On("RecordActivity", ctx, "user-1", domain.ActivityReview, mock.Anything, mock.Anything).
		Return(10, nil).Once()
	m.events.On("ReviewCreated", ctx, mock.AnythingOfType("*domain.Review")).Once()

	review, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		ItemID:     &itemID,
		UserID:     "user-1",
		Rating:     5,
		Title:      "Best flat white in town",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewTypeItem, review.ReviewType)
	assert.True(t, review.IsActive)
	m.aggregator.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

func TestCreateReview_PhotoReviewEarnsUpgradedAward(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.reviewRepo.On("ActiveExists", ctx, "user-1", "biz-1", (*string)(nil), domain.ReviewTypeBusiness).
		Return(false, nil).Once()
	m.reviewRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.userRepo.On("AdjustReviewCount", ctx, "user-1", 1).Return(nil).Once()
	m.trust.On("RecordActivity", ctx, "user-1", domain.ActivityReviewWithPhotos, mock.Anything, mock.Anything).
		Return(15, nil).Once()
	m.events.On("ReviewCreated", ctx, mock.Anything).Once()

	_, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		UserID:     "user-1",
		Rating:     4,
		Title:      "Great atmosphere",
		Images:     []string{"https://img.example/1.jpg"},
	})

	require.NoError(t, err)
	m.trust.AssertExpectations(t)
}

func TestCreateReview_DuplicateActiveReview(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.reviewRepo.On("ActiveExists", ctx, "user-1", "biz-1", (*string)(nil), domain.ReviewTypeBusiness).
		Return(true, nil).Once()

	_, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		UserID:     "user-1",
		Rating:     3,
		Title:      "Second thoughts",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	m.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_ItemFromAnotherBusiness(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	itemID := "item-9"
	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.itemRepo.On("GetByID", ctx, itemID).
		Return(&domain.Item{ID: itemID, BusinessID: "biz-other"}, nil).Once()

	_, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		ItemID:     &itemID,
		UserID:     "user-1",
		Rating:     4,
		Title:      "Wrong menu",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateReview_AggregateFailureStopsChain(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	itemID := "item-1"
	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.itemRepo.On("GetByID", ctx, itemID).
		Return(&domain.Item{ID: itemID, BusinessID: "biz-1"}, nil).Once()
	m.reviewRepo.On("ActiveExists", ctx, "user-1", "biz-1", &itemID, domain.ReviewTypeItem).
		Return(false, nil).Once()
	m.reviewRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	m.aggregator.On("AddItemRating", ctx, itemID, 2).
		Return(errors.New("connection reset")).Once()

	_, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		ItemID:     &itemID,
		UserID:     "user-1",
		Rating:     2,
		Title:      "Cold soup",
	})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AGGREGATION_FAILURE", appErr.Code)
	m.aggregator.AssertNotCalled(t, "RecomputeBusiness", mock.Anything, mock.Anything)
	m.userRepo.AssertNotCalled(t, "AdjustReviewCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReview_ActivityFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	m.businessRepo.On("GetByID", ctx, "biz-1").Return(activeBusiness("biz-1"), nil).Once()
	m.reviewRepo.On("ActiveExists", ctx, "user-1", "biz-1", (*string)(nil), domain.ReviewTypeBusiness).
		Return(false, nil).Once()
	m.reviewRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.userRepo.On("AdjustReviewCount", ctx, "user-1", 1).Return(nil).Once()
	m.trust.On("RecordActivity", ctx, "user-1", domain.ActivityReview, mock.Anything, mock.Anything).
		Return(0, errors.New("ledger unavailable")).Once()
	m.events.On("ReviewCreated", ctx, mock.Anything).Once()

	review, err := svc.Create(ctx, CreateReviewInput{
		BusinessID: "biz-1",
		UserID:     "user-1",
		Rating:     5,
		Title:      "Lovely staff",
	})

	require.NoError(t, err)
	require.NotNil(t, review)
}

func TestUpdateReview_RatingChange(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	itemID := "item-1"
	existing := &domain.Review{
		ID:         "rev-1",
		BusinessID: "biz-1",
		ItemID:     &itemID,
		UserID:     "user-1",
		ReviewType: domain.ReviewTypeItem,
		Rating:     2,
		Title:      "Meh",
		IsActive:   true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.reviewRepo.On("Update", ctx, mock.AnythingOfType("*domain.Review")).Return(nil).Once()
	m.aggregator.On("ChangeItemRating", ctx, itemID, 2, 5).Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.events.On("ReviewUpdated", ctx, mock.Anything).Once()

	updated, err := svc.Update(ctx, "rev-1", "user-1", UpdateReviewInput{
		Rating: 5,
		Title:  strPtr("They fixed everything"),
	})

	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "They fixed everything", updated.Title)
	m.aggregator.AssertExpectations(t)
}

func TestUpdateReview_TextOnlySkipsAggregates(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID:         "rev-1",
		BusinessID: "biz-1",
		UserID:     "user-1",
		ReviewType: domain.ReviewTypeBusiness,
		Rating:     4,
		IsActive:   true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.reviewRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
	m.events.On("ReviewUpdated", ctx, mock.Anything).Once()

	_, err := svc.Update(ctx, "rev-1", "user-1", UpdateReviewInput{
		Body: strPtr("Adding more detail about the service."),
	})

	require.NoError(t, err)
	m.aggregator.AssertNotCalled(t, "ChangeItemRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.aggregator.AssertNotCalled(t, "RecomputeBusiness", mock.Anything, mock.Anything)
}

func TestUpdateReview_NotAuthor(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "user-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 4, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()

	_, err := svc.Update(ctx, "rev-1", "intruder", UpdateReviewInput{Rating: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	m.reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteReview_SoftDeleteRepairsAggregates(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	itemID := "item-1"
	existing := &domain.Review{
		ID:         "rev-1",
		BusinessID: "biz-1",
		ItemID:     &itemID,
		UserID:     "user-1",
		ReviewType: domain.ReviewTypeItem,
		Rating:     5,
		IsActive:   true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.reviewRepo.On("Deactivate", ctx, "rev-1").Return(nil).Once()
	m.aggregator.On("RemoveItemRating", ctx, itemID, 5).Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.userRepo.On("AdjustReviewCount", ctx, "user-1", -1).Return(nil).Once()
	m.trust.On("Recalculate", ctx, "user-1").Return(nil).Once()
	m.events.On("ReviewDeleted", ctx, mock.Anything).Once()

	err := svc.Delete(ctx, "rev-1", "user-1")

	require.NoError(t, err)
	m.aggregator.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.trust.AssertExpectations(t)
}

func TestDeleteReview_AdminMayDelete(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "user-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 1, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.userRepo.On("GetByID", ctx, "admin-1").
		Return(&domain.User{ID: "admin-1", Role: "admin"}, nil).Once()
	m.reviewRepo.On("Deactivate", ctx, "rev-1").Return(nil).Once()
	m.aggregator.On("RecomputeBusiness", ctx, "biz-1").Return(nil).Once()
	m.userRepo.On("AdjustReviewCount", ctx, "user-1", -1).Return(nil).Once()
	m.trust.On("Recalculate", ctx, "user-1").Return(nil).Once()
	m.events.On("ReviewDeleted", ctx, mock.Anything).Once()

	err := svc.Delete(ctx, "rev-1", "admin-1")

	require.NoError(t, err)
}

func TestDeleteReview_StrangerForbidden(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "user-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 1, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.userRepo.On("GetByID", ctx, "user-2").
		Return(&domain.User{ID: "user-2", Role: "user"}, nil).Once()

	err := svc.Delete(ctx, "rev-1", "user-2")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	m.reviewRepo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestRespond_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "user-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 2, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Twice()

	owned := activeBusiness("biz-1")
	owned.OwnerID = strPtr("owner-1")
	m.businessRepo.On("GetByID", ctx, "biz-1").Return(owned, nil).Twice()

	m.reviewRepo.On("SetOwnerResponse", ctx, "rev-1", "Sorry, come back for a free coffee.").
		Return(nil).Once()

	require.NoError(t, svc.Respond(ctx, "rev-1", "owner-1", "Sorry, come back for a free coffee."))

	err := svc.Respond(ctx, "rev-1", "user-9", "I am not the owner")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReact_HelpfulAwardsBothSides(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "author-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 5, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.socialRepo.On("CreateReaction", ctx, mock.MatchedBy(func(rc *domain.Reaction) bool {
		return rc.ReviewID == "rev-1" && rc.UserID == "voter-1" && rc.Helpful && !rc.CreatedAt.IsZero()
	})).Return(nil).Once()
	m.trust.On("RecordActivity", ctx, "voter-1", domain.ActivityReaction, mock.Anything, mock.Anything).
		Return(1, nil).Once()
	m.trust.On("RecordActivity", ctx, "author-1", domain.ActivityHelpfulReceived, mock.Anything, mock.Anything).
		Return(5, nil).Once()
	m.events.On("ReactionAdded", ctx, "rev-1", "voter-1", true).Once()

	err := svc.React(ctx, "rev-1", "voter-1", true)

	require.NoError(t, err)
	m.trust.AssertExpectations(t)
}

func TestReact_OwnReviewRejected(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "author-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 5, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()

	err := svc.React(ctx, "rev-1", "author-1", true)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	m.socialRepo.AssertNotCalled(t, "CreateReaction", mock.Anything, mock.Anything)
}

func TestReply_AwardsPoints(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	existing := &domain.Review{
		ID: "rev-1", BusinessID: "biz-1", UserID: "author-1",
		ReviewType: domain.ReviewTypeBusiness, Rating: 5, IsActive: true,
	}
	m.reviewRepo.On("GetByID", ctx, "rev-1").Return(existing, nil).Once()
	m.socialRepo.On("CreateReply", ctx, mock.AnythingOfType("*domain.Reply")).Return(nil).Once()
	m.trust.On("RecordActivity", ctx, "user-2", domain.ActivityReply, mock.Anything, mock.Anything).
		Return(3, nil).Once()
	m.events.On("ReplyCreated", ctx, mock.AnythingOfType("*domain.Reply")).Once()

	reply, err := svc.Reply(ctx, "rev-1", "user-2", "Totally agree about the espresso.")

	require.NoError(t, err)
	assert.Equal(t, "rev-1", reply.ReviewID)
	assert.WithinDuration(t, time.Now(), reply.CreatedAt, time.Minute)
}

func TestGetByID_InactiveHidden(t *testing.T) {
	ctx := context.Background()
	svc, m := newReviewService()

	m.reviewRepo.On("GetByID", ctx, "rev-1").
		Return(&domain.Review{ID: "rev-1", IsActive: false}, nil).Once()

	_, err := svc.GetByID(ctx, "rev-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
