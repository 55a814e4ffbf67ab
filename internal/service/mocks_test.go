package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if rv := args.Get(0); rv != nil {
		return rv.(*domain.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) SetOwnerResponse(ctx context.Context, id, response string) error {
	return m.Called(ctx, id, response).Error(0)
}

func (m *mockReviewRepo) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ActiveExists(ctx context.Context, userID, businessID string, itemID *string, reviewType domain.ReviewType) (bool, error) {
	args := m.Called(ctx, userID, businessID, itemID, reviewType)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) TallyItem(ctx context.Context, itemID string) (domain.Distribution, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.Distribution), args.Error(1)
}

func (m *mockReviewRepo) TallyBusinessDirect(ctx context.Context, businessID string) (domain.Distribution, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(domain.Distribution), args.Error(1)
}

func (m *mockReviewRepo) TallyBusinessAll(ctx context.Context, businessID string) (domain.Distribution, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(domain.Distribution), args.Error(1)
}

func (m *mockReviewRepo) ListActiveByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	if rv := args.Get(0); rv != nil {
		return rv.([]domain.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepo) HardDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockReviewRepo) CountActiveByReviewer(ctx context.Context, businessID string) (map[string]int, error) {
	args := m.Called(ctx, businessID)
	if rv := args.Get(0); rv != nil {
		return rv.(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepo) DeleteByBusiness(ctx context.Context, businessID string) error {
	return m.Called(ctx, businessID).Error(0)
}

type mockItemRepo struct{ mock.Mock }

func (m *mockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if rv := args.Get(0); rv != nil {
		return rv.(*domain.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) ListByBusiness(ctx context.Context, businessID string, page, perPage int) ([]domain.Item, int, error) {
	args := m.Called(ctx, businessID, page, perPage)
	return args.Get(0).([]domain.Item), args.Int(1), args.Error(2)
}

func (m *mockItemRepo) GetStats(ctx context.Context, itemID string) (domain.ItemStats, int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.ItemStats), args.Get(1).(int64), args.Error(2)
}

func (m *mockItemRepo) UpdateStats(ctx context.Context, itemID string, stats domain.ItemStats, expectedVersion int64) error {
	return m.Called(ctx, itemID, stats, expectedVersion).Error(0)
}

func (m *mockItemRepo) SumActiveStats(ctx context.Context, businessID string) (int, float64, error) {
	args := m.Called(ctx, businessID)
	return args.Int(0), args.Get(1).(float64), args.Error(2)
}

func (m *mockItemRepo) IncrementViews(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *mockItemRepo) DeleteByBusiness(ctx context.Context, businessID string) error {
	return m.Called(ctx, businessID).Error(0)
}

type mockBusinessRepo struct{ mock.Mock }

func (m *mockBusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	return m.Called(ctx, business).Error(0)
}

func (m *mockBusinessRepo) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	args := m.Called(ctx, id)
	if rv := args.Get(0); rv != nil {
		return rv.(*domain.Business), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBusinessRepo) UpdateRating(ctx context.Context, id string, rating domain.RatingSnapshot) error {
	return m.Called(ctx, id, rating).Error(0)
}

func (m *mockBusinessRepo) Claim(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *mockBusinessRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if rv := args.Get(0); rv != nil {
		return rv.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) AdjustReviewCount(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

func (m *mockUserRepo) UpdateTrust(ctx context.Context, id string, score float64, level int) error {
	return m.Called(ctx, id, score, level).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockActivityRepo struct{ mock.Mock }

func (m *mockActivityRepo) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockActivityRepo) SumPoints(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockActivityRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockActivityRepo) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	return args.Get(0).([]domain.ActivityEntry), args.Int(1), args.Error(2)
}

func (m *mockActivityRepo) DeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSocialRepo struct{ mock.Mock }

func (m *mockSocialRepo) CreateFollow(ctx context.Context, followerID, followeeID string) error {
	return m.Called(ctx, followerID, followeeID).Error(0)
}

func (m *mockSocialRepo) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	return m.Called(ctx, followerID, followeeID).Error(0)
}

func (m *mockSocialRepo) DeleteFollowsByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSocialRepo) CreateReaction(ctx context.Context, reaction *domain.Reaction) error {
	return m.Called(ctx, reaction).Error(0)
}

func (m *mockSocialRepo) DeleteReactionsByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSocialRepo) CreateReply(ctx context.Context, reply *domain.Reply) error {
	return m.Called(ctx, reply).Error(0)
}

func (m *mockSocialRepo) DeleteRepliesByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockAggregator struct{ mock.Mock }

func (m *mockAggregator) AddItemRating(ctx context.Context, itemID string, rating int) error {
	return m.Called(ctx, itemID, rating).Error(0)
}

func (m *mockAggregator) RemoveItemRating(ctx context.Context, itemID string, rating int) error {
	return m.Called(ctx, itemID, rating).Error(0)
}

func (m *mockAggregator) ChangeItemRating(ctx context.Context, itemID string, oldRating, newRating int) error {
	return m.Called(ctx, itemID, oldRating, newRating).Error(0)
}

func (m *mockAggregator) RepairItem(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *mockAggregator) RecomputeBusiness(ctx context.Context, businessID string) error {
	return m.Called(ctx, businessID).Error(0)
}

type mockTrustEngine struct{ mock.Mock }

func (m *mockTrustEngine) RecordActivity(ctx context.Context, userID string, activityType domain.ActivityType, relatedEntity *string, metadata map[string]string) (int, error) {
	args := m.Called(ctx, userID, activityType, relatedEntity, metadata)
	return args.Int(0), args.Error(1)
}

func (m *mockTrustEngine) Recalculate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockTrustEngine) ListActivity(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	return args.Get(0).([]domain.ActivityEntry), args.Int(1), args.Error(2)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) ReviewCreated(ctx context.Context, review *domain.Review) {
	m.Called(ctx, review)
}

func (m *mockNotifier) ReviewUpdated(ctx context.Context, review *domain.Review) {
	m.Called(ctx, review)
}

func (m *mockNotifier) ReviewDeleted(ctx context.Context, review *domain.Review) {
	m.Called(ctx, review)
}

func (m *mockNotifier) ReactionAdded(ctx context.Context, reviewID, userID string, helpful bool) {
	m.Called(ctx, reviewID, userID, helpful)
}

func (m *mockNotifier) ReplyCreated(ctx context.Context, reply *domain.Reply) {
	m.Called(ctx, reply)
}

func (m *mockNotifier) BusinessRecomputed(ctx context.Context, businessID string, rating domain.RatingSnapshot) {
	m.Called(ctx, businessID, rating)
}

func (m *mockNotifier) TrustUpdated(ctx context.Context, userID string, score float64, level int) {
	m.Called(ctx, userID, score, level)
}
