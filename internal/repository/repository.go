package repository

import (
	"context"
	"time"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
)

// ReviewFilter selects reviews for listing.
type ReviewFilter struct {
	BusinessID string
	ItemID     *string
	Page       int
	PerPage    int
}

// ReviewRepository is the review ledger store. Rows are soft-deleted via
// Deactivate; only cascade deletion removes them outright.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Deactivate(ctx context.Context, id string) error
	SetOwnerResponse(ctx context.Context, id, response string) error
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)

	// ActiveExists reports whether an active review already exists for the
	// (reviewer, target, type) triple. Soft-deleted rows do not count.
	ActiveExists(ctx context.Context, userID, businessID string, itemID *string, reviewType domain.ReviewType) (bool, error)

	// TallyItem rebuilds an item's distribution from its active reviews.
	TallyItem(ctx context.Context, itemID string) (domain.Distribution, error)
	// TallyBusinessDirect tallies active business-level reviews only.
	TallyBusinessDirect(ctx context.Context, businessID string) (domain.Distribution, error)
	// TallyBusinessAll tallies every active review resolving to the business,
	// both business-level and item-level.
	TallyBusinessAll(ctx context.Context, businessID string) (domain.Distribution, error)

	ListActiveByUser(ctx context.Context, userID string) ([]domain.Review, error)
	HardDeleteByUser(ctx context.Context, userID string) error
	// CountActiveByReviewer returns active review counts per reviewer for a
	// business, used to repair reviewer counters before business deletion.
	CountActiveByReviewer(ctx context.Context, businessID string) (map[string]int, error)
	DeleteByBusiness(ctx context.Context, businessID string) error
}

// ItemRepository persists items and their versioned stats aggregate.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListByBusiness(ctx context.Context, businessID string, page, perPage int) ([]domain.Item, int, error)

	// GetStats returns the current stats and the row version guarding them.
	GetStats(ctx context.Context, itemID string) (domain.ItemStats, int64, error)
	// UpdateStats writes stats conditionally on an unchanged version and
	// returns apperrors.ErrVersionConflict when another writer won.
	UpdateStats(ctx context.Context, itemID string, stats domain.ItemStats, expectedVersion int64) error

	// SumActiveStats returns the review count and rating-weighted point sum
	// across the business's active items, from their current aggregates.
	SumActiveStats(ctx context.Context, businessID string) (count int, points float64, err error)

	IncrementViews(ctx context.Context, itemID string) error
	DeleteByBusiness(ctx context.Context, businessID string) error
}

// BusinessRepository persists businesses and their rating aggregate.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	// UpdateRating persists the rating aggregate and the legacy stats mirror
	// in a single statement.
	UpdateRating(ctx context.Context, id string, rating domain.RatingSnapshot) error
	// Claim sets the owner only while the business is unclaimed; returns
	// apperrors.ErrConflict otherwise.
	Claim(ctx context.Context, id, ownerID string) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists users and their derived reputation state.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// AdjustReviewCount shifts the denormalized counter by delta, floored at
	// zero.
	AdjustReviewCount(ctx context.Context, id string, delta int) error
	UpdateTrust(ctx context.Context, id string, score float64, level int) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository is the append-only activity ledger.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	SumPoints(ctx context.Context, userID string) (int, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// SocialRepository persists follow edges, reactions, and replies, keeping
// their denormalized counters in step transactionally.
type SocialRepository interface {
	// CreateFollow inserts the edge and increments both follower/following
	// counters; apperrors.ErrConflict when the edge already exists.
	CreateFollow(ctx context.Context, followerID, followeeID string) error
	// DeleteFollow removes the edge and decrements both counters.
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	// DeleteFollowsByUser removes every edge touching the user, decrementing
	// the counters on the opposite side of each edge first.
	DeleteFollowsByUser(ctx context.Context, userID string) error

	// CreateReaction inserts a helpful/not-helpful vote and adjusts the
	// review's counters; apperrors.ErrConflict when the user already voted.
	CreateReaction(ctx context.Context, reaction *domain.Reaction) error
	// DeleteReactionsByUser removes the user's votes, decrementing each
	// affected review's counters.
	DeleteReactionsByUser(ctx context.Context, userID string) error

	CreateReply(ctx context.Context, reply *domain.Reply) error
	DeleteRepliesByUser(ctx context.Context, userID string) error
}
