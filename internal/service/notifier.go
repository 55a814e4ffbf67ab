package service

import (
	"context"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
)

// Notifier is the outbound event surface. Implementations must be
// best-effort and non-blocking; services call it after the state change has
// committed and never check an error.
type Notifier interface {
	ReviewCreated(ctx context.Context, review *domain.Review)
	ReviewUpdated(ctx context.Context, review *domain.Review)
	ReviewDeleted(ctx context.Context, review *domain.Review)
	ReactionAdded(ctx context.Context, reviewID, userID string, helpful bool)
	ReplyCreated(ctx context.Context, reply *domain.Reply)
	BusinessRecomputed(ctx context.Context, businessID string, rating domain.RatingSnapshot)
	TrustUpdated(ctx context.Context, userID string, score float64, level int)
}
