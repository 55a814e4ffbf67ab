package service

import (
	"context"
	"log/slog"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// CascadeService removes users and businesses together with everything that
// references them, repairing every derived aggregate the removal touches.
// Ordering matters throughout: aggregates are repaired from data that still
// exists, counters are adjusted before their source rows go away.
type CascadeService struct {
	userRepo     repository.UserRepository
	reviewRepo   repository.ReviewRepository
	itemRepo     repository.ItemRepository
	businessRepo repository.BusinessRepository
	activityRepo repository.ActivityRepository
	socialRepo   repository.SocialRepository
	aggregator   Aggregator
	logger       *slog.Logger
}

// NewCascadeService wires the cascade service.
func NewCascadeService(
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	itemRepo repository.ItemRepository,
	businessRepo repository.BusinessRepository,
	activityRepo repository.ActivityRepository,
	socialRepo repository.SocialRepository,
	aggregator Aggregator,
	logger *slog.Logger,
) *CascadeService {
	return &CascadeService{
		userRepo:     userRepo,
		reviewRepo:   reviewRepo,
		itemRepo:     itemRepo,
		businessRepo: businessRepo,
		activityRepo: activityRepo,
		socialRepo:   socialRepo,
		aggregator:   aggregator,
		logger:       logger,
	}
}

// DeleteUser removes a user and all their content. The author or an admin
// may call it. Item stats shed the user's ratings first, then the review
// rows are hard-deleted, and each business a review pointed at is recomputed
// exactly once regardless of how many of the user's reviews it held.
func (s *CascadeService) DeleteUser(ctx context.Context, userID, callerID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	if userID != callerID {
		caller, err := s.userRepo.GetByID(ctx, callerID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return apperrors.Forbidden("only the user or an admin may delete an account")
		}
	}

	reviews, err := s.reviewRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}

	businesses := make(map[string]struct{}, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		businesses[rv.BusinessID] = struct{}{}
		if rv.ReviewType == domain.ReviewTypeItem && rv.ItemID != nil {
			if err := s.aggregator.RemoveItemRating(ctx, *rv.ItemID, rv.Rating); err != nil {
				return apperrors.AggregationFailure("item stats", err)
			}
		}
	}

	// Reaction counters on other people's reviews are repaired before the
	// reaction rows disappear.
	if err := s.socialRepo.DeleteReactionsByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.socialRepo.DeleteRepliesByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.socialRepo.DeleteFollowsByUser(ctx, userID); err != nil {
		return err
	}

	if err := s.reviewRepo.HardDeleteByUser(ctx, userID); err != nil {
		return err
	}

	for businessID := range businesses {
		if err := s.aggregator.RecomputeBusiness(ctx, businessID); err != nil {
			return err
		}
	}

	if err := s.activityRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user cascade completed",
		slog.String("user_id", userID),
		slog.Int("reviews_removed", len(reviews)),
		slog.Int("businesses_recomputed", len(businesses)),
	)

	return nil
}

// DeleteBusiness removes a business with its items and reviews. Only the
// owner or an admin may call it. Reviewer counters are decremented from the
// active review tally before the rows go, so a reviewer's level inputs stay
// honest.
func (s *CascadeService) DeleteBusiness(ctx context.Context, businessID, callerID string) error {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}

	if business.OwnerID == nil || *business.OwnerID != callerID {
		caller, err := s.userRepo.GetByID(ctx, callerID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return apperrors.Forbidden("only the owner or an admin may delete a business")
		}
	}

	counts, err := s.reviewRepo.CountActiveByReviewer(ctx, businessID)
	if err != nil {
		return err
	}
	for reviewerID, n := range counts {
		if err := s.userRepo.AdjustReviewCount(ctx, reviewerID, -n); err != nil {
			return apperrors.AggregationFailure("reviewer counter", err)
		}
	}

	if err := s.reviewRepo.DeleteByBusiness(ctx, businessID); err != nil {
		return err
	}
	if err := s.itemRepo.DeleteByBusiness(ctx, businessID); err != nil {
		return err
	}
	if err := s.businessRepo.Delete(ctx, businessID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "business cascade completed",
		slog.String("business_id", businessID),
		slog.Int("reviewers_adjusted", len(counts)),
	)

	return nil
}
