package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// CreateReviewInput carries a new review. UserID comes from the
// authenticated caller, never the payload.
type CreateReviewInput struct {
	BusinessID string   `json:"business_id" validate:"required,uuid"`
	ItemID     *string  `json:"item_id" validate:"omitempty,uuid"`
	UserID     string   `json:"-"`
	Rating     int      `json:"rating" validate:"required,min=1,max=5"`
	Title      string   `json:"title" validate:"required,max=200"`
	Body       string   `json:"body" validate:"max=5000"`
	Images     []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// UpdateReviewInput carries an edit. Zero Rating means "unchanged".
type UpdateReviewInput struct {
	Rating int      `json:"rating" validate:"omitempty,min=1,max=5"`
	Title  *string  `json:"title" validate:"omitempty,max=200"`
	Body   *string  `json:"body" validate:"omitempty,max=5000"`
	Images []string `json:"images" validate:"omitempty,max=10,dive,url"`
}

// ReviewService owns the review write path: every mutation lands in the
// review ledger first, then ripples through the derived aggregates in
// dependency order (item stats, business rating, reviewer counters, trust).
type ReviewService struct {
	reviewRepo   repository.ReviewRepository
	itemRepo     repository.ItemRepository
	businessRepo repository.BusinessRepository
	userRepo     repository.UserRepository
	socialRepo   repository.SocialRepository
	aggregator   Aggregator
	trust        TrustEngine
	events       Notifier
	logger       *slog.Logger
	now          func() time.Time
}

// NewReviewService wires the review service. events may be nil.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	itemRepo repository.ItemRepository,
	businessRepo repository.BusinessRepository,
	userRepo repository.UserRepository,
	socialRepo repository.SocialRepository,
	aggregator Aggregator,
	trust TrustEngine,
	events Notifier,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		itemRepo:     itemRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		socialRepo:   socialRepo,
		aggregator:   aggregator,
		trust:        trust,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates the target, enforces one active review per reviewer per
// target, persists the review, then updates the aggregates. An aggregate
// failure after the insert is surfaced as an aggregation error: the review
// stands and the next recompute repairs the derived state.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if !domain.ValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating %d out of range", input.Rating))
	}

	business, err := s.businessRepo.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, apperrors.NotFound("business", input.BusinessID)
	}

	reviewType := domain.ReviewTypeBusiness
	if input.ItemID != nil {
		reviewType = domain.ReviewTypeItem
		item, err := s.itemRepo.GetByID(ctx, *input.ItemID)
		if err != nil {
			return nil, err
		}
		if item.BusinessID != input.BusinessID {
			return nil, apperrors.InvalidInput("item does not belong to the given business")
		}
	}

	exists, err := s.reviewRepo.ActiveExists(ctx, input.UserID, input.BusinessID, input.ItemID, reviewType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("an active review for this target already exists")
	}

	now := s.now().UTC()
	review := &domain.Review{
		ID:         uuid.New().String(),
		BusinessID: input.BusinessID,
		ItemID:     input.ItemID,
		UserID:     input.UserID,
		ReviewType: reviewType,
		Rating:     input.Rating,
		Title:      input.Title,
		Body:       input.Body,
		Images:     input.Images,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if review.ItemID != nil {
		if err := s.aggregator.AddItemRating(ctx, *review.ItemID, review.Rating); err != nil {
			return nil, apperrors.AggregationFailure("item stats", err)
		}
	}
	if err := s.aggregator.RecomputeBusiness(ctx, review.BusinessID); err != nil {
		return nil, err
	}
	if err := s.userRepo.AdjustReviewCount(ctx, review.UserID, 1); err != nil {
		return nil, apperrors.AggregationFailure("reviewer counter", err)
	}

	s.awardReviewActivity(ctx, review)

	if s.events != nil {
		s.events.ReviewCreated(ctx, review)
	}

	return review, nil
}

// awardReviewActivity records the review's ledger entry. Photo reviews earn
// the upgraded award instead of the base one. Failures are logged only: a
// missed award never fails the review.
func (s *ReviewService) awardReviewActivity(ctx context.Context, review *domain.Review) {
	activityType := domain.ActivityReview
	if review.HasPhotos() {
		activityType = domain.ActivityReviewWithPhotos
	}

	if _, err := s.trust.RecordActivity(ctx, review.UserID, activityType, &review.ID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record review activity",
			slog.String("review_id", review.ID),
			slog.String("user_id", review.UserID),
			slog.String("error", err.Error()),
		)
	}
}

// GetByID returns an active review.
func (s *ReviewService) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.IsActive {
		return nil, apperrors.NotFound("review", id)
	}
	return review, nil
}

// List returns paginated active reviews for a business or item target.
func (s *ReviewService) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	return s.reviewRepo.List(ctx, filter)
}

// ListForBusiness returns paginated business-level reviews.
func (s *ReviewService) ListForBusiness(ctx context.Context, businessID string, page, perPage int) ([]domain.Review, int, error) {
	return s.reviewRepo.List(ctx, repository.ReviewFilter{
		BusinessID: businessID,
		Page:       page,
		PerPage:    perPage,
	})
}

// ListForItem returns paginated reviews of one item.
func (s *ReviewService) ListForItem(ctx context.Context, itemID string, page, perPage int) ([]domain.Review, int, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.List(ctx, repository.ReviewFilter{
		BusinessID: item.BusinessID,
		ItemID:     &itemID,
		Page:       page,
		PerPage:    perPage,
	})
}

// Update edits a review. Only the author may edit. A rating change swaps the
// old rating for the new one in the item stats and recomputes the business;
// text-only edits touch no aggregate.
func (s *ReviewService) Update(ctx context.Context, reviewID, callerID string, input UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsActive {
		return nil, apperrors.NotFound("review", reviewID)
	}
	if review.UserID != callerID {
		return nil, apperrors.Forbidden("only the author may edit a review")
	}

	oldRating := review.Rating
	ratingChanged := input.Rating != 0 && input.Rating != oldRating
	if input.Rating != 0 {
		if !domain.ValidRating(input.Rating) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("rating %d out of range", input.Rating))
		}
		review.Rating = input.Rating
	}
	if input.Title != nil {
		review.Title = *input.Title
	}
	if input.Body != nil {
		review.Body = *input.Body
	}
	if input.Images != nil {
		review.Images = input.Images
	}
	review.UpdatedAt = s.now().UTC()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if ratingChanged {
		if review.ItemID != nil {
			if err := s.aggregator.ChangeItemRating(ctx, *review.ItemID, oldRating, review.Rating); err != nil {
				return nil, apperrors.AggregationFailure("item stats", err)
			}
		}
		if err := s.aggregator.RecomputeBusiness(ctx, review.BusinessID); err != nil {
			return nil, err
		}
	}

	if s.events != nil {
		s.events.ReviewUpdated(ctx, review)
	}

	return review, nil
}

// Delete soft-deletes a review. The author or an admin may delete. The
// review row survives inactive, the aggregates are repaired, and the
// reviewer's counter and trust level follow.
func (s *ReviewService) Delete(ctx context.Context, reviewID, callerID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !review.IsActive {
		return apperrors.NotFound("review", reviewID)
	}

	if review.UserID != callerID {
		caller, err := s.userRepo.GetByID(ctx, callerID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return apperrors.Forbidden("only the author or an admin may delete a review")
		}
	}

	if err := s.reviewRepo.Deactivate(ctx, reviewID); err != nil {
		return err
	}

	if review.ItemID != nil {
		if err := s.aggregator.RemoveItemRating(ctx, *review.ItemID, review.Rating); err != nil {
			return apperrors.AggregationFailure("item stats", err)
		}
	}
	if err := s.aggregator.RecomputeBusiness(ctx, review.BusinessID); err != nil {
		return err
	}
	if err := s.userRepo.AdjustReviewCount(ctx, review.UserID, -1); err != nil {
		return apperrors.AggregationFailure("reviewer counter", err)
	}

	// The review count feeds the level table, so the author's trust state
	// is rederived. Best-effort, same as the award path.
	if err := s.trust.Recalculate(ctx, review.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to recalculate trust after review deletion",
			slog.String("user_id", review.UserID),
			slog.String("error", err.Error()),
		)
	}

	if s.events != nil {
		s.events.ReviewDeleted(ctx, review)
	}

	return nil
}

// Respond stores the business owner's single response on a review.
func (s *ReviewService) Respond(ctx context.Context, reviewID, callerID, response string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !review.IsActive {
		return apperrors.NotFound("review", reviewID)
	}

	business, err := s.businessRepo.GetByID(ctx, review.BusinessID)
	if err != nil {
		return err
	}
	if business.OwnerID == nil || *business.OwnerID != callerID {
		return apperrors.Forbidden("only the business owner may respond to a review")
	}

	return s.reviewRepo.SetOwnerResponse(ctx, reviewID, response)
}

// React records a helpful/not-helpful vote. The voter earns the reaction
// award; a helpful vote additionally awards the review's author.
func (s *ReviewService) React(ctx context.Context, reviewID, callerID string, helpful bool) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !review.IsActive {
		return apperrors.NotFound("review", reviewID)
	}
	if review.UserID == callerID {
		return apperrors.InvalidInput("cannot react to your own review")
	}

	reaction := &domain.Reaction{
		ReviewID:  reviewID,
		UserID:    callerID,
		Helpful:   helpful,
		CreatedAt: s.now().UTC(),
	}
	if err := s.socialRepo.CreateReaction(ctx, reaction); err != nil {
		return err
	}

	if _, err := s.trust.RecordActivity(ctx, callerID, domain.ActivityReaction, &reviewID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record reaction activity",
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
	}
	if helpful {
		if _, err := s.trust.RecordActivity(ctx, review.UserID, domain.ActivityHelpfulReceived, &reviewID, nil); err != nil {
			s.logger.ErrorContext(ctx, "failed to record helpful-received activity",
				slog.String("user_id", review.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.events != nil {
		s.events.ReactionAdded(ctx, reviewID, callerID, helpful)
	}

	return nil
}

// Reply adds a threaded comment under a review and awards the reply points.
func (s *ReviewService) Reply(ctx context.Context, reviewID, callerID, body string) (*domain.Reply, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsActive {
		return nil, apperrors.NotFound("review", reviewID)
	}

	reply := &domain.Reply{
		ID:        uuid.New().String(),
		ReviewID:  reviewID,
		UserID:    callerID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.socialRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	if _, err := s.trust.RecordActivity(ctx, callerID, domain.ActivityReply, &reviewID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record reply activity",
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
	}

	if s.events != nil {
		s.events.ReplyCreated(ctx, reply)
	}

	return reply, nil
}
