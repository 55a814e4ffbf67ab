package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/cache"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
)

// CreateBusinessInput carries a new business listing.
type CreateBusinessInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"required,max=100"`
}

// BusinessService owns business reads and the claim flow. Reads go through
// the Redis cache; the aggregator invalidates it on every recompute.
type BusinessService struct {
	businessRepo repository.BusinessRepository
	cache        *cache.BusinessCache
	trust        TrustEngine
	logger       *slog.Logger
	now          func() time.Time
}

// NewBusinessService wires the business service. cache may be nil.
func NewBusinessService(
	businessRepo repository.BusinessRepository,
	businessCache *cache.BusinessCache,
	trust TrustEngine,
	logger *slog.Logger,
) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		cache:        businessCache,
		trust:        trust,
		logger:       logger,
		now:          time.Now,
	}
}

// Create registers an unclaimed business listing.
func (s *BusinessService) Create(ctx context.Context, input CreateBusinessInput) (*domain.Business, error) {
	now := s.now().UTC()
	business := &domain.Business{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, err
	}

	return business, nil
}

// GetByID returns a business, cache-aside.
func (s *BusinessService) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	if s.cache != nil {
		if cached, _ := s.cache.Get(ctx, id); cached != nil {
			return cached, nil
		}
	}

	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, business)
	}

	return business, nil
}

// Claim assigns an unclaimed business to the caller and awards the claim
// points. Conflict when someone already owns it.
func (s *BusinessService) Claim(ctx context.Context, businessID, callerID string) error {
	if err := s.businessRepo.Claim(ctx, businessID, callerID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, businessID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate business cache",
				slog.String("business_id", businessID),
				slog.String("error", err.Error()),
			)
		}
	}

	if _, err := s.trust.RecordActivity(ctx, callerID, domain.ActivityBusinessClaimed, &businessID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record claim activity",
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
