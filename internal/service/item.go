package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// CreateItemInput carries a new catalog item.
type CreateItemInput struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
	Name       string `json:"name" validate:"required,max=200"`
	Desc       string `json:"description" validate:"max=5000"`
}

// ItemService owns item reads and creation. Only the business owner may add
// items to a claimed business.
type ItemService struct {
	itemRepo     repository.ItemRepository
	businessRepo repository.BusinessRepository
	aggregator   Aggregator
	trust        TrustEngine
	logger       *slog.Logger
	now          func() time.Time
}

// NewItemService wires the item service.
func NewItemService(
	itemRepo repository.ItemRepository,
	businessRepo repository.BusinessRepository,
	aggregator Aggregator,
	trust TrustEngine,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		businessRepo: businessRepo,
		aggregator:   aggregator,
		trust:        trust,
		logger:       logger,
		now:          time.Now,
	}
}

// Create adds an item to the caller's business and awards the item points.
func (s *ItemService) Create(ctx context.Context, callerID string, input CreateItemInput) (*domain.Item, error) {
	business, err := s.businessRepo.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if business.OwnerID == nil || *business.OwnerID != callerID {
		return nil, apperrors.Forbidden("only the business owner may add items")
	}

	now := s.now().UTC()
	item := &domain.Item{
		ID:          uuid.New().String(),
		BusinessID:  input.BusinessID,
		Name:        input.Name,
		Description: input.Desc,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	if _, err := s.trust.RecordActivity(ctx, callerID, domain.ActivityItemAdded, &item.ID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record item activity",
			slog.String("user_id", callerID),
			slog.String("error", err.Error()),
		)
	}

	return item, nil
}

// GetByID returns an item and bumps its view counter. The view write is
// best-effort; a read never fails because the counter did.
func (s *ItemService) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.IncrementViews(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to increment item views",
			slog.String("item_id", id),
			slog.String("error", err.Error()),
		)
	} else {
		item.Stats.Views++
	}

	return item, nil
}

// ListByBusiness returns paginated active items.
func (s *ItemService) ListByBusiness(ctx context.Context, businessID string, page, perPage int) ([]domain.Item, int, error) {
	return s.itemRepo.ListByBusiness(ctx, businessID, page, perPage)
}

// Repair rebuilds the item's stats from its reviews, recomputes the owning
// business, and returns the item with its repaired stats. Admin/operational
// entry point.
func (s *ItemService) Repair(ctx context.Context, itemID string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.aggregator.RepairItem(ctx, itemID); err != nil {
		return nil, err
	}

	if err := s.aggregator.RecomputeBusiness(ctx, item.BusinessID); err != nil {
		return nil, err
	}

	return s.itemRepo.GetByID(ctx, itemID)
}
