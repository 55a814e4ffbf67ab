package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/cache"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// maxStatsRetries bounds the optimistic retry loop on item stats writes.
// After the budget is spent the aggregate is repaired from a full re-scan,
// which converges regardless of interleaving.
const maxStatsRetries = 3

// Aggregator maintains the derived rating aggregates. Item stats move by
// incremental deltas under optimistic concurrency; business ratings are
// always fully recomputed, so a business recompute is also the repair
// primitive for any suspected drift.
type Aggregator interface {
	// AddItemRating folds a new rating into an item's stats.
	AddItemRating(ctx context.Context, itemID string, rating int) error
	// RemoveItemRating backs a rating out of an item's stats.
	RemoveItemRating(ctx context.Context, itemID string, rating int) error
	// ChangeItemRating swaps one rating for another in a single write.
	ChangeItemRating(ctx context.Context, itemID string, oldRating, newRating int) error
	// RepairItem rebuilds an item's stats from its active reviews.
	RepairItem(ctx context.Context, itemID string) error
	// RecomputeBusiness rebuilds the business aggregate from item stats and
	// active reviews. Idempotent; safe to call after any mutation.
	RecomputeBusiness(ctx context.Context, businessID string) error
}

// AggregateService is the production Aggregator backed by PostgreSQL.
type AggregateService struct {
	itemRepo     repository.ItemRepository
	reviewRepo   repository.ReviewRepository
	businessRepo repository.BusinessRepository
	cache        *cache.BusinessCache
	events       Notifier
	logger       *slog.Logger
}

// NewAggregateService wires the aggregator. cache and events may be nil.
func NewAggregateService(
	itemRepo repository.ItemRepository,
	reviewRepo repository.ReviewRepository,
	businessRepo repository.BusinessRepository,
	businessCache *cache.BusinessCache,
	events Notifier,
	logger *slog.Logger,
) *AggregateService {
	return &AggregateService{
		itemRepo:     itemRepo,
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		cache:        businessCache,
		events:       events,
		logger:       logger,
	}
}

// AddItemRating folds a new rating into the item's stats.
func (s *AggregateService) AddItemRating(ctx context.Context, itemID string, rating int) error {
	if !domain.ValidRating(rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating %d out of range", rating))
	}
	return s.applyDelta(ctx, itemID, func(dist *domain.Distribution) {
		dist.Add(rating)
	})
}

// RemoveItemRating backs a rating out of the item's stats.
func (s *AggregateService) RemoveItemRating(ctx context.Context, itemID string, rating int) error {
	if !domain.ValidRating(rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating %d out of range", rating))
	}
	return s.applyDelta(ctx, itemID, func(dist *domain.Distribution) {
		dist.Remove(rating)
	})
}

// ChangeItemRating swaps oldRating for newRating in one stats write, so the
// review count never moves and no intermediate state is observable.
func (s *AggregateService) ChangeItemRating(ctx context.Context, itemID string, oldRating, newRating int) error {
	if !domain.ValidRating(oldRating) || !domain.ValidRating(newRating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating change %d->%d out of range", oldRating, newRating))
	}
	if oldRating == newRating {
		return nil
	}
	return s.applyDelta(ctx, itemID, func(dist *domain.Distribution) {
		dist.Remove(oldRating)
		dist.Add(newRating)
	})
}

// applyDelta runs the read-mutate-write cycle under optimistic concurrency.
// Version conflicts are retried; an exhausted budget falls back to a full
// re-scan repair.
func (s *AggregateService) applyDelta(ctx context.Context, itemID string, mutate func(*domain.Distribution)) error {
	for attempt := 0; attempt < maxStatsRetries; attempt++ {
		stats, version, err := s.itemRepo.GetStats(ctx, itemID)
		if err != nil {
			itemDeltaTotal.WithLabelValues("error").Inc()
			return err
		}

		mutate(&stats.Distribution)
		stats.TotalReviews = stats.Distribution.Total()
		stats.AverageRating = stats.Distribution.Average()

		err = s.itemRepo.UpdateStats(ctx, itemID, stats, version)
		if err == nil {
			itemDeltaTotal.WithLabelValues("ok").Inc()
			return nil
		}
		if !errors.Is(err, apperrors.ErrVersionConflict) {
			itemDeltaTotal.WithLabelValues("error").Inc()
			return err
		}

		itemVersionConflicts.Inc()
		s.logger.DebugContext(ctx, "item stats version conflict, retrying",
			slog.String("item_id", itemID),
			slog.Int("attempt", attempt+1),
		)
	}

	// The delta lost every race. A full re-scan already includes whatever
	// the concurrent writers were folding in, so repairing converges.
	s.logger.WarnContext(ctx, "item stats retries exhausted, repairing from reviews",
		slog.String("item_id", itemID),
	)
	itemDeltaTotal.WithLabelValues("repaired").Inc()
	return s.RepairItem(ctx, itemID)
}

// RepairItem rebuilds the item's stats from its active reviews, retrying the
// versioned write. Because the tally is recomputed on every attempt, the
// write that finally lands is consistent with the ledger at its read point.
func (s *AggregateService) RepairItem(ctx context.Context, itemID string) error {
	itemStatsRepairs.Inc()

	var lastErr error
	for attempt := 0; attempt < maxStatsRetries; attempt++ {
		stats, version, err := s.itemRepo.GetStats(ctx, itemID)
		if err != nil {
			return err
		}

		dist, err := s.reviewRepo.TallyItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("repair item %s: %w", itemID, err)
		}

		stats.Distribution = dist
		stats.TotalReviews = dist.Total()
		stats.AverageRating = dist.Average()

		lastErr = s.itemRepo.UpdateStats(ctx, itemID, stats, version)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, apperrors.ErrVersionConflict) {
			return lastErr
		}
		itemVersionConflicts.Inc()
	}

	return apperrors.AggregationFailure("item stats", lastErr)
}

// RecomputeBusiness rebuilds the business rating from scratch: review count
// and points come from the item aggregates plus the direct business reviews;
// the distribution needs per-bucket counts, so it re-scans the review ledger.
// The result overwrites whatever was stored, making the operation idempotent.
func (s *AggregateService) RecomputeBusiness(ctx context.Context, businessID string) error {
	itemCount, itemPoints, err := s.itemRepo.SumActiveStats(ctx, businessID)
	if err != nil {
		businessRecomputesTotal.WithLabelValues("error").Inc()
		return apperrors.AggregationFailure("business rating", err)
	}

	directDist, err := s.reviewRepo.TallyBusinessDirect(ctx, businessID)
	if err != nil {
		businessRecomputesTotal.WithLabelValues("error").Inc()
		return apperrors.AggregationFailure("business rating", err)
	}

	fullDist, err := s.reviewRepo.TallyBusinessAll(ctx, businessID)
	if err != nil {
		businessRecomputesTotal.WithLabelValues("error").Inc()
		return apperrors.AggregationFailure("business rating", err)
	}

	count := itemCount + directDist.Total()
	points := itemPoints + float64(directDist.Points())

	snapshot := domain.RatingSnapshot{
		Count:        count,
		Distribution: fullDist,
	}
	if count > 0 {
		snapshot.Average = domain.ClampAverage(points / float64(count))
	}

	if err := s.businessRepo.UpdateRating(ctx, businessID, snapshot); err != nil {
		businessRecomputesTotal.WithLabelValues("error").Inc()
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return apperrors.AggregationFailure("business rating", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, businessID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate business cache",
				slog.String("business_id", businessID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.events != nil {
		s.events.BusinessRecomputed(ctx, businessID, snapshot)
	}

	businessRecomputesTotal.WithLabelValues("ok").Inc()
	s.logger.DebugContext(ctx, "business rating recomputed",
		slog.String("business_id", businessID),
		slog.Int("review_count", count),
		slog.Float64("average", snapshot.Average),
	)

	return nil
}
