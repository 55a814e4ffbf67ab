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

// TrustEngine scores users from their activity ledger.
type TrustEngine interface {
	// RecordActivity appends a ledger entry, refreshes the user's score, and
	// returns the points the entry was worth.
	RecordActivity(ctx context.Context, userID string, activityType domain.ActivityType, relatedEntity *string, metadata map[string]string) (int, error)
	// Recalculate rederives the trust score and level from the ledger. The
	// ledger is the sole input, so the result is the same no matter how many
	// times it runs.
	Recalculate(ctx context.Context, userID string) error
	// ListActivity pages through a user's ledger, newest first.
	ListActivity(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error)
}

// TrustService is the production TrustEngine.
type TrustService struct {
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
	events       Notifier
	logger       *slog.Logger
	now          func() time.Time
}

// NewTrustService wires the trust engine. events may be nil.
func NewTrustService(
	activityRepo repository.ActivityRepository,
	userRepo repository.UserRepository,
	events Notifier,
	logger *slog.Logger,
) *TrustService {
	return &TrustService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordActivity appends one scored entry, recalculates the user's trust,
// and returns the points awarded. The ledger write and the recalculation are
// separate statements: if the recalculation fails the entry survives — and
// the points stand — until the next recalculation repairs the score.
func (s *TrustService) RecordActivity(ctx context.Context, userID string, activityType domain.ActivityType, relatedEntity *string, metadata map[string]string) (int, error) {
	if !domain.ValidActivityType(activityType) {
		return 0, apperrors.InvalidInput(fmt.Sprintf("unknown activity type %q", activityType))
	}

	entry := &domain.ActivityEntry{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          activityType,
		Points:        domain.PointsFor(activityType),
		RelatedEntity: relatedEntity,
		Metadata:      metadata,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.activityRepo.Append(ctx, entry); err != nil {
		return 0, fmt.Errorf("record activity: %w", err)
	}

	return entry.Points, s.Recalculate(ctx, userID)
}

// Recalculate rederives trust score and level from the full ledger.
func (s *TrustService) Recalculate(ctx context.Context, userID string) error {
	totalPoints, err := s.activityRepo.SumPoints(ctx, userID)
	if err != nil {
		trustRecalcTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("recalculate trust: %w", err)
	}

	cutoff := s.now().UTC().Add(-domain.ConsistencyWindow)
	recent, err := s.activityRepo.CountSince(ctx, userID, cutoff)
	if err != nil {
		trustRecalcTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("recalculate trust: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		trustRecalcTotal.WithLabelValues("error").Inc()
		return err
	}

	score := domain.TrustScore(totalPoints, domain.ConsistencyBonus(recent))
	level := domain.CalculateLevel(score, user.TotalReviews)

	if err := s.userRepo.UpdateTrust(ctx, userID, score, level); err != nil {
		trustRecalcTotal.WithLabelValues("error").Inc()
		return err
	}

	if s.events != nil && (score != user.TrustScore || level != user.Level) {
		s.events.TrustUpdated(ctx, userID, score, level)
	}

	trustRecalcTotal.WithLabelValues("ok").Inc()
	s.logger.DebugContext(ctx, "trust recalculated",
		slog.String("user_id", userID),
		slog.Float64("trust_score", score),
		slog.Int("level", level),
	)

	return nil
}

// ListActivity pages through the user's ledger.
func (s *TrustService) ListActivity(ctx context.Context, userID string, page, perPage int) ([]domain.ActivityEntry, int, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.activityRepo.ListByUser(ctx, userID, page, perPage)
}
