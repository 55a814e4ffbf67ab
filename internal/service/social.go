package service

import (
	"context"
	"log/slog"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// SocialService owns the follow graph.
type SocialService struct {
	socialRepo repository.SocialRepository
	userRepo   repository.UserRepository
	trust      TrustEngine
	logger     *slog.Logger
}

// NewSocialService wires the social service.
func NewSocialService(
	socialRepo repository.SocialRepository,
	userRepo repository.UserRepository,
	trust TrustEngine,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		socialRepo: socialRepo,
		userRepo:   userRepo,
		trust:      trust,
		logger:     logger,
	}
}

// Follow creates a follow edge and awards the follower's points.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperrors.InvalidInput("cannot follow yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	if err := s.socialRepo.CreateFollow(ctx, followerID, followeeID); err != nil {
		return err
	}

	if _, err := s.trust.RecordActivity(ctx, followerID, domain.ActivityFollow, &followeeID, nil); err != nil {
		s.logger.ErrorContext(ctx, "failed to record follow activity",
			slog.String("user_id", followerID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// Unfollow removes a follow edge. The original award stays on the ledger.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.socialRepo.DeleteFollow(ctx, followerID, followeeID)
}
