package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
	apperrors "github.com/InfofriyendsTechnology/RateOn-sub000/pkg/errors"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// SocialRepository implements repository.SocialRepository using PostgreSQL.
// Counter updates ride in the same transaction as the edge mutation so the
// denormalized counts never drift from the edges.
type SocialRepository struct {
	pool database.DBTX
}

// NewSocialRepository creates a PostgreSQL-backed social graph repository.
func NewSocialRepository(pool database.DBTX) *SocialRepository {
	return &SocialRepository{pool: pool}
}

// CreateFollow inserts the follow edge and increments both sides' counters.
func (r *SocialRepository) CreateFollow(ctx context.Context, followerID, followeeID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin follow tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`,
		followerID, followeeID,
	); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("already following this user")
		}
		return fmt.Errorf("insert follow edge: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET following = following + 1, updated_at = NOW() WHERE id = $1`,
		followerID,
	); err != nil {
		return fmt.Errorf("increment following counter: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET followers = followers + 1, updated_at = NOW() WHERE id = $1`,
		followeeID,
	); err != nil {
		return fmt.Errorf("increment followers counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit follow tx: %w", err)
	}

	return nil
}

// DeleteFollow removes the edge and decrements both sides' counters.
func (r *SocialRepository) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unfollow tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("delete follow edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("follow", followerID+"->"+followeeID)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET following = GREATEST(following - 1, 0), updated_at = NOW() WHERE id = $1`,
		followerID,
	); err != nil {
		return fmt.Errorf("decrement following counter: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET followers = GREATEST(followers - 1, 0), updated_at = NOW() WHERE id = $1`,
		followeeID,
	); err != nil {
		return fmt.Errorf("decrement followers counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unfollow tx: %w", err)
	}

	return nil
}

// DeleteFollowsByUser removes every edge touching the user. Counters on the
// surviving side of each edge are decremented before the edges go away.
func (r *SocialRepository) DeleteFollowsByUser(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin follow cascade tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// People the user followed lose a follower.
	if _, err := tx.Exec(ctx, `
		UPDATE users SET followers = GREATEST(followers - 1, 0), updated_at = NOW()
		WHERE id IN (SELECT followee_id FROM follows WHERE follower_id = $1)`,
		userID,
	); err != nil {
		return fmt.Errorf("decrement followers of followees: %w", err)
	}

	// People who followed the user lose a following.
	if _, err := tx.Exec(ctx, `
		UPDATE users SET following = GREATEST(following - 1, 0), updated_at = NOW()
		WHERE id IN (SELECT follower_id FROM follows WHERE followee_id = $1)`,
		userID,
	); err != nil {
		return fmt.Errorf("decrement following of followers: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 OR followee_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("delete follow edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit follow cascade tx: %w", err)
	}

	return nil
}

// CreateReaction inserts a vote and bumps the review's matching counter.
func (r *SocialRepository) CreateReaction(ctx context.Context, reaction *domain.Reaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reaction tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO review_reactions (review_id, user_id, helpful, created_at) VALUES ($1, $2, $3, $4)`,
		reaction.ReviewID, reaction.UserID, reaction.Helpful, reaction.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("already reacted to this review")
		}
		return fmt.Errorf("insert reaction: %w", err)
	}

	column := "not_helpful_count"
	if reaction.Helpful {
		column = "helpful_count"
	}
	if _, err := tx.Exec(ctx,
		`UPDATE reviews SET `+column+` = `+column+` + 1 WHERE id = $1`, reaction.ReviewID,
	); err != nil {
		return fmt.Errorf("increment reaction counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reaction tx: %w", err)
	}

	return nil
}

// DeleteReactionsByUser removes the user's votes, decrementing each affected
// review's counters first.
func (r *SocialRepository) DeleteReactionsByUser(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reaction cascade tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE reviews rv
		SET helpful_count = GREATEST(rv.helpful_count - agg.helpful, 0),
		    not_helpful_count = GREATEST(rv.not_helpful_count - agg.not_helpful, 0)
		FROM (
			SELECT review_id,
			       COUNT(*) FILTER (WHERE helpful)::INT AS helpful,
			       COUNT(*) FILTER (WHERE NOT helpful)::INT AS not_helpful
			FROM review_reactions
			WHERE user_id = $1
			GROUP BY review_id
		) agg
		WHERE rv.id = agg.review_id`,
		userID,
	); err != nil {
		return fmt.Errorf("decrement reaction counters: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM review_reactions WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("delete reactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reaction cascade tx: %w", err)
	}

	return nil
}

// CreateReply inserts a reply to a review.
func (r *SocialRepository) CreateReply(ctx context.Context, reply *domain.Reply) error {
	query := `
		INSERT INTO review_replies (id, review_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		reply.ID,
		reply.ReviewID,
		reply.UserID,
		reply.Body,
		reply.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}

	return nil
}

// DeleteRepliesByUser removes every reply written by the user.
func (r *SocialRepository) DeleteRepliesByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM review_replies WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("delete replies by user: %w", err)
	}
	return nil
}
