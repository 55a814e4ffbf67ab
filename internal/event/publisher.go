// Package event publishes domain events to Kafka for downstream consumers
// (search indexing, notifications, analytics).
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/kafka"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/logger"
)

// Topics this service publishes to.
const (
	TopicReviews    = "reputation.reviews"
	TopicAggregates = "reputation.aggregates"
	TopicTrust      = "reputation.trust"
)

// Event types.
const (
	TypeReviewCreated      = "review.created"
	TypeReviewUpdated      = "review.updated"
	TypeReviewDeleted      = "review.deleted"
	TypeReactionAdded      = "review.reaction_added"
	TypeReplyCreated       = "review.reply_created"
	TypeBusinessRecomputed = "business.rating_recomputed"
	TypeTrustUpdated       = "user.trust_updated"
)

const source = "reputation-service"

const publishTimeout = 5 * time.Second

// Publisher emits domain events. All publishing is best-effort and
// asynchronous: the request that triggered the event never waits on Kafka,
// and failures are logged, not surfaced.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates an event publisher on top of a Kafka producer.
func NewPublisher(producer *kafka.Producer, log *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: log}
}

// publish builds the envelope and sends it on a detached context so the
// event survives the request being cancelled.
func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		evt.WithRequestID(requestID)
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		// Publish logs its own failures; nothing to do with the error here.
		_ = p.producer.Publish(pubCtx, topic, evt)
	}()
}

// ReviewCreated announces a new active review.
func (p *Publisher) ReviewCreated(ctx context.Context, review *domain.Review) {
	p.publish(ctx, TopicReviews, TypeReviewCreated, review.ID, "review", review)
}

// ReviewUpdated announces an edit to an active review.
func (p *Publisher) ReviewUpdated(ctx context.Context, review *domain.Review) {
	p.publish(ctx, TopicReviews, TypeReviewUpdated, review.ID, "review", review)
}

// ReviewDeleted announces a soft-deleted review.
func (p *Publisher) ReviewDeleted(ctx context.Context, review *domain.Review) {
	p.publish(ctx, TopicReviews, TypeReviewDeleted, review.ID, "review", review)
}

type reactionAddedPayload struct {
	ReviewID string `json:"review_id"`
	UserID   string `json:"user_id"`
	Helpful  bool   `json:"helpful"`
}

// ReactionAdded announces a helpful/not-helpful vote on a review.
func (p *Publisher) ReactionAdded(ctx context.Context, reviewID, userID string, helpful bool) {
	p.publish(ctx, TopicReviews, TypeReactionAdded, reviewID, "review",
		reactionAddedPayload{ReviewID: reviewID, UserID: userID, Helpful: helpful})
}

// ReplyCreated announces a new reply under a review.
func (p *Publisher) ReplyCreated(ctx context.Context, reply *domain.Reply) {
	p.publish(ctx, TopicReviews, TypeReplyCreated, reply.ReviewID, "review", reply)
}

type businessRecomputedPayload struct {
	BusinessID string                `json:"business_id"`
	Rating     domain.RatingSnapshot `json:"rating"`
}

// BusinessRecomputed announces a fresh business rating aggregate.
func (p *Publisher) BusinessRecomputed(ctx context.Context, businessID string, rating domain.RatingSnapshot) {
	p.publish(ctx, TopicAggregates, TypeBusinessRecomputed, businessID, "business",
		businessRecomputedPayload{BusinessID: businessID, Rating: rating})
}

type trustUpdatedPayload struct {
	UserID     string  `json:"user_id"`
	TrustScore float64 `json:"trust_score"`
	Level      int     `json:"level"`
}

// TrustUpdated announces a recalculated trust score.
func (p *Publisher) TrustUpdated(ctx context.Context, userID string, score float64, level int) {
	p.publish(ctx, TopicTrust, TypeTrustUpdated, userID, "user",
		trustUpdatedPayload{UserID: userID, TrustScore: score, Level: level})
}
