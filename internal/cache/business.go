// Package cache provides the Redis read-through cache for hot aggregates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
)

// BusinessCache caches business entities, ratings included, under a short
// TTL. Writers must invalidate after every rating recompute; the TTL is only
// a backstop against a missed invalidation.
type BusinessCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewBusinessCache creates a business cache with the given TTL.
func NewBusinessCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *BusinessCache {
	return &BusinessCache{client: client, ttl: ttl, logger: logger}
}

func businessKey(id string) string {
	return "business:" + id
}

// Get returns the cached business, or (nil, nil) on a miss. Redis failures
// are logged and reported as misses so the caller falls through to the store.
func (c *BusinessCache) Get(ctx context.Context, id string) (*domain.Business, error) {
	data, err := c.client.Get(ctx, businessKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "business cache read failed",
				slog.String("business_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, nil
	}

	var b domain.Business
	if err := json.Unmarshal(data, &b); err != nil {
		// A corrupt entry is dropped so it cannot keep serving bad reads.
		_ = c.client.Del(ctx, businessKey(id)).Err()
		return nil, nil
	}

	return &b, nil
}

// Set stores the business under its TTL. Failures are logged, never fatal.
func (c *BusinessCache) Set(ctx context.Context, business *domain.Business) {
	data, err := json.Marshal(business)
	if err != nil {
		c.logger.WarnContext(ctx, "business cache marshal failed",
			slog.String("business_id", business.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, businessKey(business.ID), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "business cache write failed",
			slog.String("business_id", business.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate drops the cached business. Failure here matters more than on
// writes (a stale rating would outlive the recompute), so it returns the
// error for the caller to log.
func (c *BusinessCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, businessKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate business cache: %w", err)
	}
	return nil
}
