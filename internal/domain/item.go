package domain

import (
	"time"
)

// ItemStats is the denormalized rating aggregate of one item. It is written
// exclusively by the item aggregator; Version backs the optimistic
// concurrency check on every stats write.
type ItemStats struct {
	AverageRating float64      `json:"average_rating"`
	TotalReviews  int          `json:"total_reviews"`
	Distribution  Distribution `json:"rating_distribution"`
	Views         int64        `json:"views"`
}

// Snapshot converts the stats to the shared aggregate shape.
func (s ItemStats) Snapshot() RatingSnapshot {
	return RatingSnapshot{
		Average:      s.AverageRating,
		Count:        s.TotalReviews,
		Distribution: s.Distribution,
	}
}

// Item is a reviewable offering owned by a business.
type Item struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stats       ItemStats `json:"stats"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
