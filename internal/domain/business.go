package domain

import (
	"encoding/json"
	"time"
)

// Business is a reviewable establishment. Rating is the single source of
// truth for its aggregate; the historical stats mirror exists only in the
// JSON representation (see MarshalJSON) and in mirror columns written in the
// same statement as the rating.
type Business struct {
	ID          string         `json:"id"`
	OwnerID     *string        `json:"owner_id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Rating      RatingSnapshot `json:"rating"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// legacyStats is the backward-compatible stats block older clients read.
type legacyStats struct {
	AvgRating    float64 `json:"avg_rating"`
	TotalReviews int     `json:"total_reviews"`
}

// MarshalJSON emits the business with the legacy stats mirror derived from
// Rating, keeping the two representations numerically equal by construction.
func (b Business) MarshalJSON() ([]byte, error) {
	type alias Business
	return json.Marshal(struct {
		alias
		Stats legacyStats `json:"stats"`
	}{
		alias: alias(b),
		Stats: legacyStats{
			AvgRating:    b.Rating.Average,
			TotalReviews: b.Rating.Count,
		},
	})
}

// Claimed reports whether the business has an owner.
func (b *Business) Claimed() bool {
	return b.OwnerID != nil && *b.OwnerID != ""
}
