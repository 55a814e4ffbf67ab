package domain

import (
	"time"
)

// Trust score and level bounds.
const (
	MinTrustScore     = 0
	MaxTrustScore     = 100
	DefaultTrustScore = 50
	MinLevel          = 1
	MaxLevel          = 10
)

// User carries the derived reputation state. TrustScore and Level are caches
// of a pure function of the user's activity ledger; TotalReviews, Followers,
// and Following are simple denormalized counters.
type User struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	TrustScore   float64   `json:"trust_score"`
	Level        int       `json:"level"`
	TotalReviews int       `json:"total_reviews"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// ClampTrustScore bounds a trust score to [0,100].
func ClampTrustScore(score float64) float64 {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}

// levelTier is one row of the level threshold table.
type levelTier struct {
	minScore   float64
	minReviews int
	level      int
}

// levelTiers is evaluated from the highest tier down; the first tier whose
// score AND review thresholds are both met wins.
var levelTiers = []levelTier{
	{90, 100, 10},
	{85, 75, 9},
	{80, 50, 8},
	{75, 40, 7},
	{70, 30, 6},
	{65, 20, 5},
	{60, 15, 4},
	{55, 10, 3},
	{50, 5, 2},
}

// CalculateLevel maps a trust score and review count to a level in [1,10].
func CalculateLevel(trustScore float64, totalReviews int) int {
	for _, tier := range levelTiers {
		if trustScore >= tier.minScore && totalReviews >= tier.minReviews {
			return tier.level
		}
	}
	return MinLevel
}
