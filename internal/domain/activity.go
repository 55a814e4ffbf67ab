package domain

import (
	"time"
)

// ActivityType tags a scored entry in the activity ledger.
type ActivityType string

const (
	ActivityReview           ActivityType = "review"
	ActivityReviewWithPhotos ActivityType = "review_with_photos"
	ActivityReaction         ActivityType = "reaction"
	ActivityHelpfulReceived  ActivityType = "helpful_reaction_received"
	ActivityFollow           ActivityType = "follow"
	ActivityReply            ActivityType = "reply"
	ActivityBusinessClaimed  ActivityType = "business_claimed"
	ActivityItemAdded        ActivityType = "item_added"
)

// activityPoints is the fixed point table. review_with_photos supersedes the
// base review award when the review carries at least one image;
// helpful_reaction_received is an additive bonus to the review author.
var activityPoints = map[ActivityType]int{
	ActivityReview:           10,
	ActivityReviewWithPhotos: 15,
	ActivityReaction:         1,
	ActivityHelpfulReceived:  5,
	ActivityFollow:           2,
	ActivityReply:            3,
	ActivityBusinessClaimed:  20,
	ActivityItemAdded:        5,
}

// PointsFor returns the award for an activity type, or 0 for an unknown type.
func PointsFor(t ActivityType) int {
	return activityPoints[t]
}

// ValidActivityType reports whether t is a known ledger category.
func ValidActivityType(t ActivityType) bool {
	_, ok := activityPoints[t]
	return ok
}

// ActivityEntry is one append-only row of the activity ledger. Entries are
// never edited or deleted; the trust engine only reads them.
type ActivityEntry struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Type          ActivityType      `json:"activity_type"`
	Points        int               `json:"points"`
	RelatedEntity *string           `json:"related_entity,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ConsistencyWindow is the trailing period counted for the consistency bonus.
const ConsistencyWindow = 30 * 24 * time.Hour

// ConsistencyBonus converts a count of ledger entries in the trailing window
// into bonus trust points.
func ConsistencyBonus(recentEntries int) float64 {
	switch {
	case recentEntries >= 30:
		return 10
	case recentEntries >= 20:
		return 7
	case recentEntries >= 10:
		return 5
	case recentEntries >= 5:
		return 3
	default:
		return 0
	}
}

// TrustScore derives the canonical trust score from lifetime ledger points
// and the consistency bonus: clamp(50 + points*0.1 + bonus, 0, 100).
func TrustScore(totalPoints int, consistencyBonus float64) float64 {
	return ClampTrustScore(DefaultTrustScore + float64(totalPoints)*0.1 + consistencyBonus)
}
