package domain

import (
	"time"
)

// Reply is a threaded comment under a review.
type Reply struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Reaction is a helpful/not-helpful vote on a review. One vote per
// (review, user).
type Reaction struct {
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	Helpful   bool      `json:"helpful"`
	CreatedAt time.Time `json:"created_at"`
}
