package domain

import (
	"time"
)

// ReviewType distinguishes reviews of a whole business from reviews of a
// single item on its menu/catalog.
type ReviewType string

const (
	ReviewTypeBusiness ReviewType = "business"
	ReviewTypeItem     ReviewType = "item"
)

// Review is one rating event in the review ledger. A review is never
// hard-deleted by its author; deletion flips IsActive and the aggregates are
// repaired from the remaining active rows.
type Review struct {
	ID            string     `json:"id"`
	BusinessID    string     `json:"business_id"`
	ItemID        *string    `json:"item_id,omitempty"`
	UserID        string     `json:"user_id"`
	ReviewType    ReviewType `json:"review_type"`
	Rating        int        `json:"rating"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	Images        []string   `json:"images,omitempty"`
	OwnerResponse *string    `json:"owner_response,omitempty"`
	HelpfulCount  int        `json:"helpful_count"`
	NotHelpful    int        `json:"not_helpful_count"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasPhotos reports whether the review carries at least one image, which
// upgrades its activity award.
func (r *Review) HasPhotos() bool {
	return len(r.Images) > 0
}

// TargetID returns the identity of the reviewed entity: the item for item
// reviews, otherwise the business.
func (r *Review) TargetID() string {
	if r.ReviewType == ReviewTypeItem && r.ItemID != nil {
		return *r.ItemID
	}
	return r.BusinessID
}
