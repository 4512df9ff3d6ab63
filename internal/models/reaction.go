package models

import "time"

// Reaction kinds
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// ProductReaction represents a like or dislike on a product. The
// (product, user) pair is unique so toggles serialize on the constraint.
type ProductReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID string    `json:"product_id" gorm:"index;uniqueIndex:idx_product_user_reaction"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_product_user_reaction"`
	Kind      string    `json:"kind" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewReaction represents a like or dislike on a review
type ReviewReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"index;uniqueIndex:idx_review_user_reaction"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_review_user_reaction"`
	Kind      string    `json:"kind" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetReactionRequest defines the request body for reacting to a product or review
type SetReactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like dislike"`
}
