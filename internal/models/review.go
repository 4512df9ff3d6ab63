package models

import "time"

// Review represents a review or a reply on a product. Replies reference
// their parent review through ParentID.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID string    `json:"product_id" gorm:"index"` // MongoDB ObjectID as string
	UserID    uint      `json:"user_id" gorm:"index"`
	ParentID  *uint     `json:"parent_id,omitempty" gorm:"index"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateReviewRequest defines the request body for posting a review
type CreateReviewRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// UpdateReviewRequest defines the request body for editing a review
type UpdateReviewRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
