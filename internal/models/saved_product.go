package models

import "time"

// SavedProduct represents a bookmarked product by a user
type SavedProduct struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_product_save"`
	ProductID string    `json:"product_id" gorm:"index;uniqueIndex:idx_user_product_save"`
	CreatedAt time.Time `json:"created_at"`
}
