package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types
const (
	NotificationReply           = "reply"
	NotificationCommentReaction = "comment_reaction"
	NotificationAdminMessage    = "admin_message"
	NotificationProductLike     = "product_like"
	NotificationProductComment  = "product_comment"
	NotificationProductSave     = "product_save"
	NotificationSecurityWarning = "security_warning"
	NotificationAccountLocked   = "account_locked"
	NotificationSystem          = "system"
)

// Metadata keys used for targeted lookup and retraction
const (
	MetaProductID = "product_id"
	MetaReviewID  = "review_id"
	MetaParentID  = "parent_id"
	MetaActorID   = "actor_id"
	MetaKind      = "kind"
)

// Notification represents a persisted user notification (PostgreSQL).
// Metadata for reaction/comment/save notifications always carries the
// originating entity reference so the row can be retracted later without
// knowing its id.
type Notification struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    uint              `json:"user_id" gorm:"index"`
	Type      string            `json:"type" gorm:"size:30;index"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	IsRead    bool              `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time         `json:"created_at" gorm:"index"`
}

// SendNotificationRequest defines the request body for an admin-sent message
type SendNotificationRequest struct {
	UserID  uint   `json:"user_id"` // zero means broadcast to every user
	Title   string `json:"title" validate:"required,min=1,max=120"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
