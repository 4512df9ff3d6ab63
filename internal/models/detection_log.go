package models

import "time"

// DetectionLog records one security-tool detection reported for a user.
// Daily counts over these rows drive the escalation policy.
type DetectionLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Tool      string    `json:"tool" gorm:"size:60"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// ReportDetectionRequest defines the request body for reporting a detection
type ReportDetectionRequest struct {
	Tool string `json:"tool" validate:"required,min=1,max=60"`
}
