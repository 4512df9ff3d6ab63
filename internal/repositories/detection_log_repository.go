package repositories

import (
	"time"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
)

// DetectionLogRepository defines the interface for detection log operations
type DetectionLogRepository interface {
	CreateLog(log *models.DetectionLog) error
	// CountForUserToday counts a user's detections inside the local
	// midnight-to-midnight window.
	CountForUserToday(userID uint) (int64, error)
	GetByUserID(userID uint, page, limit int) ([]models.DetectionLog, int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type postgresDetectionLogRepository struct {
	db *gorm.DB
}

func NewPostgresDetectionLogRepository(db *gorm.DB) DetectionLogRepository {
	return &postgresDetectionLogRepository{db: db}
}

func (r *postgresDetectionLogRepository) CreateLog(log *models.DetectionLog) error {
	return r.db.Create(log).Error
}

func (r *postgresDetectionLogRepository) CountForUserToday(userID uint) (int64, error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := r.db.Model(&models.DetectionLog{}).
		Where("user_id = ? AND created_at >= ?", userID, todayStart).
		Count(&count).Error
	return count, err
}

func (r *postgresDetectionLogRepository) GetByUserID(userID uint, page, limit int) ([]models.DetectionLog, int64, error) {
	var logs []models.DetectionLog
	var total int64

	r.db.Model(&models.DetectionLog{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error

	return logs, total, err
}

func (r *postgresDetectionLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.DetectionLog{})
	return res.RowsAffected, res.Error
}
