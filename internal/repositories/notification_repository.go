package repositories

import (
	"fmt"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error)
	GetByID(id uint) (*models.Notification, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(notificationID uint) error
	MarkAllAsRead(userID uint) error
	DeleteByID(notificationID uint) error
	// DeleteByMetadata deletes every notification of the given type whose
	// metadata is a superset of filter, and returns the deleted rows.
	DeleteByMetadata(notificationType string, filter map[string]interface{}) ([]models.Notification, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	r.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = false", userID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(notificationID uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", notificationID).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(userID uint) error {
	return r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = false", userID).Update("is_read", true).Error
}

func (r *postgresNotificationRepository) DeleteByID(notificationID uint) error {
	res := r.db.Delete(&models.Notification{}, notificationID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteByMetadata(notificationType string, filter map[string]interface{}) ([]models.Notification, error) {
	var candidates []models.Notification
	if err := r.db.Where("type = ?", notificationType).Find(&candidates).Error; err != nil {
		return nil, err
	}

	var matched []models.Notification
	var ids []uint
	for _, n := range candidates {
		if metadataMatches(n.Metadata, filter) {
			matched = append(matched, n)
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := r.db.Delete(&models.Notification{}, ids).Error; err != nil {
		return nil, err
	}
	return matched, nil
}

// metadataMatches reports whether every filter key is present in metadata
// with an equal value. Values are compared through their string form since
// JSON round-trips turn integers into float64.
func metadataMatches(metadata map[string]interface{}, filter map[string]interface{}) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
