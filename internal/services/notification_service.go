package services

import (
	"fmt"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/cache"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const notificationCacheTTL = 5 * time.Minute

// NotificationPage is one page of a user's notification listing
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	HasMore       bool                  `json:"has_more"`
}

// NotificationService owns notification persistence and the cache
// discipline around it: reads are cache-fronted, every mutation
// invalidates the owner's cached listings before returning.
type NotificationService struct {
	repo  repositories.NotificationRepository
	cache cache.Store
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repositories.NotificationRepository, store cache.Store) *NotificationService {
	return &NotificationService{repo: repo, cache: store}
}

func userCachePrefix(userID uint) string {
	return fmt.Sprintf("notifications:user:%d:", userID)
}

func listCacheKey(userID uint, page, limit int) string {
	return fmt.Sprintf("%spage:%d:limit:%d", userCachePrefix(userID), page, limit)
}

func unreadCacheKey(userID uint) string {
	return userCachePrefix(userID) + "unread"
}

func (s *NotificationService) invalidate(userID uint) {
	s.cache.DeletePrefix(userCachePrefix(userID))
}

// Create persists a new notification. The user id is trusted; no
// foreign-key validation happens at this layer.
func (s *NotificationService) Create(userID uint, notificationType, title, content string, metadata map[string]interface{}) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:   userID,
		Type:     notificationType,
		Title:    title,
		Content:  content,
		Metadata: datatypes.JSONMap(metadata),
	}
	if err := s.repo.CreateNotification(notification); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return notification, nil
}

// List returns one page of a user's notifications, newest first.
// Pages are 1-indexed.
func (s *NotificationService) List(userID uint, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	key := listCacheKey(userID, page, limit)
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*NotificationPage); ok {
			return result, nil
		}
	}

	notifications, total, err := s.repo.GetByUserID(userID, page, limit)
	if err != nil {
		return nil, err
	}

	result := &NotificationPage{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
		HasMore:       int64(page*limit) < total,
	}
	s.cache.Set(key, result, notificationCacheTTL)
	return result, nil
}

// UnreadCount returns how many unread notifications a user has
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	key := unreadCacheKey(userID)
	if cached, ok := s.cache.Get(key); ok {
		if count, ok := cached.(int64); ok {
			return count, nil
		}
	}

	count, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(key, count, notificationCacheTTL)
	return count, nil
}

// getOwned loads a notification and enforces ownership
func (s *NotificationService) getOwned(userID, notificationID uint) (*models.Notification, error) {
	notification, err := s.repo.GetByID(notificationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if notification.UserID != userID {
		return nil, ErrForbidden
	}
	return notification, nil
}

// MarkRead flips the read flag of one notification owned by userID
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	if _, err := s.getOwned(userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.MarkAsRead(notificationID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// MarkAllRead flips every unread notification owned by userID
func (s *NotificationService) MarkAllRead(userID uint) error {
	if err := s.repo.MarkAllAsRead(userID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// Delete removes one notification owned by userID
func (s *NotificationService) Delete(userID, notificationID uint) error {
	if _, err := s.getOwned(userID, notificationID); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(notificationID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// DeleteByMetadata removes every notification of the given type whose
// metadata is a superset of filter and returns the deleted ids grouped by
// owning user, since one match can span multiple users. Running it again
// with the same arguments deletes nothing.
func (s *NotificationService) DeleteByMetadata(notificationType string, filter map[string]interface{}) (map[uint][]uint, error) {
	deleted, err := s.repo.DeleteByMetadata(notificationType, filter)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint][]uint)
	for _, n := range deleted {
		byUser[n.UserID] = append(byUser[n.UserID], n.ID)
	}
	for userID := range byUser {
		s.invalidate(userID)
	}
	return byUser, nil
}
