package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"gorm.io/gorm"
)

// fakeNotificationRepo is a slice-backed NotificationRepository
type fakeNotificationRepo struct {
	mu     sync.Mutex
	nextID uint
	items  []models.Notification
	// failForUser makes CreateNotification fail for specific recipients,
	// used to exercise fan-out failure isolation.
	failForUser map[uint]bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failForUser: map[uint]bool{}}
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failForUser[n.UserID] {
		return fmt.Errorf("storage failure")
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(userID uint, page, limit int) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []models.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			owned = append(owned, n)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	total := int64(len(owned))
	start := (page - 1) * limit
	if start > len(owned) {
		start = len(owned)
	}
	end := start + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], total, nil
}

func (f *fakeNotificationRepo) GetByID(id uint) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			n := f.items[i]
			return &n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) GetUnreadCount(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(notificationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == notificationID {
			f.items[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkAllAsRead(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].UserID == userID {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) DeleteByID(notificationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == notificationID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) DeleteByMetadata(notificationType string, filter map[string]interface{}) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted []models.Notification
	var kept []models.Notification
	for _, n := range f.items {
		if n.Type == notificationType && supersetMatch(n.Metadata, filter) {
			deleted = append(deleted, n)
			continue
		}
		kept = append(kept, n)
	}
	f.items = kept
	return deleted, nil
}

func supersetMatch(metadata map[string]interface{}, filter map[string]interface{}) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// fakeUserRepo is a map-backed UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUsers(page, limit int) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if page > 1 {
		return nil, int64(len(users)), nil
	}
	return users, int64(len(users)), nil
}

func (f *fakeUserRepo) GetAdmins() ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var admins []models.User
	for _, u := range f.users {
		if u.Role == models.RoleAdmin {
			admins = append(admins, *u)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins, nil
}

func (f *fakeUserRepo) UpdateStatus(id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

// fakeDetectionRepo is a slice-backed DetectionLogRepository
type fakeDetectionRepo struct {
	mu   sync.Mutex
	logs []models.DetectionLog
}

func (f *fakeDetectionRepo) CreateLog(log *models.DetectionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = uint(len(f.logs) + 1)
	log.CreatedAt = time.Now()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeDetectionRepo) CountForUserToday(userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, l := range f.logs {
		if l.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDetectionRepo) GetByUserID(userID uint, page, limit int) ([]models.DetectionLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []models.DetectionLog
	for _, l := range f.logs {
		if l.UserID == userID {
			logs = append(logs, l)
		}
	}
	return logs, int64(len(logs)), nil
}

func (f *fakeDetectionRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.DetectionLog
	var deleted int64
	for _, l := range f.logs {
		if l.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return deleted, nil
}

// fakeReviewRepo is a map-backed ReviewRepository
type fakeReviewRepo struct {
	mu      sync.Mutex
	nextID  uint
	reviews map[uint]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uint]*models.Review{}}
}

func (f *fakeReviewRepo) CreateReview(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	review.ID = f.nextID
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) GetReviewByID(id uint) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reviews[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewRepo) GetReviewsByProductID(productID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reviews []models.Review
	for _, r := range f.reviews {
		if r.ProductID == productID && r.ParentID == nil {
			reviews = append(reviews, *r)
		}
	}
	return reviews, nil
}

func (f *fakeReviewRepo) GetReplies(parentID uint) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var replies []models.Review
	for _, r := range f.reviews {
		if r.ParentID != nil && *r.ParentID == parentID {
			replies = append(replies, *r)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })
	return replies, nil
}

func (f *fakeReviewRepo) UpdateReview(review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) DeleteReview(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.reviews, id)
	return nil
}

// push records one delivery attempt seen by the recording pusher
type push struct {
	userID  uint
	event   string
	payload interface{}
}

// recordingPusher captures pushes instead of writing to sockets
type recordingPusher struct {
	mu     sync.Mutex
	pushes []push
}

func (p *recordingPusher) PushToUser(userID uint, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, push{userID: userID, event: event, payload: payload})
}

func (p *recordingPusher) byEvent(event string) []push {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []push
	for _, entry := range p.pushes {
		if entry.event == event {
			matched = append(matched, entry)
		}
	}
	return matched
}
