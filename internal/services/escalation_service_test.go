package services

import (
	"testing"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/cache"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type escalationFixture struct {
	service *EscalationService
	repo    *fakeNotificationRepo
	users   *fakeUserRepo
	pusher  *recordingPusher
}

func newEscalationFixture(t *testing.T) *escalationFixture {
	t.Helper()
	user := &models.User{ID: 1, Username: "suspect", Status: models.StatusNormal}
	adminA := &models.User{ID: 100, Username: "a", Role: models.RoleAdmin, Status: models.StatusNormal}
	adminB := &models.User{ID: 101, Username: "b", Role: models.RoleAdmin, Status: models.StatusNormal}

	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(user, adminA, adminB)
	pusher := &recordingPusher{}
	dispatcher := NewDispatcher(NewNotificationService(repo, cache.NewMemoryStore(time.Minute)), users, pusher)

	return &escalationFixture{
		service: NewEscalationService(&fakeDetectionRepo{}, users, dispatcher, pusher, 10, 15),
		repo:    repo,
		users:   users,
		pusher:  pusher,
	}
}

func (f *escalationFixture) record(t *testing.T, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, f.service.RecordDetection(1, "devtools"))
	}
}

func (f *escalationFixture) countByType(userID uint, notificationType string) int {
	count := 0
	for _, n := range f.repo.items {
		if n.UserID == userID && n.Type == notificationType {
			count++
		}
	}
	return count
}

func TestRecordDetectionUnknownUser(t *testing.T) {
	f := newEscalationFixture(t)
	assert.ErrorIs(t, f.service.RecordDetection(999, "devtools"), ErrNotFound)
}

func TestDetectionsBelowWarnThresholdStaySilent(t *testing.T) {
	f := newEscalationFixture(t)
	f.record(t, 9)
	assert.Empty(t, f.repo.items)
	assert.Empty(t, f.pusher.pushes)
}

func TestWarnFiresExactlyOnce(t *testing.T) {
	f := newEscalationFixture(t)

	f.record(t, 10)
	assert.Equal(t, 1, f.countByType(1, models.NotificationSecurityWarning))
	assert.Equal(t, 1, f.countByType(100, models.NotificationSystem))
	assert.Equal(t, 1, f.countByType(101, models.NotificationSystem))

	// Events between the thresholds must not repeat the warning.
	f.record(t, 4)
	assert.Equal(t, 1, f.countByType(1, models.NotificationSecurityWarning))
	assert.Equal(t, 1, f.countByType(100, models.NotificationSystem))
}

func TestLockBansUserAndNotifies(t *testing.T) {
	f := newEscalationFixture(t)

	f.record(t, 15)

	user, err := f.users.GetUserByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBanned, user.Status)

	banned := f.pusher.byEvent(realtime.EventAccountBanned)
	require.Len(t, banned, 1)
	assert.Equal(t, uint(1), banned[0].userID)
	assert.Nil(t, banned[0].payload)

	assert.Equal(t, 1, f.countByType(1, models.NotificationAccountLocked))
	// Each admin saw the warning and then the lock.
	assert.Equal(t, 2, f.countByType(100, models.NotificationSystem))
	assert.Equal(t, 2, f.countByType(101, models.NotificationSystem))
}

func TestDetectionAfterLockIsRejected(t *testing.T) {
	f := newEscalationFixture(t)

	f.record(t, 15)
	notificationsBefore := len(f.repo.items)

	err := f.service.RecordDetection(1, "devtools")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, f.repo.items, notificationsBefore)
}
