package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/anvarbek/vitrina/backend/internal/cache"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationService() (*NotificationService, *fakeNotificationRepo) {
	repo := newFakeNotificationRepo()
	return NewNotificationService(repo, cache.NewMemoryStore(time.Minute)), repo
}

func TestCreateAppearsFirstAndBumpsUnread(t *testing.T) {
	service, _ := newTestNotificationService()

	count, err := service.UnreadCount(7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = service.Create(7, models.NotificationReply, "first", "older", nil)
	require.NoError(t, err)
	created, err := service.Create(7, models.NotificationReply, "second", "newer", nil)
	require.NoError(t, err)

	// The earlier unread count was cached; the creates must have evicted it.
	count, err = service.UnreadCount(7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, err := service.List(7, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, created.ID, page.Notifications[0].ID)
	assert.False(t, page.HasMore)
}

func TestListPagination(t *testing.T) {
	service, _ := newTestNotificationService()

	for i := 0; i < 25; i++ {
		_, err := service.Create(3, models.NotificationSystem, fmt.Sprintf("n%d", i), "body", nil)
		require.NoError(t, err)
	}

	seen := map[uint]bool{}
	sizes := []int{10, 10, 5}
	for page := 1; page <= 3; page++ {
		result, err := service.List(3, page, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(25), result.Total)
		assert.Len(t, result.Notifications, sizes[page-1])
		assert.Equal(t, page < 3, result.HasMore)
		for _, n := range result.Notifications {
			assert.False(t, seen[n.ID], "notification %d returned twice", n.ID)
			seen[n.ID] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestListServedFromCache(t *testing.T) {
	service, repo := newTestNotificationService()

	_, err := service.Create(4, models.NotificationSystem, "cached", "body", nil)
	require.NoError(t, err)

	first, err := service.List(4, 1, 10)
	require.NoError(t, err)
	require.Len(t, first.Notifications, 1)

	// Writing straight to the repository bypasses invalidation, so the
	// next read must still come from the cached page.
	require.NoError(t, repo.CreateNotification(&models.Notification{UserID: 4, Type: models.NotificationSystem, Title: "hidden"}))

	second, err := service.List(4, 1, 10)
	require.NoError(t, err)
	assert.Len(t, second.Notifications, 1)
}

func TestMarkReadOwnership(t *testing.T) {
	service, _ := newTestNotificationService()

	owned, err := service.Create(1, models.NotificationReply, "t", "c", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, service.MarkRead(2, owned.ID), ErrForbidden)
	assert.ErrorIs(t, service.MarkRead(1, 9999), ErrNotFound)
	require.NoError(t, service.MarkRead(1, owned.ID))

	count, err := service.UnreadCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAllRead(t *testing.T) {
	service, _ := newTestNotificationService()

	for i := 0; i < 5; i++ {
		_, err := service.Create(2, models.NotificationSystem, "t", "c", nil)
		require.NoError(t, err)
	}
	require.NoError(t, service.MarkAllRead(2))

	count, err := service.UnreadCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteOwnership(t *testing.T) {
	service, _ := newTestNotificationService()

	owned, err := service.Create(1, models.NotificationReply, "t", "c", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(2, owned.ID), ErrForbidden)
	require.NoError(t, service.Delete(1, owned.ID))
	assert.ErrorIs(t, service.Delete(1, owned.ID), ErrNotFound)
}

func TestDeleteByMetadataSupersetMatch(t *testing.T) {
	service, _ := newTestNotificationService()

	match, err := service.Create(1, models.NotificationProductLike, "t", "c", map[string]interface{}{
		models.MetaProductID: "p1",
		models.MetaActorID:   uint(9),
	})
	require.NoError(t, err)

	// Same type, different actor: must survive.
	_, err = service.Create(1, models.NotificationProductLike, "t", "c", map[string]interface{}{
		models.MetaProductID: "p1",
		models.MetaActorID:   uint(10),
	})
	require.NoError(t, err)

	// Different type entirely: must survive.
	_, err = service.Create(1, models.NotificationProductSave, "t", "c", map[string]interface{}{
		models.MetaProductID: "p1",
		models.MetaActorID:   uint(9),
	})
	require.NoError(t, err)

	byUser, err := service.DeleteByMetadata(models.NotificationProductLike, map[string]interface{}{
		models.MetaProductID: "p1",
		models.MetaActorID:   uint(9),
	})
	require.NoError(t, err)
	assert.Equal(t, map[uint][]uint{1: {match.ID}}, byUser)

	page, err := service.List(1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	for _, n := range page.Notifications {
		assert.NotEqual(t, match.ID, n.ID)
	}

	// Running the same retraction again deletes nothing.
	byUser, err = service.DeleteByMetadata(models.NotificationProductLike, map[string]interface{}{
		models.MetaProductID: "p1",
		models.MetaActorID:   uint(9),
	})
	require.NoError(t, err)
	assert.Empty(t, byUser)
}

func TestDeleteByMetadataSpansUsers(t *testing.T) {
	service, _ := newTestNotificationService()

	filter := map[string]interface{}{models.MetaReviewID: uint(5)}
	a, err := service.Create(1, models.NotificationProductComment, "t", "c", filter)
	require.NoError(t, err)
	b, err := service.Create(2, models.NotificationProductComment, "t", "c", filter)
	require.NoError(t, err)

	byUser, err := service.DeleteByMetadata(models.NotificationProductComment, filter)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, byUser[1])
	assert.Equal(t, []uint{b.ID}, byUser[2])
}
