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

func newTestCompensator(reviews *fakeReviewRepo, users ...*models.User) (*Compensator, *fakeNotificationRepo, *recordingPusher) {
	repo := newFakeNotificationRepo()
	pusher := &recordingPusher{}
	dispatcher := NewDispatcher(NewNotificationService(repo, cache.NewMemoryStore(time.Minute)), newFakeUserRepo(users...), pusher)
	return NewCompensator(dispatcher, reviews), repo, pusher
}

func TestProductReactionRemovalRetractsNotification(t *testing.T) {
	actor := &models.User{ID: 2, Username: "bob"}
	compensator, repo, pusher := newTestCompensator(newFakeReviewRepo(), actor)

	require.NoError(t, compensator.dispatcher.NotifyProductLike(1, actor, "p1", "Lamp"))
	require.Len(t, repo.items, 1)
	createdID := repo.items[0].ID

	compensator.OnProductReactionRemoved("p1", actor.ID)

	assert.Empty(t, repo.items)
	deleted := pusher.byEvent(realtime.EventNotificationDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, uint(1), deleted[0].userID)
	payload := deleted[0].payload.(map[string]interface{})
	assert.Equal(t, []uint{createdID}, payload["notification_ids"])
}

func TestUnsaveRetractsOnlyTheActorsNotification(t *testing.T) {
	actor := &models.User{ID: 2, Username: "bob"}
	other := &models.User{ID: 3, Username: "carol"}
	compensator, repo, _ := newTestCompensator(newFakeReviewRepo(), actor, other)

	require.NoError(t, compensator.dispatcher.NotifyProductSave(1, actor, "p1", "Lamp"))
	require.NoError(t, compensator.dispatcher.NotifyProductSave(1, other, "p1", "Lamp"))
	require.Len(t, repo.items, 2)

	compensator.OnProductUnsaved("p1", actor.ID)

	require.Len(t, repo.items, 1)
	assert.Equal(t, other.ID, repo.items[0].Metadata[models.MetaActorID])
}

func TestReviewReactionSwitchReplacesNotification(t *testing.T) {
	actor := &models.User{ID: 2, Username: "bob"}
	review := &models.Review{ID: 5, UserID: 1, ProductID: "p1", Content: "nice"}
	compensator, repo, _ := newTestCompensator(newFakeReviewRepo(), actor)

	require.NoError(t, compensator.dispatcher.NotifyCommentReaction(review.UserID, actor, review, models.ReactionLike))
	require.NoError(t, compensator.OnReviewReactionSwitched(review, actor, models.ReactionDislike))

	require.Len(t, repo.items, 1)
	assert.Equal(t, models.ReactionDislike, repo.items[0].Metadata[models.MetaKind])
	assert.Contains(t, repo.items[0].Content, "disliked")
}

func TestReviewDeletionRetractsWholeTree(t *testing.T) {
	actor := &models.User{ID: 2, Username: "bob"}
	admin := &models.User{ID: 100, Username: "mod", Role: models.RoleAdmin}
	reviews := newFakeReviewRepo()
	compensator, repo, _ := newTestCompensator(reviews, actor, admin)

	root := &models.Review{UserID: 1, ProductID: "p1", Content: "root"}
	require.NoError(t, reviews.CreateReview(root))
	reply := &models.Review{UserID: 2, ProductID: "p1", ParentID: &root.ID, Content: "reply"}
	require.NoError(t, reviews.CreateReview(reply))
	nested := &models.Review{UserID: 1, ProductID: "p1", ParentID: &reply.ID, Content: "nested"}
	require.NoError(t, reviews.CreateReview(nested))

	// Notifications produced while the tree was built.
	require.NoError(t, compensator.dispatcher.NotifyProductComment(1, actor, "Lamp", root))
	require.NoError(t, compensator.dispatcher.NotifyReply(root.UserID, actor, reply))
	require.NoError(t, compensator.dispatcher.NotifyCommentReaction(reply.UserID, &models.User{ID: 9, Username: "eve"}, reply, models.ReactionLike))
	require.NoError(t, compensator.dispatcher.NotifyReply(reply.UserID, &models.User{ID: 9, Username: "eve"}, nested))

	// Unrelated notification on a different review must survive.
	other := &models.Review{UserID: 1, ProductID: "p2", Content: "other"}
	require.NoError(t, reviews.CreateReview(other))
	require.NoError(t, compensator.dispatcher.NotifyProductComment(1, actor, "Chair", other))

	compensator.OnReviewDeleting(root.ID)

	// Only the other review's copies remain, one for the owner and one for
	// the admin.
	require.Len(t, repo.items, 2)
	for _, n := range repo.items {
		assert.Equal(t, models.NotificationProductComment, n.Type)
		assert.Equal(t, other.ID, n.Metadata[models.MetaReviewID])
	}
}
