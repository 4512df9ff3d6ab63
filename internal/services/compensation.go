package services

import (
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// Compensator retracts notifications whose triggering action was undone.
// Retraction locates rows by event type plus domain metadata, never by
// notification id, so it works without knowing what was created.
type Compensator struct {
	dispatcher *Dispatcher
	reviews    repositories.ReviewRepository
}

// NewCompensator creates a new Compensator
func NewCompensator(dispatcher *Dispatcher, reviews repositories.ReviewRepository) *Compensator {
	return &Compensator{dispatcher: dispatcher, reviews: reviews}
}

func (c *Compensator) retract(notificationType string, filter map[string]interface{}) {
	if err := c.dispatcher.Retract(notificationType, filter); err != nil {
		logrus.WithError(err).WithField("type", notificationType).Warn("failed to retract notifications")
	}
}

// OnProductReactionRemoved retracts the like notification created when the
// actor reacted to the product
func (c *Compensator) OnProductReactionRemoved(productID string, actorID uint) {
	c.retract(models.NotificationProductLike, map[string]interface{}{
		models.MetaProductID: productID,
		models.MetaActorID:   actorID,
	})
}

// OnProductUnsaved retracts the save notification created when the actor
// bookmarked the product
func (c *Compensator) OnProductUnsaved(productID string, actorID uint) {
	c.retract(models.NotificationProductSave, map[string]interface{}{
		models.MetaProductID: productID,
		models.MetaActorID:   actorID,
	})
}

// OnReviewReactionRemoved retracts the reaction notification for a review
func (c *Compensator) OnReviewReactionRemoved(reviewID uint, actorID uint) {
	c.retract(models.NotificationCommentReaction, map[string]interface{}{
		models.MetaReviewID: reviewID,
		models.MetaActorID:  actorID,
	})
}

// OnReviewReactionSwitched retracts the stale reaction notification before
// the new one is created, so the recipient never sees both.
func (c *Compensator) OnReviewReactionSwitched(review *models.Review, actor *models.User, newKind string) error {
	c.OnReviewReactionRemoved(review.ID, actor.ID)
	return c.dispatcher.NotifyCommentReaction(review.UserID, actor, review, newKind)
}

// OnReviewDeleting retracts every notification tied to a review and,
// recursively, to each of its replies. Must run before the review rows
// are removed so the reply tree is still walkable.
func (c *Compensator) OnReviewDeleting(reviewID uint) {
	replies, err := c.reviews.GetReplies(reviewID)
	if err != nil {
		logrus.WithError(err).WithField("review_id", reviewID).Warn("failed to load replies for compensation")
	}
	for _, reply := range replies {
		c.OnReviewDeleting(reply.ID)
	}

	byReview := map[string]interface{}{models.MetaReviewID: reviewID}
	c.retract(models.NotificationCommentReaction, byReview)
	c.retract(models.NotificationReply, byReview)
	// Reply notifications are addressed through parent linkage as well.
	c.retract(models.NotificationReply, map[string]interface{}{models.MetaParentID: reviewID})
	c.retract(models.NotificationProductComment, byReview)
}
