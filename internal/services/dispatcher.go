package services

import (
	"fmt"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// contentPreviewLimit is where interpolated source content gets cut off
const contentPreviewLimit = 50

// Pusher is the live-push transport seen from the dispatcher's side. The
// hub satisfies it; injecting the interface instead of the hub breaks the
// notification/transport dependency cycle.
type Pusher interface {
	PushToUser(userID uint, event string, payload interface{})
}

// Event is a domain event that should surface as a notification
type Event struct {
	UserID   uint
	Type     string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// Dispatcher turns domain events into persisted notifications, cache
// invalidations and live pushes, in that order. Persistence failures
// propagate; push failures are logged and swallowed since delivery is a
// best-effort enhancement of the primary action.
type Dispatcher struct {
	notifications *NotificationService
	users         repositories.UserRepository
	pusher        Pusher
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(notifications *NotificationService, users repositories.UserRepository, pusher Pusher) *Dispatcher {
	return &Dispatcher{notifications: notifications, users: users, pusher: pusher}
}

// Notify persists the event as a notification, then pushes it to the
// target user's live channel. The persisted row always exists before the
// push is attempted, so a client that misses the push finds it on the
// next poll.
func (d *Dispatcher) Notify(event Event) (*models.Notification, error) {
	notification, err := d.notifications.Create(event.UserID, event.Type, event.Title, event.Content, event.Metadata)
	if err != nil {
		return nil, err
	}

	d.pusher.PushToUser(event.UserID, realtime.EventNotification, notification)
	d.pushUnreadCount(event.UserID)
	return notification, nil
}

// Retract deletes notifications by metadata match and tells every
// affected user which ids disappeared.
func (d *Dispatcher) Retract(notificationType string, filter map[string]interface{}) error {
	byUser, err := d.notifications.DeleteByMetadata(notificationType, filter)
	if err != nil {
		return err
	}
	for userID, ids := range byUser {
		d.pusher.PushToUser(userID, realtime.EventNotificationDeleted, map[string]interface{}{"notification_ids": ids})
		d.pushUnreadCount(userID)
	}
	return nil
}

func (d *Dispatcher) pushUnreadCount(userID uint) {
	count, err := d.notifications.UnreadCount(userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to recount unread notifications")
		return
	}
	d.pusher.PushToUser(userID, realtime.EventUnreadCountUpdate, map[string]interface{}{"count": count})
}

func truncateContent(s string) string {
	runes := []rune(s)
	if len(runes) <= contentPreviewLimit {
		return s
	}
	return string(runes[:contentPreviewLimit]) + "..."
}

// NotifyReply notifies the author of a review that someone replied.
// Self-replies never notify.
func (d *Dispatcher) NotifyReply(recipientID uint, actor *models.User, reply *models.Review) error {
	if actor.ID == recipientID {
		return nil
	}
	metadata := map[string]interface{}{
		models.MetaReviewID:  reply.ID,
		models.MetaProductID: reply.ProductID,
		models.MetaActorID:   actor.ID,
	}
	if reply.ParentID != nil {
		metadata[models.MetaParentID] = *reply.ParentID
	}
	_, err := d.Notify(Event{
		UserID:   recipientID,
		Type:     models.NotificationReply,
		Title:    "New reply",
		Content:  fmt.Sprintf("%s replied to your review: %s", actor.Username, truncateContent(reply.Content)),
		Metadata: metadata,
	})
	return err
}

// NotifyCommentReaction notifies a review author about a like or dislike
func (d *Dispatcher) NotifyCommentReaction(recipientID uint, actor *models.User, review *models.Review, kind string) error {
	if actor.ID == recipientID {
		return nil
	}
	verb := "liked"
	if kind == models.ReactionDislike {
		verb = "disliked"
	}
	metadata := map[string]interface{}{
		models.MetaReviewID: review.ID,
		models.MetaActorID:  actor.ID,
		models.MetaKind:     kind,
	}
	if review.ParentID != nil {
		metadata[models.MetaParentID] = *review.ParentID
	}
	_, err := d.Notify(Event{
		UserID:   recipientID,
		Type:     models.NotificationCommentReaction,
		Title:    "Reaction on your review",
		Content:  fmt.Sprintf("%s %s your review: %s", actor.Username, verb, truncateContent(review.Content)),
		Metadata: metadata,
	})
	return err
}

// NotifyProductLike notifies the product owner about a new like
func (d *Dispatcher) NotifyProductLike(ownerID uint, actor *models.User, productID, productName string) error {
	if actor.ID == ownerID {
		return nil
	}
	_, err := d.Notify(Event{
		UserID:  ownerID,
		Type:    models.NotificationProductLike,
		Title:   "Product liked",
		Content: fmt.Sprintf("%s liked your product %q", actor.Username, productName),
		Metadata: map[string]interface{}{
			models.MetaProductID: productID,
			models.MetaActorID:   actor.ID,
		},
	})
	return err
}

// NotifyProductSave notifies the product owner about a new save
func (d *Dispatcher) NotifyProductSave(ownerID uint, actor *models.User, productID, productName string) error {
	if actor.ID == ownerID {
		return nil
	}
	_, err := d.Notify(Event{
		UserID:  ownerID,
		Type:    models.NotificationProductSave,
		Title:   "Product saved",
		Content: fmt.Sprintf("%s saved your product %q", actor.Username, productName),
		Metadata: map[string]interface{}{
			models.MetaProductID: productID,
			models.MetaActorID:   actor.ID,
		},
	})
	return err
}

// NotifyProductComment notifies the product owner and every admin about a
// new review. All copies share type and metadata so a later retraction by
// review id removes them for every recipient at once.
func (d *Dispatcher) NotifyProductComment(ownerID uint, actor *models.User, productName string, review *models.Review) error {
	metadata := map[string]interface{}{
		models.MetaReviewID:  review.ID,
		models.MetaProductID: review.ProductID,
		models.MetaActorID:   actor.ID,
	}
	content := fmt.Sprintf("%s reviewed %q: %s", actor.Username, productName, truncateContent(review.Content))

	recipients := map[uint]struct{}{}
	if ownerID != actor.ID {
		recipients[ownerID] = struct{}{}
	}
	admins, err := d.users.GetAdmins()
	if err != nil {
		logrus.WithError(err).Warn("failed to load admins for product comment notification")
	}
	for _, admin := range admins {
		if admin.ID == actor.ID {
			continue
		}
		recipients[admin.ID] = struct{}{}
	}

	for recipientID := range recipients {
		_, err := d.Notify(Event{
			UserID:   recipientID,
			Type:     models.NotificationProductComment,
			Title:    "New review",
			Content:  content,
			Metadata: metadata,
		})
		if err != nil {
			logrus.WithError(err).WithField("user_id", recipientID).Warn("failed to notify about product comment")
		}
	}
	return nil
}

// NotifyAdminMessage delivers an admin-authored message to one user
func (d *Dispatcher) NotifyAdminMessage(userID uint, title, content string) error {
	_, err := d.Notify(Event{
		UserID:  userID,
		Type:    models.NotificationAdminMessage,
		Title:   title,
		Content: content,
	})
	return err
}

// NotifyAllAdmins fans a system notification out to every admin, one
// independent delivery per admin. A failed recipient never blocks the rest.
func (d *Dispatcher) NotifyAllAdmins(title, content string, metadata map[string]interface{}) error {
	admins, err := d.users.GetAdmins()
	if err != nil {
		return err
	}
	for _, admin := range admins {
		_, err := d.Notify(Event{
			UserID:   admin.ID,
			Type:     models.NotificationSystem,
			Title:    title,
			Content:  content,
			Metadata: metadata,
		})
		if err != nil {
			logrus.WithError(err).WithField("user_id", admin.ID).Warn("failed to notify admin")
		}
	}
	return nil
}

// NotifySecurityWarning warns a user that their detection count crossed
// the warning threshold
func (d *Dispatcher) NotifySecurityWarning(userID uint, count int64) error {
	_, err := d.Notify(Event{
		UserID:  userID,
		Type:    models.NotificationSecurityWarning,
		Title:   "Security warning",
		Content: fmt.Sprintf("Developer tooling was detected %d times today. Continued use will lock your account.", count),
	})
	return err
}

// NotifyAccountLocked informs a user that their account was locked
func (d *Dispatcher) NotifyAccountLocked(userID uint) error {
	_, err := d.Notify(Event{
		UserID:  userID,
		Type:    models.NotificationAccountLocked,
		Title:   "Account locked",
		Content: "Your account was locked after repeated security violations. Contact support to appeal.",
	})
	return err
}
