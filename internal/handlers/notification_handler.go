package handlers

import (
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications  *services.NotificationService
	dispatcher     *services.Dispatcher
	userRepository repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService, dispatcher *services.Dispatcher, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notifications:  notifications,
		dispatcher:     dispatcher,
		userRepository: userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// RegisterAdminRoutes registers the admin-send route
func (h *NotificationHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/notifications", h.SendNotification)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	result, err := h.notifications.List(currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"notifications": result.Notifications},
		"meta": echo.Map{
			"currentPage":  result.Page,
			"totalItems":   result.Total,
			"itemsPerPage": result.Limit,
			"hasNextPage":  result.HasMore,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notifications.UnreadCount(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notifications.MarkRead(currentUserID, uint(notifID)); err != nil {
		return notificationError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notifications.MarkAllRead(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// DeleteNotification deletes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notifications.Delete(currentUserID, uint(notifID)); err != nil {
		return notificationError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SendNotification lets an admin message one user or broadcast to everyone
func (h *NotificationHandler) SendNotification(c echo.Context) error {
	var req models.SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.UserID != 0 {
		if err := h.dispatcher.NotifyAdminMessage(req.UserID, req.Title, req.Content); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"delivered": 1}})
	}

	// Broadcast: one independent delivery per user, failures isolated.
	delivered := 0
	page := 1
	for {
		users, _, err := h.userRepository.GetUsers(page, 100)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(users) == 0 {
			break
		}
		for _, user := range users {
			if err := h.dispatcher.NotifyAdminMessage(user.ID, req.Title, req.Content); err != nil {
				logrus.WithError(err).WithField("user_id", user.ID).Warn("failed to deliver admin broadcast")
				continue
			}
			delivered++
		}
		page++
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"delivered": delivered}})
}

func notificationError(err error) error {
	switch err {
	case services.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	case services.ErrForbidden:
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this notification")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
