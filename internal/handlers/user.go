package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles profile and admin user management requests
type UserHandler struct {
	userRepository repositories.UserRepository
	dispatcher     *services.Dispatcher
	pusher         services.Pusher
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, dispatcher *services.Dispatcher, pusher services.Pusher) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		dispatcher:     dispatcher,
		pusher:         pusher,
	}
}

// RegisterProfileRoutes registers routes available to any authenticated user
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/me", h.GetProfile)
}

// RegisterAdminRoutes registers user management routes for admins
func (h *UserHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.PUT("/users/:id/ban", h.BanUser)
	g.PUT("/users/:id/unban", h.UnbanUser)
}

// GetProfile returns the authenticated user
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// GetUsers returns paginated users for the admin panel
func (h *UserHandler) GetUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.userRepository.GetUsers(page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"users": users},
		"meta": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalItems":  total,
		},
	})
}

// BanUser sets a user's status to banned, pushes the live ban event and
// notifies the affected user
func (h *UserHandler) BanUser(c echo.Context) error {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if uint(targetID) == getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot ban yourself")
	}

	if err := h.userRepository.UpdateStatus(uint(targetID), models.StatusBanned); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.pusher.PushToUser(uint(targetID), realtime.EventAccountBanned, nil)
	h.dispatcher.NotifyAccountLocked(uint(targetID))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"banned": true}})
}

// UnbanUser restores a banned user to normal status
func (h *UserHandler) UnbanUser(c echo.Context) error {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.userRepository.UpdateStatus(uint(targetID), models.StatusNormal); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.NotifyAdminMessage(uint(targetID), "Account restored", "Your account has been restored. Please follow the community guidelines.")

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"banned": false}})
}
