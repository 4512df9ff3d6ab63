package handlers

import (
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SecurityHandler ingests security-tool detections and exposes the logs
// to admins
type SecurityHandler struct {
	escalation    *services.EscalationService
	logRepository repositories.DetectionLogRepository
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(escalation *services.EscalationService, logRepo repositories.DetectionLogRepository) *SecurityHandler {
	return &SecurityHandler{
		escalation:    escalation,
		logRepository: logRepo,
	}
}

// RegisterSecurityRoutes registers the detection ingest route
func (h *SecurityHandler) RegisterSecurityRoutes(g *echo.Group) {
	g.POST("/security/detections", h.ReportDetection)
}

// RegisterAdminRoutes registers detection log inspection for admins
func (h *SecurityHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users/:id/detections", h.GetDetections)
}

// ReportDetection records one detection event for the caller and runs
// the escalation policy over it
func (h *SecurityHandler) ReportDetection(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ReportDetectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.escalation.RecordDetection(currentUserID, req.Tool); err != nil {
		switch err {
		case services.ErrForbidden:
			return echo.NewHTTPError(http.StatusForbidden, "Account is locked")
		case services.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"recorded": true}})
}

// GetDetections returns paginated detection logs for one user
func (h *SecurityHandler) GetDetections(c echo.Context) error {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := h.logRepository.GetByUserID(uint(targetID), page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"detections": logs},
		"meta":    echo.Map{"currentPage": page, "totalItems": total},
	})
}
