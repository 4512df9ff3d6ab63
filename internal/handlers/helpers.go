package handlers

import (
	"github.com/anvarbek/vitrina/backend/internal/middleware"
	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getClaims extracts the authenticated JWT claims from the echo context
func getClaims(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get(middleware.ContextKeyUser).(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's id, zero when absent
func getUserIDFromContext(c echo.Context) uint {
	claims := getClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
