package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedProductHandler handles bookmark HTTP requests
type SavedProductHandler struct {
	savedRepository   repositories.SavedProductRepository
	productRepository repositories.ProductRepository
	userRepository    repositories.UserRepository
	dispatcher        *services.Dispatcher
	compensator       *services.Compensator
	rooms             RoomPusher
}

// NewSavedProductHandler creates a new SavedProductHandler
func NewSavedProductHandler(
	savedRepo repositories.SavedProductRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	dispatcher *services.Dispatcher,
	compensator *services.Compensator,
	rooms RoomPusher,
) *SavedProductHandler {
	return &SavedProductHandler{
		savedRepository:   savedRepo,
		productRepository: productRepo,
		userRepository:    userRepo,
		dispatcher:        dispatcher,
		compensator:       compensator,
		rooms:             rooms,
	}
}

// RegisterSavedProductRoutes registers bookmark routes
func (h *SavedProductHandler) RegisterSavedProductRoutes(g *echo.Group) {
	g.POST("/products/:id/save", h.SaveProduct)
	g.DELETE("/products/:id/save", h.UnsaveProduct)
	g.GET("/saved-products", h.GetSavedProducts)
}

// SaveProduct bookmarks a product
func (h *SavedProductHandler) SaveProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	productID := c.Param("id")

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	// Check if already saved
	isSaved, _ := h.savedRepository.IsProductSaved(currentUserID, productID)
	if isSaved {
		return echo.NewHTTPError(http.StatusConflict, "Product already saved")
	}

	saved := &models.SavedProduct{
		UserID:    currentUserID,
		ProductID: productID,
	}
	if err := h.savedRepository.SaveProduct(saved); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.productRepository.IncrementSavesCount(context.Background(), productID)

	if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
		h.dispatcher.NotifyProductSave(product.OwnerID, actor, productID, product.Name)
	}

	h.broadcastSavesCount(productID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": true}})
}

// UnsaveProduct removes a bookmark and retracts its notification
func (h *SavedProductHandler) UnsaveProduct(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	productID := c.Param("id")

	if err := h.savedRepository.UnsaveProduct(currentUserID, productID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Saved product not found")
	}

	go h.productRepository.DecrementSavesCount(context.Background(), productID)

	h.compensator.OnProductUnsaved(productID, currentUserID)

	h.broadcastSavesCount(productID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"saved": false}})
}

// GetSavedProducts returns the caller's bookmarks with pagination
func (h *SavedProductHandler) GetSavedProducts(c echo.Context) error {
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

	saved, total, err := h.savedRepository.GetSavedByUserID(currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"saved": saved},
		"meta": echo.Map{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalItems":  total,
		},
	})
}

func (h *SavedProductHandler) broadcastSavesCount(productID string) {
	saves, _ := h.savedRepository.GetSavesCountByProductID(productID)
	h.rooms.PushToRoom("product:"+productID, realtime.EventReactionUpdate, echo.Map{
		"product_id": productID,
		"saves":      saves,
	})
}
