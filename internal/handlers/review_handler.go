package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// ReviewHandler handles HTTP requests related to reviews and replies
type ReviewHandler struct {
	reviewRepository  repositories.ReviewRepository
	productRepository repositories.ProductRepository
	userRepository    repositories.UserRepository
	dispatcher        *services.Dispatcher
	compensator       *services.Compensator
	sanitizer         *bluemonday.Policy
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	reviewRepo repositories.ReviewRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	dispatcher *services.Dispatcher,
	compensator *services.Compensator,
) *ReviewHandler {
	return &ReviewHandler{
		reviewRepository:  reviewRepo,
		productRepository: productRepo,
		userRepository:    userRepo,
		dispatcher:        dispatcher,
		compensator:       compensator,
		sanitizer:         bluemonday.UGCPolicy(),
	}
}

// RegisterReviewRoutes registers review-related routes
func (h *ReviewHandler) RegisterReviewRoutes(g *echo.Group) {
	g.POST("/products/:product_id/reviews", h.CreateReview)
	g.GET("/products/:product_id/reviews", h.GetReviewsByProductID)
	g.GET("/reviews/:id/replies", h.GetReplies)
	g.DELETE("/reviews/:id", h.DeleteReview)
}

// CreateReview posts a review or a reply on a product
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	productID := c.Param("product_id")

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.productRepository.GetProductByID(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	var parent *models.Review
	if req.ParentID != nil {
		parent, err = h.reviewRepository.GetReviewByID(*req.ParentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Parent review not found")
		}
		if parent.ProductID != productID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent review belongs to a different product")
		}
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    currentUserID,
		ParentID:  req.ParentID,
		Content:   h.sanitizer.Sanitize(req.Content),
	}
	if err := h.reviewRepository.CreateReview(review); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.productRepository.IncrementReviewsCount(context.Background(), productID)

	// Review creation succeeds even when notification delivery fails.
	if parent != nil {
		h.dispatcher.NotifyReply(parent.UserID, actor, review)
	} else {
		h.dispatcher.NotifyProductComment(product.OwnerID, actor, product.Name, review)
	}

	return c.JSON(http.StatusCreated, review)
}

// GetReviewsByProductID retrieves top-level reviews for a product
func (h *ReviewHandler) GetReviewsByProductID(c echo.Context) error {
	productID := c.Param("product_id")

	if _, err := h.productRepository.GetProductByID(c.Request().Context(), productID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	reviews, err := h.reviewRepository.GetReviewsByProductID(productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reviews)
}

// GetReplies retrieves the direct replies of a review
func (h *ReviewHandler) GetReplies(c echo.Context) error {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	replies, err := h.reviewRepository.GetReplies(uint(reviewID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, replies)
}

// DeleteReview deletes a review after retracting every notification tied
// to it and to its reply tree
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	review, err := h.reviewRepository.GetReviewByID(uint(reviewID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Review not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if review.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this review")
	}

	// Compensation runs before any row disappears.
	h.compensator.OnReviewDeleting(uint(reviewID))

	if err := h.deleteTree(uint(reviewID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.productRepository.DecrementReviewsCount(context.Background(), review.ProductID)

	return c.NoContent(http.StatusNoContent)
}

// deleteTree removes a review and its replies depth-first
func (h *ReviewHandler) deleteTree(reviewID uint) error {
	replies, err := h.reviewRepository.GetReplies(reviewID)
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if err := h.deleteTree(reply.ID); err != nil {
			return err
		}
	}
	return h.reviewRepository.DeleteReview(reviewID)
}
