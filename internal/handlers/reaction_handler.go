package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anvarbek/vitrina/backend/internal/models"
	"github.com/anvarbek/vitrina/backend/internal/realtime"
	"github.com/anvarbek/vitrina/backend/internal/repositories"
	"github.com/anvarbek/vitrina/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RoomPusher is the room-addressed side of the live transport, used for
// broadcasting reaction state to everyone watching an entity
type RoomPusher interface {
	PushToRoom(room string, event string, payload interface{})
}

// ReactionHandler handles likes and dislikes on products and reviews
type ReactionHandler struct {
	productReactions  repositories.ProductReactionRepository
	reviewReactions   repositories.ReviewReactionRepository
	productRepository repositories.ProductRepository
	reviewRepository  repositories.ReviewRepository
	userRepository    repositories.UserRepository
	dispatcher        *services.Dispatcher
	compensator       *services.Compensator
	rooms             RoomPusher
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(
	productReactions repositories.ProductReactionRepository,
	reviewReactions repositories.ReviewReactionRepository,
	productRepo repositories.ProductRepository,
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	dispatcher *services.Dispatcher,
	compensator *services.Compensator,
	rooms RoomPusher,
) *ReactionHandler {
	return &ReactionHandler{
		productReactions:  productReactions,
		reviewReactions:   reviewReactions,
		productRepository: productRepo,
		reviewRepository:  reviewRepo,
		userRepository:    userRepo,
		dispatcher:        dispatcher,
		compensator:       compensator,
		rooms:             rooms,
	}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.PUT("/products/:product_id/reactions", h.SetProductReaction)
	g.DELETE("/products/:product_id/reactions", h.ClearProductReaction)
	g.PUT("/reviews/:id/reactions", h.SetReviewReaction)
	g.DELETE("/reviews/:id/reactions", h.ClearReviewReaction)
}

// SetProductReaction likes or dislikes a product. Re-sending the same
// kind is a no-op; sending the other kind switches the reaction.
func (h *ReactionHandler) SetProductReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	productID := c.Param("product_id")

	var req models.SetReactionRequest
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

	previous, err := h.productReactions.Upsert(&models.ProductReaction{
		ProductID: productID,
		UserID:    currentUserID,
		Kind:      req.Kind,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if previous == req.Kind {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"kind": req.Kind}})
	}

	likesDelta, dislikesDelta := reactionDeltas(previous, req.Kind)
	go h.productRepository.AdjustReactionCounts(context.Background(), productID, likesDelta, dislikesDelta)

	// A like that replaced a dislike (or arrived fresh) notifies the
	// owner; a like that got replaced is retracted so no stale
	// notification survives the switch.
	if previous == models.ReactionLike {
		h.compensator.OnProductReactionRemoved(productID, currentUserID)
	}
	if req.Kind == models.ReactionLike {
		if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
			h.dispatcher.NotifyProductLike(product.OwnerID, actor, productID, product.Name)
		}
	}

	h.broadcastProductReactions(productID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"kind": req.Kind}})
}

// ClearProductReaction removes the caller's reaction from a product
func (h *ReactionHandler) ClearProductReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	productID := c.Param("product_id")

	kind, err := h.productReactions.Delete(productID, currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	likesDelta, dislikesDelta := reactionDeltas(kind, "")
	go h.productRepository.AdjustReactionCounts(context.Background(), productID, likesDelta, dislikesDelta)

	if kind == models.ReactionLike {
		h.compensator.OnProductReactionRemoved(productID, currentUserID)
	}

	h.broadcastProductReactions(productID)
	return c.NoContent(http.StatusNoContent)
}

// SetReviewReaction likes or dislikes a review
func (h *ReactionHandler) SetReviewReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	var req models.SetReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	review, err := h.reviewRepository.GetReviewByID(uint(reviewID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Review not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	previous, err := h.reviewReactions.Upsert(&models.ReviewReaction{
		ReviewID: uint(reviewID),
		UserID:   currentUserID,
		Kind:     req.Kind,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if previous == req.Kind {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"kind": req.Kind}})
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if previous == "" {
		h.dispatcher.NotifyCommentReaction(review.UserID, actor, review, req.Kind)
	} else {
		// Switching kinds retracts the stale notification first.
		h.compensator.OnReviewReactionSwitched(review, actor, req.Kind)
	}

	h.broadcastReviewReactions(uint(reviewID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"kind": req.Kind}})
}

// ClearReviewReaction removes the caller's reaction from a review
func (h *ReactionHandler) ClearReviewReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	if _, err := h.reviewReactions.Delete(uint(reviewID), currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.compensator.OnReviewReactionRemoved(uint(reviewID), currentUserID)
	h.broadcastReviewReactions(uint(reviewID))
	return c.NoContent(http.StatusNoContent)
}

func (h *ReactionHandler) broadcastProductReactions(productID string) {
	likes, _ := h.productReactions.CountByKind(productID, models.ReactionLike)
	dislikes, _ := h.productReactions.CountByKind(productID, models.ReactionDislike)
	h.rooms.PushToRoom("product:"+productID, realtime.EventReactionUpdate, echo.Map{
		"product_id": productID,
		"likes":      likes,
		"dislikes":   dislikes,
	})
}

func (h *ReactionHandler) broadcastReviewReactions(reviewID uint) {
	likes, _ := h.reviewReactions.CountByKind(reviewID, models.ReactionLike)
	dislikes, _ := h.reviewReactions.CountByKind(reviewID, models.ReactionDislike)
	h.rooms.PushToRoom(fmt.Sprintf("review:%d", reviewID), realtime.EventReactionUpdate, echo.Map{
		"review_id": reviewID,
		"likes":     likes,
		"dislikes":  dislikes,
	})
}

// reactionDeltas maps a kind transition to like/dislike counter deltas
func reactionDeltas(previous, next string) (likes, dislikes int) {
	switch previous {
	case models.ReactionLike:
		likes--
	case models.ReactionDislike:
		dislikes--
	}
	switch next {
	case models.ReactionLike:
		likes++
	case models.ReactionDislike:
		dislikes++
	}
	return likes, dislikes
}
