package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trendora/storefront-api/internal/middleware"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/services"
)

// CartHandler serves the /cart endpoints for both guests and users. When a
// service call mints a new guest cart, its handle is written back as the
// guestCartId cookie.
type CartHandler struct {
	cartService   *services.CartService
	logger        *logrus.Entry
	secureCookies bool
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *services.CartService, logger *logrus.Logger, secureCookies bool) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		logger:        logger.WithField("handler", "cart"),
		secureCookies: secureCookies,
	}
}

// identity resolves the caller: authenticated user ID or guest cart handle.
func (h *CartHandler) identity(c *gin.Context) (*uuid.UUID, *uuid.UUID) {
	if user := middleware.CurrentUser(c); user != nil {
		return &user.ID, nil
	}
	return nil, guestCartIDFromCookie(c)
}

func (h *CartHandler) respond(c *gin.Context, status int, resp *models.CartResponse, newGuestID *uuid.UUID) {
	if newGuestID != nil {
		setGuestCartCookie(c, *newGuestID, h.secureCookies)
	}
	c.JSON(status, resp)
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, guestCartID := h.identity(c)
	resp, newGuestID, err := h.cartService.GetCart(c.Request.Context(), userID, guestCartID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, resp, newGuestID)
}

// AddItem handles POST /cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, guestCartID := h.identity(c)
	resp, newGuestID, err := h.cartService.AddItem(c.Request.Context(), userID, guestCartID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, resp, newGuestID)
}

// UpdateItem handles PUT /cart/update/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, guestCartID := h.identity(c)
	resp, newGuestID, err := h.cartService.UpdateItem(c.Request.Context(), userID, guestCartID, itemID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, resp, newGuestID)
}

// RemoveItem handles DELETE /cart/remove/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	userID, guestCartID := h.identity(c)
	resp, newGuestID, err := h.cartService.RemoveItem(c.Request.Context(), userID, guestCartID, itemID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, resp, newGuestID)
}

// Clear handles DELETE /cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	userID, guestCartID := h.identity(c)
	resp, newGuestID, err := h.cartService.Clear(c.Request.Context(), userID, guestCartID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, resp, newGuestID)
}

// Merge handles POST /cart/merge. Requires authentication; the guest cart
// handle comes from the body or the cookie.
func (h *CartHandler) Merge(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.MergeCartRequest
	// Body is optional when the cookie carries the handle.
	_ = c.ShouldBindJSON(&req)

	var guestCartID *uuid.UUID
	if req.GuestCartID != "" {
		id, err := uuid.Parse(req.GuestCartID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guest cart id"})
			return
		}
		guestCartID = &id
	} else {
		guestCartID = guestCartIDFromCookie(c)
	}
	if guestCartID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No guest cart to merge"})
		return
	}

	resp, err := h.cartService.MergeGuestCart(c.Request.Context(), user.ID, *guestCartID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	clearGuestCartCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, resp)
}
