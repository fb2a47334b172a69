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

// ReviewHandler serves the /reviews endpoints.
type ReviewHandler struct {
	reviewService *services.ReviewService
	logger        *logrus.Entry
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.WithField("handler", "review"),
	}
}

// ListByProduct handles GET /reviews/product/:productId
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	reviews, err := h.reviewService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// Create handles POST /reviews/product/:productId
func (h *ReviewHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), user.ID, productID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// Update handles PUT /reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review removed"})
}

// List handles GET /reviews (admin)
func (h *ReviewHandler) List(c *gin.Context) {
	resp, err := h.reviewService.List(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
