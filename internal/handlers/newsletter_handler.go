package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/services"
)

// NewsletterHandler serves the /newsletter endpoints.
type NewsletterHandler struct {
	newsletterService *services.NewsletterService
	logger            *logrus.Entry
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(newsletterService *services.NewsletterService, logger *logrus.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
		logger:            logger.WithField("handler", "newsletter"),
	}
}

// Subscribe handles POST /newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.newsletterService.Subscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed successfully"})
}

// Unsubscribe handles POST /newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.newsletterService.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
}

// ListSubscribers handles GET /newsletter/subscribers (admin)
func (h *NewsletterHandler) ListSubscribers(c *gin.Context) {
	resp, err := h.newsletterService.ListSubscribers(c.Request.Context(),
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Send handles POST /newsletter/send (admin)
func (h *NewsletterHandler) Send(c *gin.Context) {
	var req models.SendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipients, err := h.newsletterService.Send(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Newsletter queued for delivery",
		"recipients": recipients,
	})
}
