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

// ContactHandler serves the /contact endpoints.
type ContactHandler struct {
	contactService *services.ContactService
	logger         *logrus.Entry
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger.WithField("handler", "contact"),
	}
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	message, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// List handles GET /contact (admin)
func (h *ContactHandler) List(c *gin.Context) {
	resp, err := h.contactService.List(c.Request.Context(), c.Query("status"),
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /contact/:id (admin)
func (h *ContactHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact message not found"})
		return
	}

	message, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// Respond handles PUT /contact/:id/respond (admin)
func (h *ContactHandler) Respond(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact message not found"})
		return
	}

	var req models.RespondContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	message, err := h.contactService.Respond(c.Request.Context(), admin.ID, id, req.Response)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// Delete handles DELETE /contact/:id (admin)
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact message not found"})
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact message removed"})
}
