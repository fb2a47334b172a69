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

// OrderHandler serves the /orders endpoints.
type OrderHandler struct {
	orderService *services.OrderService
	logger       *logrus.Entry
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger.WithField("handler", "order"),
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMine handles GET /orders/my-orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orders, err := h.orderService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Pay handles PUT /orders/:id/pay
func (h *OrderHandler) Pay(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req models.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.Pay(c.Request.Context(), user, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Cancel handles PUT /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// List handles GET /orders (admin)
func (h *OrderHandler) List(c *gin.Context) {
	resp, err := h.orderService.List(c.Request.Context(), c.Query("status"),
		queryInt(c, "page", 1), queryInt(c, "pageSize", models.DefaultPageSize))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deliver handles PUT /orders/:id/deliver (admin)
func (h *OrderHandler) Deliver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := h.orderService.Deliver(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PUT /orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
