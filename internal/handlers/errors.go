package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/services"
)

// respondError maps a service error onto the public error contract:
// {"error": string} with 400/401/403/404, or a generic 500 with the detail
// kept server-side.
func respondError(c *gin.Context, logger *logrus.Entry, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		if _, ok := services.IsNotFoundError(err); ok {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if _, ok := services.IsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, ok := services.IsConflictError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, ok := services.IsStockError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, ok := services.IsForbiddenError(err); ok {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// respondBindError maps a request binding failure to 400.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
