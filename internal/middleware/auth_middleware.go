package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/services"
)

// UserContextKey is the gin context key holding the authenticated *models.User.
const UserContextKey = "user"

// AuthMiddleware resolves the session token (token cookie or Authorization
// bearer header) to a user.
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// extractToken pulls the session token from the token cookie, falling back
// to the Authorization header.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// AuthRequired rejects requests without a valid session.
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token"})
			c.Abort()
			return
		}

		user, err := m.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, token failed"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid session is present and lets
// anonymous requests through untouched. Used by the cart endpoints, which
// serve both guests and users.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token != "" {
			if user, err := m.authService.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(UserContextKey, user)
			}
		}
		c.Next()
	}
}

// AdminRequired rejects non-admin sessions. Must run after AuthRequired.
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized as admin"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
