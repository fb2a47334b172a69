package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authCookieName      = "token"
	guestCartCookieName = "guestCartId"

	// Both cookies live 30 days, matching the session token lifetime.
	cookieMaxAge = 30 * 24 * 60 * 60
)

// setAuthCookie stores the session token in an HTTP-only cookie.
func setAuthCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, cookieMaxAge, "/", "", secure, true)
}

// clearAuthCookie removes the session cookie on logout.
func clearAuthCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, "", -1, "/", "", secure, true)
}

// setGuestCartCookie hands a fresh guest cart handle to the client.
func setGuestCartCookie(c *gin.Context, cartID uuid.UUID, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guestCartCookieName, cartID.String(), cookieMaxAge, "/", "", secure, true)
}

// clearGuestCartCookie drops the guest cart handle after a merge.
func clearGuestCartCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guestCartCookieName, "", -1, "/", "", secure, true)
}

// guestCartIDFromCookie reads the guest cart handle, if the cookie holds a
// valid one.
func guestCartIDFromCookie(c *gin.Context) *uuid.UUID {
	value, err := c.Cookie(guestCartCookieName)
	if err != nil || value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil
	}
	return &id
}
