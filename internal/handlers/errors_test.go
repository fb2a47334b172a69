package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/services"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("handler", "test")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "invalid credentials",
			err:        services.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid email or password",
		},
		{
			name:       "not found",
			err:        services.NewNotFoundError("Product"),
			wantStatus: http.StatusNotFound,
			wantBody:   "Product not found",
		},
		{
			name:       "bare record not found",
			err:        gorm.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Not found",
		},
		{
			name:       "validation",
			err:        services.NewValidationError("No order items"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "No order items",
		},
		{
			name:       "conflict",
			err:        services.NewConflictError("user", "User already exists"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "User already exists",
		},
		{
			name:       "stock",
			err:        services.NewStockError("Sneakers", 3),
			wantStatus: http.StatusBadRequest,
			wantBody:   "not enough stock for Sneakers. Available: 3",
		},
		{
			name:       "forbidden",
			err:        services.NewForbiddenError("Not authorized to view this order"),
			wantStatus: http.StatusForbidden,
			wantBody:   "Not authorized to view this order",
		},
		{
			name:       "unexpected",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/test", nil)

			respondError(c, entry, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["error"])
		})
	}
}
