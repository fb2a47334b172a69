package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	notFound := NewNotFoundError("Order")
	assert.Equal(t, "Order not found", notFound.Error())

	stock := NewStockError("Sneakers", 3)
	assert.Equal(t, "not enough stock for Sneakers. Available: 3", stock.Error())

	_, ok := IsNotFoundError(notFound)
	assert.True(t, ok)
	_, ok = IsNotFoundError(stock)
	assert.False(t, ok)

	got, ok := IsStockError(stock)
	require.True(t, ok)
	assert.Equal(t, 3, got.Available)
}

func TestErrorTaxonomyWrapped(t *testing.T) {
	wrapped := fmt.Errorf("checkout failed: %w", NewValidationError("No order items"))

	verr, ok := IsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "No order items", verr.Message)

	_, ok = IsConflictError(wrapped)
	assert.False(t, ok)
}
