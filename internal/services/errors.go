package services

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by Login when the email is unknown or
// the password does not match. The two cases are deliberately not
// distinguished in the message.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NotFoundError marks a missing entity. Handlers map it to 404.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsNotFoundError checks if an error is a NotFoundError
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr, true
	}
	return nil, false
}

// ValidationError represents a validation failure. Handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

// ConflictError represents a resource conflict (e.g. already exists).
// Handlers map it to 400 to match the public API contract.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a new conflict error
func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

// IsConflictError checks if an error is a ConflictError
func IsConflictError(err error) (*ConflictError, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return conflictErr, true
	}
	return nil, false
}

// ForbiddenError marks an ownership or role failure. Handlers map it to 403.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// IsForbiddenError checks if an error is a ForbiddenError
func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var forbiddenErr *ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return forbiddenErr, true
	}
	return nil, false
}

// StockError reports insufficient stock for a product, carrying the count
// still available so the client can adjust the quantity.
type StockError struct {
	ProductName string
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d", e.ProductName, e.Available)
}

// NewStockError creates a new stock error
func NewStockError(productName string, available int) *StockError {
	return &StockError{ProductName: productName, Available: available}
}

// IsStockError checks if an error is a StockError
func IsStockError(err error) (*StockError, bool) {
	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return stockErr, true
	}
	return nil, false
}
