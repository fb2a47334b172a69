package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// CartService implements the cart engine. Every operation works for both
// authenticated users (one cart per user, created lazily) and guests (cart
// addressed by the ID the client holds in a cookie). When a guest operation
// has to create a cart, the new ID is returned so the handler can set the
// cookie.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *logrus.Entry
}

// NewCartService creates a new cart service
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *logrus.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.WithField("component", "services.cart"),
	}
}

// resolveCart finds the caller's cart, creating one when absent. The second
// return value is non-nil when a fresh guest cart was created.
func (s *CartService) resolveCart(ctx context.Context, userID, guestCartID *uuid.UUID) (*models.Cart, *uuid.UUID, error) {
	if userID != nil {
		cart, err := s.cartRepo.GetByUserID(ctx, *userID)
		if err == nil {
			return cart, nil, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		cart = &models.Cart{UserID: userID}
		if err := s.cartRepo.Create(ctx, cart); err != nil {
			return nil, nil, err
		}
		return cart, nil, nil
	}

	if guestCartID != nil {
		cart, err := s.cartRepo.GetGuestByID(ctx, *guestCartID)
		if err == nil {
			return cart, nil, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		// Stale cookie; fall through and mint a new cart.
	}

	cart := &models.Cart{}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, nil, err
	}
	return cart, &cart.ID, nil
}

// reload re-reads the cart with items and products for the response view.
func (s *CartService) reload(ctx context.Context, cartID uuid.UUID) (*models.CartResponse, error) {
	cart, err := s.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	resp := models.NewCartResponse(cart)
	return &resp, nil
}

// GetCart returns the caller's cart, creating an empty one when needed.
func (s *CartService) GetCart(ctx context.Context, userID, guestCartID *uuid.UUID) (*models.CartResponse, *uuid.UUID, error) {
	cart, newGuestID, err := s.resolveCart(ctx, userID, guestCartID)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.reload(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return resp, newGuestID, nil
}

// AddItem puts a product in the cart. Adding a product already present
// merges quantities; the combined quantity must fit in stock.
func (s *CartService) AddItem(ctx context.Context, userID, guestCartID *uuid.UUID, req *models.AddToCartRequest) (*models.CartResponse, *uuid.UUID, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, nil, NewValidationError("invalid product id")
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("Product")
		}
		return nil, nil, err
	}

	cart, newGuestID, err := s.resolveCart(ctx, userID, guestCartID)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	switch {
	case err == nil:
		wanted := existing.Quantity + quantity
		if wanted > product.CountInStock {
			return nil, nil, NewStockError(product.Name, product.CountInStock)
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, wanted); err != nil {
			return nil, nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.CountInStock {
			return nil, nil, NewStockError(product.Name, product.CountInStock)
		}
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.cartRepo.AddItem(ctx, item); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	resp, err := s.reload(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return resp, newGuestID, nil
}

// UpdateItem sets a line's quantity. Quantities below one are rejected;
// removal goes through RemoveItem.
func (s *CartService) UpdateItem(ctx context.Context, userID, guestCartID *uuid.UUID, itemID uuid.UUID, quantity int) (*models.CartResponse, *uuid.UUID, error) {
	if quantity < 1 {
		return nil, nil, NewValidationError("quantity must be at least 1")
	}

	cart, newGuestID, err := s.resolveCart(ctx, userID, guestCartID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.cartRepo.GetItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("Cart item")
		}
		return nil, nil, err
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if quantity > product.CountInStock {
		return nil, nil, NewStockError(product.Name, product.CountInStock)
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, nil, err
	}

	resp, err := s.reload(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return resp, newGuestID, nil
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, guestCartID *uuid.UUID, itemID uuid.UUID) (*models.CartResponse, *uuid.UUID, error) {
	cart, newGuestID, err := s.resolveCart(ctx, userID, guestCartID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.cartRepo.GetItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("Cart item")
		}
		return nil, nil, err
	}
	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return nil, nil, err
	}

	resp, err := s.reload(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return resp, newGuestID, nil
}

// Clear empties the cart. Clearing an already empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID, guestCartID *uuid.UUID) (*models.CartResponse, *uuid.UUID, error) {
	cart, newGuestID, err := s.resolveCart(ctx, userID, guestCartID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return nil, nil, err
	}

	resp, err := s.reload(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	return resp, newGuestID, nil
}

// MergeGuestCart folds a guest cart into the user's cart, creating the user
// cart if needed. A missing or already-claimed guest cart is not an error;
// the user cart is returned unchanged.
func (s *CartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestCartID uuid.UUID) (*models.CartResponse, error) {
	userCart, _, err := s.resolveCart(ctx, &userID, nil)
	if err != nil {
		return nil, err
	}

	guestCart, err := s.cartRepo.GetGuestByID(ctx, guestCartID)
	switch {
	case err == nil:
		if err := s.cartRepo.Merge(ctx, guestCart.ID, userCart.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Nothing to merge.
	default:
		return nil, err
	}

	return s.reload(ctx, userCart.ID)
}
