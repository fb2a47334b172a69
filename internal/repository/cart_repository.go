package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetGuestByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Merge(ctx context.Context, guestCartID, userCartID uuid.UUID) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetGuestByID only matches anonymous carts; a user-owned cart is never
// reachable through the guest cookie.
func (r *cartRepository) GetGuestByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ? AND user_id IS NULL", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Cart{}, "id = ?", id).Error
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) GetItemByID(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND cart_id = ?", itemID, cartID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

// Merge folds every guest line item into the user cart and deletes the
// guest cart, all inside one transaction so a failure leaves the guest cart
// intact for a later retry.
func (r *cartRepository) Merge(ctx context.Context, guestCartID, userCartID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guestItems []models.CartItem
		if err := tx.Find(&guestItems, "cart_id = ?", guestCartID).Error; err != nil {
			return err
		}

		for _, guestItem := range guestItems {
			var existing models.CartItem
			err := tx.First(&existing, "cart_id = ? AND product_id = ?", userCartID, guestItem.ProductID).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).
					Update("quantity", existing.Quantity+guestItem.Quantity).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				item := models.CartItem{
					CartID:    userCartID,
					ProductID: guestItem.ProductID,
					Quantity:  guestItem.Quantity,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.Delete(&models.CartItem{}, "cart_id = ?", guestCartID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Cart{}, "id = ?", guestCartID).Error
	})
}
