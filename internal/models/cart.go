package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a customer's line items. UserID is nil for guest carts, which
// are addressed by the cart ID held in an HTTP-only cookie on the client.
// At most one cart exists per user.
type Cart struct {
	ID        uuid.UUID  `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    *uuid.UUID `json:"user,omitempty" gorm:"type:uuid;uniqueIndex"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// IsGuest reports whether the cart is anonymous.
func (c *Cart) IsGuest() bool {
	return c.UserID == nil
}

// CartItem is one (product, quantity) line. A product appears at most once
// per cart; adding it again merges quantities.
type CartItem struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CartID    uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Product   Product   `json:"product" gorm:"foreignKey:ProductID"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity >= 1"`
	CreatedAt time.Time `json:"-" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// AddToCartRequest is the payload for POST /cart/add
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest is the payload for PUT /cart/update/:itemId
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// MergeCartRequest is the payload for POST /cart/merge. The guest cart ID
// may also come from the guestCartId cookie.
type MergeCartRequest struct {
	GuestCartID string `json:"guestCartId"`
}

// CartResponse is a cart with totals recomputed from current catalog prices.
type CartResponse struct {
	ID         uuid.UUID  `json:"_id"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	Subtotal   float64    `json:"subtotal"`
	Message    string     `json:"message,omitempty"`
}

// NewCartResponse builds the response view of a cart, deriving totalItems
// and subtotal from the loaded line items and their current effective prices.
func NewCartResponse(cart *Cart) CartResponse {
	resp := CartResponse{
		ID:    cart.ID,
		Items: cart.Items,
	}
	if resp.Items == nil {
		resp.Items = []CartItem{}
	}
	for i := range cart.Items {
		it := &cart.Items[i]
		resp.TotalItems += it.Quantity
		resp.Subtotal += float64(it.Quantity) * it.Product.EffectivePrice()
	}
	return resp
}
