package models

import (
	"time"

	"github.com/google/uuid"
)

// Order status lifecycle: Created -> Paid -> Delivered, with Cancelled
// reachable from any state before delivery.
const (
	OrderStatusCreated   = "Created"
	OrderStatusPaid      = "Paid"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Order is a checkout snapshot. Line items capture the price at purchase
// time; later catalog changes do not affect existing orders.
type Order struct {
	ID              uuid.UUID   `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID   `json:"user" gorm:"type:uuid;not null;index"`
	User            *User       `json:"userDetails,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress Address     `json:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   string      `json:"paymentMethod" gorm:"type:varchar(50)"`

	ItemsPrice    float64 `json:"itemsPrice" gorm:"type:decimal(12,2)"`
	TaxPrice      float64 `json:"taxPrice" gorm:"type:decimal(12,2)"`
	ShippingPrice float64 `json:"shippingPrice" gorm:"type:decimal(12,2)"`
	TotalPrice    float64 `json:"totalPrice" gorm:"type:decimal(12,2)"`

	Status string `json:"status" gorm:"type:varchar(20);default:'Created';index"`

	IsPaid        bool           `json:"isPaid" gorm:"default:false"`
	PaidAt        *time.Time     `json:"paidAt,omitempty"`
	PaymentResult *PaymentResult `json:"paymentResult,omitempty" gorm:"embedded;embeddedPrefix:payment_"`

	IsDelivered bool       `json:"isDelivered" gorm:"default:false"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a purchased line with the price captured at creation.
type OrderItem struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	Image     string    `json:"image" gorm:"type:varchar(512)"`
	Price     float64   `json:"price" gorm:"type:decimal(12,2)"`
	Quantity  int       `json:"quantity" gorm:"not null"`
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// PaymentResult records the confirmation from the external payment provider.
type PaymentResult struct {
	Reference    string `json:"id" gorm:"type:varchar(128)"`
	Status       string `json:"status" gorm:"type:varchar(50)"`
	UpdateTime   string `json:"update_time" gorm:"type:varchar(64)"`
	EmailAddress string `json:"email_address" gorm:"type:varchar(255)"`
}

// CreateOrderRequest is the payload for POST /orders
type CreateOrderRequest struct {
	OrderItems      []CreateOrderItem `json:"orderItems" binding:"required"`
	ShippingAddress Address           `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	TaxPrice        float64           `json:"taxPrice" binding:"gte=0"`
	ShippingPrice   float64           `json:"shippingPrice" binding:"gte=0"`
}

// CreateOrderItem names a product and quantity to purchase.
type CreateOrderItem struct {
	Product  string `json:"product" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gte=1"`
}

// PayOrderRequest carries the payment confirmation payload for
// PUT /orders/:id/pay.
type PayOrderRequest struct {
	Reference    string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// UpdateOrderStatusRequest is the payload for the admin status overwrite.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListResponse is the paginated admin order listing.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
	Total  int64   `json:"total"`
}
