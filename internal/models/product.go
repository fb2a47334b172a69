package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry. Stock and sales counters are mutated by the
// order engine; rating and numReviews are recomputed by the review service.
type Product struct {
	ID               uuid.UUID      `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	Description      string         `json:"description" gorm:"type:text;not null"`
	Price            float64        `json:"price" gorm:"type:decimal(12,2);not null"`
	IsOnSale         bool           `json:"isOnSale" gorm:"default:false"`
	SalePrice        float64        `json:"salePrice" gorm:"type:decimal(12,2)"`
	Image            string         `json:"image" gorm:"type:varchar(512);default:'/img/product01.png'"`
	AdditionalImages pq.StringArray `json:"additionalImages" gorm:"type:text[]"`
	CategoryID       uuid.UUID      `json:"category" gorm:"type:uuid;not null;index"`
	Category         *Category      `json:"categoryDetails,omitempty" gorm:"foreignKey:CategoryID"`
	Brand            string         `json:"brand" gorm:"type:varchar(100)"`
	CountInStock     int            `json:"countInStock" gorm:"not null;default:0;check:count_in_stock >= 0"`
	Rating           float64        `json:"rating" gorm:"default:0"`
	NumReviews       int            `json:"numReviews" gorm:"default:0"`
	SalesCount       int            `json:"salesCount" gorm:"default:0"`
	IsFeatured       bool           `json:"isFeatured" gorm:"default:false"`
	IsNew            bool           `json:"isNew" gorm:"default:true"`
	CreatedAt        time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the sale price when the product is on sale,
// otherwise the list price.
func (p *Product) EffectivePrice() float64 {
	if p.IsOnSale {
		return p.SalePrice
	}
	return p.Price
}

// CreateProductRequest is the payload for POST /products
type CreateProductRequest struct {
	Name             string   `json:"name" binding:"required,max=100"`
	Description      string   `json:"description" binding:"required,max=2000"`
	Price            float64  `json:"price" binding:"required,gte=0"`
	Image            string   `json:"image"`
	AdditionalImages []string `json:"additionalImages"`
	Brand            string   `json:"brand"`
	Category         string   `json:"category" binding:"required,uuid"`
	CountInStock     int      `json:"countInStock" binding:"gte=0"`
	IsFeatured       bool     `json:"isFeatured"`
	IsOnSale         bool     `json:"isOnSale"`
	SalePrice        float64  `json:"salePrice" binding:"gte=0"`
}

// UpdateProductRequest carries a partial product update. Pointer fields
// distinguish "not provided" from explicit false/zero overrides.
type UpdateProductRequest struct {
	Name             *string   `json:"name"`
	Description      *string   `json:"description"`
	Price            *float64  `json:"price"`
	Image            *string   `json:"image"`
	AdditionalImages *[]string `json:"additionalImages"`
	Brand            *string   `json:"brand"`
	Category         *string   `json:"category"`
	CountInStock     *int      `json:"countInStock"`
	IsFeatured       *bool     `json:"isFeatured"`
	IsOnSale         *bool     `json:"isOnSale"`
	SalePrice        *float64  `json:"salePrice"`
	IsNew            *bool     `json:"isNew"`
}

// ProductFilter describes the list query of GET /products.
type ProductFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	Sort       string
	Page       int
	PageSize   int
}

// ProductListResponse is the paginated list envelope for catalog queries.
type ProductListResponse struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int64     `json:"total"`
}
