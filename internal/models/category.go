package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. Names are globally unique.
type Category struct {
	ID          uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Image       string    `json:"image" gorm:"type:varchar(512);default:'/img/placeholder.png'"`
	IsFeatured  bool      `json:"isFeatured" gorm:"default:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// CreateCategoryRequest is the payload for POST /categories
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsFeatured  bool   `json:"isFeatured"`
}

// UpdateCategoryRequest carries a partial category update.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	IsFeatured  *bool   `json:"isFeatured"`
}
