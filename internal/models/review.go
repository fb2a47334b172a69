package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating for a product. A user may review a product
// at most once; the unique index enforces the pair.
type Review struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	User      *User     `json:"userDetails,omitempty" gorm:"foreignKey:UserID"`
	ProductID uuid.UUID `json:"product" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	Product   *Product  `json:"productDetails,omitempty" gorm:"foreignKey:ProductID"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// CreateReviewRequest is the payload for POST /reviews/product/:productId
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest carries a partial review update.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ReviewListResponse is the paginated admin review listing.
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	Total   int64    `json:"total"`
}
