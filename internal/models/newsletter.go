package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber is a newsletter signup. Emails are unique.
type NewsletterSubscriber struct {
	ID        uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the NewsletterSubscriber model
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}

// SubscribeRequest is the payload for subscribe/unsubscribe.
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendNewsletterRequest is the payload for POST /newsletter/send
type SendNewsletterRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SubscriberListResponse is the paginated admin subscriber listing.
type SubscriberListResponse struct {
	Subscribers []NewsletterSubscriber `json:"subscribers"`
	Page        int                    `json:"page"`
	Pages       int                    `json:"pages"`
	Total       int64                  `json:"total"`
}
