package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact message statuses.
const (
	ContactStatusNew       = "New"
	ContactStatusRead      = "Read"
	ContactStatusResponded = "Responded"
)

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID          uuid.UUID  `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Email       string     `json:"email" gorm:"type:varchar(255);not null"`
	Subject     string     `json:"subject" gorm:"type:varchar(200);default:'Contact Form Submission'"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:'New';index"`
	Response    string     `json:"response,omitempty" gorm:"type:text"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	RespondedBy *uuid.UUID `json:"respondedBy,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the ContactMessage model
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// SubmitContactRequest is the payload for POST /contact
type SubmitContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// RespondContactRequest is the payload for PUT /contact/:id/respond
type RespondContactRequest struct {
	Response string `json:"response" binding:"required"`
}

// ContactListResponse is the paginated admin contact listing.
type ContactListResponse struct {
	Messages []ContactMessage `json:"messages"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int64            `json:"total"`
}
