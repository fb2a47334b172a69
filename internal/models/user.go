package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is the postal address embedded in users and snapshotted on orders.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// User represents a registered customer or administrator
type User struct {
	ID       uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name     string    `json:"name" gorm:"type:varchar(50);not null"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone    string    `json:"phone" gorm:"type:varchar(30)"`
	Address  Address   `json:"address" gorm:"embedded;embeddedPrefix:address_"`

	IsAdmin    bool `json:"isAdmin" gorm:"default:false"`
	IsVerified bool `json:"isVerified" gorm:"default:false"`

	VerificationToken    string     `json:"-" gorm:"type:varchar(128);index"`
	VerificationExpires  *time.Time `json:"-"`
	ResetPasswordToken   string     `json:"-" gorm:"type:varchar(128);index"`
	ResetPasswordExpires *time.Time `json:"-"`

	Wishlist []Product `json:"wishlist,omitempty" gorm:"many2many:user_wishlist;"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the payload for POST /auth/login. GuestCartID lets the
// client hand over its guest cart for a merge after authentication.
type LoginRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	GuestCartID string `json:"guestCartId"`
}

// UpdateProfileRequest carries a partial profile update. Pointer fields
// distinguish "not provided" from an explicit zero value.
type UpdateProfileRequest struct {
	Name    *string        `json:"name"`
	Email   *string        `json:"email"`
	Phone   *string        `json:"phone"`
	Address *AddressUpdate `json:"address"`
}

// AddressUpdate carries a partial address update.
type AddressUpdate struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
}

// ChangePasswordRequest is the payload for PUT /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ForgotPasswordRequest is the payload for POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the payload for POST /auth/reset-password/:token
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse is the public view of a user returned by the auth endpoints.
type UserResponse struct {
	ID         uuid.UUID `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Address    Address   `json:"address"`
	IsAdmin    bool      `json:"isAdmin"`
	IsVerified bool      `json:"isVerified"`
	Token      string    `json:"token,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// ToResponse converts a user to its public representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Address:    u.Address,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
	}
}
