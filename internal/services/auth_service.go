package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/events"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

// AuthService implements registration, login, and account management.
type AuthService struct {
	userRepo      repository.UserRepository
	cartService   *CartService
	passwords     *PasswordService
	jwt           *JWTService
	notifications *NotificationService
	publisher     *events.Publisher
	logger        *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	cartService *CartService,
	passwords *PasswordService,
	jwt *JWTService,
	notifications *NotificationService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		cartService:   cartService,
		passwords:     passwords,
		jwt:           jwt,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.WithField("component", "services.auth"),
	}
}

// normalizeEmail canonicalizes an address for storage and lookup. Emails are
// unique case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account, sends the verification email, and returns
// the signed-in user view with a session token.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("user", "User already exists")
	}

	hashed, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	verificationToken, err := s.passwords.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}
	verificationExpires := time.Now().Add(verificationTokenTTL)

	user := &models.User{
		Name:                req.Name,
		Email:               email,
		Password:            hashed,
		VerificationToken:   verificationToken,
		VerificationExpires: &verificationExpires,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.notifications.SendWelcome(user, verificationToken)
	s.publisher.Publish(ctx, events.SubjectUserRegistered, map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	resp.Token = token
	resp.Message = "Registration successful. Please check your email to verify your account."
	return &resp, nil
}

// Login authenticates a user. A guest cart ID, when provided, is merged
// into the user's cart; merge failures are logged and do not fail the login.
// The second return value reports whether the guest cart handle is spent:
// false means the merge failed and the client must keep its cookie so the
// cart can be retried later.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrInvalidCredentials
		}
		return nil, false, err
	}
	if err := s.passwords.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, false, ErrInvalidCredentials
	}

	guestCartSpent := true
	if req.GuestCartID != "" {
		if guestCartID, err := uuid.Parse(req.GuestCartID); err == nil {
			if _, err := s.cartService.MergeGuestCart(ctx, user.ID, guestCartID); err != nil {
				guestCartSpent = false
				s.logger.WithError(err).WithField("user_id", user.ID).Warn("Guest cart merge failed during login")
			}
		}
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, false, err
	}

	resp := user.ToResponse()
	resp.Token = token
	return &resp, guestCartSpent, nil
}

// Authenticate resolves a session token to its user. Used by middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, claims.UserID)
}

// GetProfile returns a user's public profile.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("User")
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// UpdateProfile applies a partial profile update. Only provided fields
// change; an explicit empty string clears a field.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("User")
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		if email := normalizeEmail(*req.Email); email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, NewConflictError("user", "Email already in use")
			}
			user.Email = email
		}
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		if req.Address.Street != nil {
			user.Address.Street = *req.Address.Street
		}
		if req.Address.City != nil {
			user.Address.City = *req.Address.City
		}
		if req.Address.State != nil {
			user.Address.State = *req.Address.State
		}
		if req.Address.ZipCode != nil {
			user.Address.ZipCode = *req.Address.ZipCode
		}
		if req.Address.Country != nil {
			user.Address.Country = *req.Address.Country
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("User")
		}
		return err
	}

	if err := s.passwords.VerifyPassword(req.CurrentPassword, user.Password); err != nil {
		return NewValidationError("Current password is incorrect")
	}

	hashed, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notifications.SendPasswordChanged(user)
	return nil
}

// VerifyEmail consumes a verification token. Expired or unknown tokens are
// rejected identically.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("Invalid or expired verification token")
		}
		return err
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.VerificationExpires = nil
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword issues a reset token when the email is known. Unknown
// emails succeed silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.passwords.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	expires := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = s.passwords.HashToken(token)
	user.ResetPasswordExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notifications.SendPasswordReset(user, token)
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.userRepo.GetByResetToken(ctx, s.passwords.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("Invalid or expired reset token")
		}
		return err
	}

	hashed, err := s.passwords.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.notifications.SendPasswordChanged(user)
	return nil
}
