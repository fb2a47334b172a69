package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	for _, user := range r.users {
		if user.VerificationToken == token && token != "" &&
			user.VerificationExpires != nil && user.VerificationExpires.After(time.Now()) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	for _, user := range r.users {
		if user.ResetPasswordToken == tokenHash && tokenHash != "" &&
			user.ResetPasswordExpires != nil && user.ResetPasswordExpires.After(time.Now()) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type authTestEnv struct {
	svc      *AuthService
	users    *fakeUserRepo
	cartSvc  *CartService
	cartRepo *fakeCartRepo
}

func newAuthTestEnv(t *testing.T, products ...*models.Product) *authTestEnv {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	cartRepo := newFakeCartRepo(productRepo)
	cartSvc := NewCartService(cartRepo, productRepo, testLogger())
	users := newFakeUserRepo()
	svc := NewAuthService(users, cartSvc, NewPasswordService(), NewJWTService("test-secret", 30),
		newTestNotifications(t), nil, testLogger())
	return &authTestEnv{svc: svc, users: users, cartSvc: cartSvc, cartRepo: cartRepo}
}

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
}

func TestAuthService_Register(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.IsVerified)
	assert.NotEmpty(t, resp.Message)

	stored, err := env.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.VerificationToken)
	require.NotNil(t, stored.VerificationExpires)
	assert.NotEqual(t, "hunter22", stored.Password, "password must be stored hashed")

	_, err = env.svc.Register(ctx, registerRequest())
	_, ok := IsConflictError(err)
	assert.True(t, ok, "duplicate registration should conflict, got %v", err)
}

func TestAuthService_Login(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, _, err := env.svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_EmailsAreNormalized(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, &models.RegisterRequest{
		Name: "Ada", Email: "  Ada@Example.COM ", Password: "hunter22",
	})
	require.NoError(t, err)

	stored, err := env.users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)

	// Lookups match regardless of the caller's casing.
	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "ADA@EXAMPLE.COM", Password: "hunter22"})
	assert.NoError(t, err)

	// Case variants are the same account.
	_, err = env.svc.Register(ctx, &models.RegisterRequest{
		Name: "Ada", Email: "aDa@example.com", Password: "hunter22",
	})
	_, ok := IsConflictError(err)
	assert.True(t, ok, "case-variant registration should conflict, got %v", err)
}

func TestAuthService_LoginMergesGuestCart(t *testing.T) {
	product := &models.Product{Name: "Lamp", Price: 25, CountInStock: 5}
	env := newAuthTestEnv(t, product)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, guestID, err := env.cartSvc.AddItem(ctx, nil, nil, addRequest(product.ID, 2))
	require.NoError(t, err)
	require.NotNil(t, guestID)

	_, guestCartSpent, err := env.svc.Login(ctx, &models.LoginRequest{
		Email:       "ada@example.com",
		Password:    "hunter22",
		GuestCartID: guestID.String(),
	})
	require.NoError(t, err)
	assert.True(t, guestCartSpent, "a successful merge spends the guest cart handle")

	cart, _, err := env.cartSvc.GetCart(ctx, &resp.ID, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	_, err = env.cartRepo.GetGuestByID(ctx, *guestID)
	assert.Error(t, err, "guest cart should be consumed by the merge")
}

// failingMergeCartRepo makes every merge fail while the rest of the cart
// repository keeps working.
type failingMergeCartRepo struct {
	*fakeCartRepo
}

func (r *failingMergeCartRepo) Merge(ctx context.Context, guestCartID, userCartID uuid.UUID) error {
	return errors.New("deadlock detected")
}

func TestAuthService_LoginKeepsGuestCartWhenMergeFails(t *testing.T) {
	product := &models.Product{Name: "Lamp", Price: 25, CountInStock: 5}
	productRepo := newFakeProductRepo(product)
	cartRepo := &failingMergeCartRepo{fakeCartRepo: newFakeCartRepo(productRepo)}
	cartSvc := NewCartService(cartRepo, productRepo, testLogger())
	users := newFakeUserRepo()
	svc := NewAuthService(users, cartSvc, NewPasswordService(), NewJWTService("test-secret", 30),
		newTestNotifications(t), nil, testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, guestID, err := cartSvc.AddItem(ctx, nil, nil, addRequest(product.ID, 2))
	require.NoError(t, err)
	require.NotNil(t, guestID)

	resp, guestCartSpent, err := svc.Login(ctx, &models.LoginRequest{
		Email:       "ada@example.com",
		Password:    "hunter22",
		GuestCartID: guestID.String(),
	})
	require.NoError(t, err, "a merge failure must not fail the login")
	assert.NotEmpty(t, resp.Token)
	assert.False(t, guestCartSpent, "the client must keep its handle for a later retry")

	// The anonymous cart survives untouched.
	cart, err := cartRepo.GetGuestByID(ctx, *guestID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user := env.users.users[resp.ID]
	token := user.VerificationToken

	require.NoError(t, env.svc.VerifyEmail(ctx, token))
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.VerificationToken)

	// A consumed token behaves like an unknown one.
	err = env.svc.VerifyEmail(ctx, token)
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected a validation error, got %v", err)
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Plant a known reset token the way ForgotPassword would.
	passwords := NewPasswordService()
	expires := time.Now().Add(time.Hour)
	user := env.users.users[resp.ID]
	user.ResetPasswordToken = passwords.HashToken("plain-token")
	user.ResetPasswordExpires = &expires

	require.NoError(t, env.svc.ResetPassword(ctx, "plain-token", "newpass99"))

	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "newpass99"})
	assert.NoError(t, err)
	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// The token is single use.
	err = env.svc.ResetPassword(ctx, "plain-token", "another1")
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected a validation error, got %v", err)
}

func TestAuthService_ForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	env := newAuthTestEnv(t)

	assert.NoError(t, env.svc.ForgotPassword(context.Background(), "nobody@example.com"))
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	err = env.svc.ChangePassword(ctx, resp.ID, &models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass99",
	})
	_, ok := IsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)

	require.NoError(t, env.svc.ChangePassword(ctx, resp.ID, &models.ChangePasswordRequest{
		CurrentPassword: "hunter22",
		NewPassword:     "newpass99",
	}))

	_, _, err = env.svc.Login(ctx, &models.LoginRequest{Email: "ada@example.com", Password: "newpass99"})
	assert.NoError(t, err)
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	user, err := env.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, user.ID)

	_, err = env.svc.Authenticate(ctx, "bogus")
	assert.Error(t, err)
}
