package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendora/storefront-api/internal/models"
)

func newReviewTestEnv(products ...*models.Product) (*ReviewService, *fakeReviewRepo, *fakeProductRepo) {
	productRepo := newFakeProductRepo(products...)
	reviewRepo := newFakeReviewRepo(productRepo)
	return NewReviewService(reviewRepo, productRepo, testLogger()), reviewRepo, productRepo
}

func TestReviewService_CreateRejectsDuplicate(t *testing.T) {
	product := &models.Product{Name: "Backpack", Price: 35, CountInStock: 7}
	svc, _, _ := newReviewTestEnv(product)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, product.ID, &models.CreateReviewRequest{Rating: 4, Comment: "Solid"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, userID, product.ID, &models.CreateReviewRequest{Rating: 5})
	_, ok := IsValidationError(err)
	assert.True(t, ok, "expected a validation error, got %v", err)
}

func TestReviewService_CreateRecomputesRating(t *testing.T) {
	product := &models.Product{Name: "Backpack", Price: 35, CountInStock: 7}
	svc, _, _ := newReviewTestEnv(product)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), product.ID, &models.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), product.ID, &models.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	assert.Equal(t, 4.5, product.Rating)
	assert.Equal(t, 2, product.NumReviews)
}

func TestReviewService_CreateUnknownProduct(t *testing.T) {
	svc, _, _ := newReviewTestEnv()

	_, err := svc.Create(context.Background(), uuid.New(), uuid.New(), &models.CreateReviewRequest{Rating: 3})
	_, ok := IsNotFoundError(err)
	assert.True(t, ok, "expected a not-found error, got %v", err)
}

func TestReviewService_UpdateValidatesRating(t *testing.T) {
	product := &models.Product{Name: "Backpack", Price: 35, CountInStock: 7}
	svc, _, _ := newReviewTestEnv(product)
	author := &models.User{ID: uuid.New()}
	ctx := context.Background()

	review, err := svc.Create(ctx, author.ID, product.ID, &models.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	bad := 6
	_, err = svc.Update(ctx, author, review.ID, &models.UpdateReviewRequest{Rating: &bad})
	_, ok := IsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)

	good := 5
	updated, err := svc.Update(ctx, author, review.ID, &models.UpdateReviewRequest{Rating: &good})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, 5.0, product.Rating)
}

func TestReviewService_DeleteRequiresOwnership(t *testing.T) {
	product := &models.Product{Name: "Backpack", Price: 35, CountInStock: 7}
	svc, _, _ := newReviewTestEnv(product)
	author := &models.User{ID: uuid.New()}
	ctx := context.Background()

	review, err := svc.Create(ctx, author.ID, product.ID, &models.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	stranger := &models.User{ID: uuid.New()}
	err = svc.Delete(ctx, stranger, review.ID)
	_, ok := IsForbiddenError(err)
	require.True(t, ok, "expected a forbidden error, got %v", err)

	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	require.NoError(t, svc.Delete(ctx, admin, review.ID))

	// Last review gone, the aggregate resets.
	assert.Equal(t, 0.0, product.Rating)
	assert.Equal(t, 0, product.NumReviews)
}

func TestReviewService_ListByProductUnknown(t *testing.T) {
	svc, _, _ := newReviewTestEnv()

	_, err := svc.ListByProduct(context.Background(), uuid.New())
	_, ok := IsNotFoundError(err)
	assert.True(t, ok, "expected a not-found error, got %v", err)
}

func TestReviewService_MutationsTriggerRecompute(t *testing.T) {
	product := &models.Product{Name: "Backpack", Price: 35, CountInStock: 7}
	svc, reviewRepo, _ := newReviewTestEnv(product)
	author := &models.User{ID: uuid.New()}
	ctx := context.Background()

	review, err := svc.Create(ctx, author.ID, product.ID, &models.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	comment := "Changed my mind"
	_, err = svc.Update(ctx, author, review.ID, &models.UpdateReviewRequest{Comment: &comment})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, author, review.ID))

	assert.Equal(t, 3, reviewRepo.recalcs)
}
