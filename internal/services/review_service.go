package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// ReviewService implements product reviews. After every mutation the
// product's aggregate rating is recomputed from the review table.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	logger      *logrus.Entry
}

// NewReviewService creates a new review service
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		logger:      logger.WithField("component", "services.review"),
	}
}

// ListByProduct returns all reviews for a product, newest first.
func (s *ReviewService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Product")
		}
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// List returns the paginated admin review listing.
func (s *ReviewService) List(ctx context.Context, page, pageSize int) (*models.ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &models.ReviewListResponse{
		Reviews: reviews,
		Page:    page,
		Pages:   models.PageCount(total, pageSize),
		Total:   total,
	}, nil
}

// Create adds a review. A user may review each product once.
func (s *ReviewService) Create(ctx context.Context, userID, productID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Product")
		}
		return nil, err
	}

	if _, err := s.reviewRepo.GetByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, NewValidationError("You have already reviewed this product")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.RecalculateProductRating(ctx, productID); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("Failed to recompute product rating")
	}
	return review, nil
}

// Update edits a review. Only the author or an admin may edit.
func (s *ReviewService) Update(ctx context.Context, actor *models.User, reviewID uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Review")
		}
		return nil, err
	}
	if review.UserID != actor.ID && !actor.IsAdmin {
		return nil, NewForbiddenError("Not authorized to update this review")
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, NewValidationError("rating must be between 1 and 5")
		}
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.RecalculateProductRating(ctx, review.ProductID); err != nil {
		s.logger.WithError(err).WithField("product_id", review.ProductID).Error("Failed to recompute product rating")
	}
	return review, nil
}

// Delete removes a review. Only the author or an admin may delete. When the
// last review goes, the product's rating resets to zero.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, reviewID uuid.UUID) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Review")
		}
		return err
	}
	if review.UserID != actor.ID && !actor.IsAdmin {
		return NewForbiddenError("Not authorized to delete this review")
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.RecalculateProductRating(ctx, review.ProductID); err != nil {
		s.logger.WithError(err).WithField("product_id", review.ProductID).Error("Failed to recompute product rating")
	}
	return nil
}
