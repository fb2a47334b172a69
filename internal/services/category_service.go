package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// hotListCache is the slice of the catalog cache the category service needs.
// Cached hot lists embed the category, so any category change drops them.
type hotListCache interface {
	Invalidate(ctx context.Context)
}

// CategoryService implements category browsing and admin management.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        hotListCache
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository, catalogCache hotListCache) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        catalogCache,
	}
}

// List returns all categories, alphabetically.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// ListFeatured returns the featured categories for the homepage.
func (s *CategoryService) ListFeatured(ctx context.Context, limit int) ([]models.Category, error) {
	if limit < 1 {
		limit = 4
	}
	categories, err := s.categoryRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Category")
		}
		return nil, err
	}
	return category, nil
}

// Create adds a category; names are unique.
func (s *CategoryService) Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if _, err := s.categoryRepo.GetByName(ctx, req.Name); err == nil {
		return nil, NewConflictError("category", "Category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		IsFeatured:  req.IsFeatured,
	}
	if req.Image != "" {
		category.Image = req.Image
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update applies a partial category update. Renames must stay unique.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Category")
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if _, err := s.categoryRepo.GetByName(ctx, *req.Name); err == nil {
			return nil, NewConflictError("category", "Category name already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.IsFeatured != nil {
		category.IsFeatured = *req.IsFeatured
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return category, nil
}

// Delete removes a category. Products keep their category_id reference
// until reassigned by an admin.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Category")
		}
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
