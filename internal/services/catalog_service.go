package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/cache"
	"github.com/trendora/storefront-api/internal/models"
	"github.com/trendora/storefront-api/internal/repository"
)

// hotListLimit caps the homepage lists (featured, new arrivals, best sellers).
const hotListLimit = 8

// CatalogService implements product browsing and admin catalog management.
// The homepage hot lists are served through the Redis cache, which is
// invalidated on every catalog mutation.
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        *cache.CatalogCache
	logger       *logrus.Entry
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, catalogCache *cache.CatalogCache, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        catalogCache,
		logger:       logger.WithField("component", "services.catalog"),
	}
}

// List returns a filtered, sorted, paginated product page.
func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductListResponse, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductListResponse{
		Products: products,
		Page:     page,
		Pages:    models.PageCount(total, pageSize),
		Total:    total,
	}, nil
}

// Get returns a single product with its category.
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Product")
		}
		return nil, err
	}
	return product, nil
}

// Featured returns the featured products list, cached.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cache.GetFeatured(ctx); ok {
		return products, nil
	}
	products, err := s.productRepo.ListFeatured(ctx, hotListLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetFeatured(ctx, products)
	return products, nil
}

// NewArrivals returns the most recently added products, cached.
func (s *CatalogService) NewArrivals(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cache.GetNewArrivals(ctx); ok {
		return products, nil
	}
	products, err := s.productRepo.ListNewest(ctx, hotListLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetNewArrivals(ctx, products)
	return products, nil
}

// BestSellers returns the top products by sales count, cached.
func (s *CatalogService) BestSellers(ctx context.Context) ([]models.Product, error) {
	if products, ok := s.cache.GetBestSellers(ctx); ok {
		return products, nil
	}
	products, err := s.productRepo.ListBestSellers(ctx, hotListLimit)
	if err != nil {
		return nil, err
	}
	s.cache.SetBestSellers(ctx, products)
	return products, nil
}

// ByCategory lists products in one category; the category must exist.
func (s *CatalogService) ByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) (*models.ProductListResponse, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Category")
		}
		return nil, err
	}

	products, total, err := s.productRepo.ListByCategory(ctx, categoryID, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductListResponse{
		Products: products,
		Page:     page,
		Pages:    models.PageCount(total, pageSize),
		Total:    total,
	}, nil
}

// Search matches the keyword against product names and descriptions.
func (s *CatalogService) Search(ctx context.Context, keyword string, page, pageSize int) (*models.ProductListResponse, error) {
	if keyword == "" {
		return nil, NewValidationError("search keyword is required")
	}
	products, total, err := s.productRepo.Search(ctx, keyword, page, pageSize)
	if err != nil {
		return nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	if products == nil {
		products = []models.Product{}
	}
	return &models.ProductListResponse{
		Products: products,
		Page:     page,
		Pages:    models.PageCount(total, pageSize),
		Total:    total,
	}, nil
}

// Create adds a product to the catalog. The category must exist.
func (s *CatalogService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, NewValidationError("invalid category id")
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Category does not exist")
		}
		return nil, err
	}
	if req.IsOnSale && req.SalePrice <= 0 {
		return nil, NewValidationError("sale price must be positive when product is on sale")
	}

	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		Brand:            req.Brand,
		CategoryID:       categoryID,
		CountInStock:     req.CountInStock,
		IsFeatured:       req.IsFeatured,
		IsOnSale:         req.IsOnSale,
		SalePrice:        req.SalePrice,
		AdditionalImages: req.AdditionalImages,
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.Get(ctx, product.ID)
}

// Update applies a partial product update. Provided false/zero values are
// real overrides, not omissions.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Product")
		}
		return nil, err
	}

	if req.Category != nil {
		categoryID, err := uuid.Parse(*req.Category)
		if err != nil {
			return nil, NewValidationError("invalid category id")
		}
		if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("Category does not exist")
			}
			return nil, err
		}
		product.CategoryID = categoryID
		product.Category = nil
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.AdditionalImages != nil {
		product.AdditionalImages = *req.AdditionalImages
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.CountInStock != nil {
		if *req.CountInStock < 0 {
			return nil, NewValidationError("stock cannot be negative")
		}
		product.CountInStock = *req.CountInStock
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.IsOnSale != nil {
		product.IsOnSale = *req.IsOnSale
	}
	if req.SalePrice != nil {
		product.SalePrice = *req.SalePrice
	}
	if req.IsNew != nil {
		product.IsNew = *req.IsNew
	}
	if product.IsOnSale && product.SalePrice <= 0 {
		return nil, NewValidationError("sale price must be positive when product is on sale")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return s.Get(ctx, product.ID)
}

// Delete removes a product from the catalog.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Product")
		}
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// SetImage updates the product's primary image path after an upload.
func (s *CatalogService) SetImage(ctx context.Context, id uuid.UUID, imagePath string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Product")
		}
		return nil, err
	}
	product.Image = imagePath
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return product, nil
}
