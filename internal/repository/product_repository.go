package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// Sortable product columns for list queries. Anything else falls back to
// the default newest-first ordering.
var productSortFields = map[string]string{
	"price":      "price",
	"name":       "name",
	"rating":     "rating",
	"createdAt":  "created_at",
	"salesCount": "sales_count",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	ListNewest(ctx context.Context, limit int) ([]models.Product, error)
	ListBestSellers(ctx context.Context, limit int) ([]models.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]models.Product, int64, error)
	Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Product, int64, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)

	var products []models.Product
	err := query.
		Preload("Category").
		Order(orderClause(filter.Sort)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error
	return products, total, err
}

// orderClause maps the API sort parameter (field or -field) onto an
// allowlisted column, defaulting to newest first.
func orderClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	field := sort
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		field = sort[1:]
		dir = "DESC"
	}
	column, ok := productSortFields[field]
	if !ok {
		return "created_at DESC"
	}
	return column + " " + dir
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_featured = ?", true).
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListNewest(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListBestSellers(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("sales_count DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, page, pageSize int) ([]models.Product, int64, error) {
	page, pageSize = models.NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", categoryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.
		Preload("Category").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Product, int64, error) {
	page, pageSize = models.NormalizePage(page, pageSize)
	pattern := "%" + keyword + "%"
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.
		Preload("Category").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&products).Error
	return products, total, err
}

// DecrementStock atomically takes quantity units off the shelf and adds them
// to the sales counter. The stock guard lives in the WHERE clause so two
// concurrent orders cannot both succeed on the last units; returns false
// when stock was insufficient.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND count_in_stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"count_in_stock": gorm.Expr("count_in_stock - ?", quantity),
			"sales_count":    gorm.Expr("sales_count + ?", quantity),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RestoreStock returns cancelled quantities to stock. The sales counter is
// floored at zero.
func (r *productRepository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"count_in_stock": gorm.Expr("count_in_stock + ?", quantity),
			"sales_count":    gorm.Expr("GREATEST(sales_count - ?, 0)", quantity),
		}).Error
}
