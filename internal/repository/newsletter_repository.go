package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// NewsletterRepository defines the interface for subscriber data access
type NewsletterRepository interface {
	Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error
	GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	DeleteByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]models.NewsletterSubscriber, int64, error)
	ListAll(ctx context.Context) ([]models.NewsletterSubscriber, error)
}

type newsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository creates a new newsletter repository
func NewNewsletterRepository(db *gorm.DB) NewsletterRepository {
	return &newsletterRepository{db: db}
}

func (r *newsletterRepository) Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}

func (r *newsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&subscriber, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// DeleteByEmail removes a subscription; the bool reports whether one existed.
func (r *newsletterRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.NewsletterSubscriber{}, "email = ?", email)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *newsletterRepository) List(ctx context.Context, page, pageSize int) ([]models.NewsletterSubscriber, int64, error) {
	page, pageSize = models.NormalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.NewsletterSubscriber{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subscribers []models.NewsletterSubscriber
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&subscribers).Error
	return subscribers, total, err
}

func (r *newsletterRepository) ListAll(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var subscribers []models.NewsletterSubscriber
	err := r.db.WithContext(ctx).Find(&subscribers).Error
	return subscribers, err
}
