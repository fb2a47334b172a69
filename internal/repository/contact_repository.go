package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// ContactRepository defines the interface for contact message data access
type ContactRepository interface {
	Create(ctx context.Context, message *models.ContactMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
	Update(ctx context.Context, message *models.ContactMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, page, pageSize int) ([]models.ContactMessage, int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var message models.ContactMessage
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *contactRepository) Update(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ContactMessage{}, "id = ?", id).Error
}

func (r *contactRepository) List(ctx context.Context, status string, page, pageSize int) ([]models.ContactMessage, int64, error) {
	page, pageSize = models.NormalizePage(page, pageSize)
	query := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.ContactMessage
	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&messages).Error
	return messages, total, err
}
