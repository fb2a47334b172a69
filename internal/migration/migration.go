package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/trendora/storefront-api/internal/models"
)

// Run brings the schema up to date. gen_random_uuid() needs pgcrypto on
// postgres versions before 13.
func Run(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ContactMessage{},
		&models.NewsletterSubscriber{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
