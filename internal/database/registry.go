package database

import (
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels lists every model in migration order. Parents come
// before children so foreign keys resolve.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Listing{},
		&models.VerificationRequest{},
		&models.Report{},
		&models.BoostEntitlement{},
		&models.PromoOffer{},
		&models.OfferRedemption{},
		&models.AnalyticsEvent{},
		&models.OfferStats{},
	}
}

// Migrate runs AutoMigrate over the model registry.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
