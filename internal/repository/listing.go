package repository

import (
	"context"
	"errors"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
)

// ListingRepository is the content-store collaborator. The engine only
// reads the owner and writes the status; everything else about listings
// belongs to the host application.
type ListingRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetOwnerID(ctx context.Context, id uint) (uint, error)
	SetStatus(ctx context.Context, id uint, status models.ListingStatus) error
	Create(ctx context.Context, listing *models.Listing) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) GetOwnerID(ctx context.Context, id uint) (uint, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Select("id", "owner_id").First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Listing", id)
		}
		return 0, models.NewInternalError(err)
	}
	return listing.OwnerID, nil
}

func (r *listingRepository) SetStatus(ctx context.Context, id uint, status models.ListingStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	return nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
