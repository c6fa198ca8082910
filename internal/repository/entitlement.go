package repository

import (
	"context"
	"errors"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateRedemption signals that the (offer, user) pair already holds
// a redemption. It comes out of the unique index, not an application-level
// existence check, so concurrent claims cannot both succeed.
var ErrDuplicateRedemption = errors.New("redemption already exists for offer and user")

// EntitlementRepository defines persistence operations for boosts, offers
// and redemptions.
type EntitlementRepository interface {
	GrantBoost(ctx context.Context, boost *models.BoostEntitlement) error
	// HasActiveBoost is a side-effect-free read: it checks both is_active
	// and valid_until so expiry holds even before the scanner runs.
	HasActiveBoost(ctx context.Context, entityID uint, now time.Time) (bool, error)
	// DeactivateExpired flips is_active on stale rows and returns how many
	// rows changed. The predicate only matches rows still active, so
	// overlapping sweeps are idempotent.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	GetOffer(ctx context.Context, offerID uint) (*models.PromoOffer, error)
	CreateOffer(ctx context.Context, offer *models.PromoOffer) error
	// CreateRedemption inserts a redemption row, returning
	// ErrDuplicateRedemption when the unique index rejects it.
	CreateRedemption(ctx context.Context, redemption *models.OfferRedemption) error
	GetRedemptionByCode(ctx context.Context, code string) (*models.OfferRedemption, error)
	// MarkRedeemed performs the compare-and-swap on redeemed_at. It reports
	// false when the code was already redeemed by a concurrent call.
	MarkRedeemed(ctx context.Context, code string, redeemedAt time.Time) (bool, error)
}

type entitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository returns a new EntitlementRepository implementation.
func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) GrantBoost(ctx context.Context, boost *models.BoostEntitlement) error {
	if err := r.db.WithContext(ctx).Create(boost).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *entitlementRepository) HasActiveBoost(ctx context.Context, entityID uint, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BoostEntitlement{}).
		Where("entity_id = ? AND is_active = ? AND valid_until > ?", entityID, true, now).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *entitlementRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.BoostEntitlement{}).
		Where("is_active = ? AND valid_until <= ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *entitlementRepository) GetOffer(ctx context.Context, offerID uint) (*models.PromoOffer, error) {
	var offer models.PromoOffer
	if err := r.db.WithContext(ctx).First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Offer", offerID)
		}
		return nil, models.NewInternalError(err)
	}
	return &offer, nil
}

func (r *entitlementRepository) CreateOffer(ctx context.Context, offer *models.PromoOffer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *entitlementRepository) CreateRedemption(ctx context.Context, redemption *models.OfferRedemption) error {
	if err := r.db.WithContext(ctx).Create(redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRedemption
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *entitlementRepository) GetRedemptionByCode(ctx context.Context, code string) (*models.OfferRedemption, error) {
	var redemption models.OfferRedemption
	if err := r.db.WithContext(ctx).Where("redemption_code = ?", code).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Redemption", code)
		}
		return nil, models.NewInternalError(err)
	}
	return &redemption, nil
}

func (r *entitlementRepository) MarkRedeemed(ctx context.Context, code string, redeemedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OfferRedemption{}).
		Where("redemption_code = ? AND redeemed_at IS NULL", code).
		Update("redeemed_at", redeemedAt)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
