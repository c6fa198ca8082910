package models

import "time"

// BoostEntityType enumerates the entities a boost can be attached to.
type BoostEntityType string

const (
	BoostEntityListing BoostEntityType = "listing"
	BoostEntityOffer   BoostEntityType = "offer"
	BoostEntityProfile BoostEntityType = "profile"
)

// ParseBoostEntityType validates a raw entity type string.
func ParseBoostEntityType(raw string) (BoostEntityType, bool) {
	switch BoostEntityType(raw) {
	case BoostEntityListing, BoostEntityOffer, BoostEntityProfile:
		return BoostEntityType(raw), true
	}
	return "", false
}

// BoostEntitlement grants a time-boxed visibility boost to an entity.
// Grants stack: "is boosted" means any active non-expired row exists, so
// concurrent grants never conflict. The expiry scanner flips is_active on
// stale rows; queries also honor valid_until directly so expiry takes
// effect without waiting for a sweep.
type BoostEntitlement struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OwnerID    uint            `gorm:"not null;index" json:"owner_id"`
	EntityID   uint            `gorm:"not null;index:idx_boost_entity" json:"entity_id"`
	EntityType BoostEntityType `gorm:"type:varchar(20);not null;index:idx_boost_entity" json:"entity_type"`
	GrantedAt  time.Time       `gorm:"not null" json:"granted_at"`
	ValidUntil time.Time       `gorm:"not null;index" json:"valid_until"`
	IsActive   bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (BoostEntitlement) TableName() string {
	return "boost_entitlements"
}

// InEffect reports whether the entitlement is live at the given instant.
func (b *BoostEntitlement) InEffect(now time.Time) bool {
	return b.IsActive && now.Before(b.ValidUntil)
}

// PromoOffer is a partner promotion users can claim.
type PromoOffer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PartnerID   uint      `gorm:"not null;index" json:"partner_id"`
	Title       string    `gorm:"size:140;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null;index" json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (PromoOffer) TableName() string {
	return "promo_offers"
}

// ActiveAt reports whether the offer window covers the given instant.
func (o *PromoOffer) ActiveAt(now time.Time) bool {
	return !now.Before(o.StartsAt) && now.Before(o.EndsAt)
}

// OfferRedemption is one user's claim of a promo offer. The composite
// unique index on (offer_id, user_id) is what closes the race between two
// concurrent claims from the same user; there is no check-then-insert.
type OfferRedemption struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	OfferID        uint        `gorm:"not null;uniqueIndex:ux_offer_user,priority:1" json:"offer_id"`
	Offer          *PromoOffer `gorm:"foreignKey:OfferID" json:"offer,omitempty"`
	UserID         uint        `gorm:"not null;uniqueIndex:ux_offer_user,priority:2" json:"user_id"`
	RedemptionCode string      `gorm:"size:64;uniqueIndex;not null" json:"redemption_code"`

	// RedeemedAt is null while the code is claimed but unused.
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (OfferRedemption) TableName() string {
	return "offer_redemptions"
}
