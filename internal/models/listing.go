package models

import "time"

// ListingStatus defines visibility states for a listing.
type ListingStatus string

const (
	// ListingStatusActive is publicly visible content.
	ListingStatusActive ListingStatus = "active"
	// ListingStatusRejected is hidden after a moderation reject.
	ListingStatusRejected ListingStatus = "rejected"
	// ListingStatusRemoved is permanently unrenderable; the row is kept so
	// resolved reports retain their audit trail.
	ListingStatusRemoved ListingStatus = "removed"
)

// Listing is a car listing. The engine treats it as an opaque content
// record: it only reads the owner and writes the status.
type Listing struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	OwnerID     uint          `gorm:"not null;index" json:"owner_id"`
	Owner       *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title       string        `gorm:"size:140;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      ListingStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Listing) TableName() string {
	return "listings"
}
