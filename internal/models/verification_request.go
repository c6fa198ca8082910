package models

import (
	"time"
)

// VerificationKind enumerates the claims a user can ask the platform to verify.
type VerificationKind string

const (
	// KindPersonalIdentity is a government-ID identity check.
	KindPersonalIdentity VerificationKind = "personal-identity"
	// KindVehicleOwnership proves the user owns the vehicle on their profile.
	KindVehicleOwnership VerificationKind = "vehicle-ownership"
	// KindBusinessLicense proves a garage or dealer holds a trade license.
	KindBusinessLicense VerificationKind = "business-license"
)

// ParseVerificationKind validates a raw kind string.
func ParseVerificationKind(raw string) (VerificationKind, bool) {
	switch VerificationKind(raw) {
	case KindPersonalIdentity, KindVehicleOwnership, KindBusinessLicense:
		return VerificationKind(raw), true
	}
	return "", false
}

// VerificationStatus defines lifecycle states for verification requests.
type VerificationStatus string

const (
	// VerificationStatusPending indicates the request is awaiting review.
	VerificationStatusPending VerificationStatus = "pending"
	// VerificationStatusApproved indicates the claim was accepted.
	VerificationStatusApproved VerificationStatus = "approved"
	// VerificationStatusRejected indicates the claim was denied.
	VerificationStatusRejected VerificationStatus = "rejected"
)

// VerificationRequest is a user-submitted claim of identity or business
// legitimacy. Rows are append-only: a request is reviewed exactly once and
// never deleted; to retry after a rejection the user files a new request.
type VerificationRequest struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	SubjectID uint               `gorm:"not null;index" json:"subject_id"`
	Subject   *User              `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Kind      VerificationKind   `gorm:"type:varchar(30);not null;index" json:"kind"`
	Status    VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Documents holds opaque storage references, newline-separated. Document
	// storage mechanics live outside the engine.
	Documents string `gorm:"type:text;not null" json:"documents"`

	SubmittedAt     time.Time  `gorm:"not null" json:"submitted_at"`
	ReviewedByID    *uint      `json:"reviewed_by_id,omitempty"`
	ReviewedBy      *User      `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	AdminNotes      string     `gorm:"type:text" json:"admin_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (VerificationRequest) TableName() string {
	return "verification_requests"
}
