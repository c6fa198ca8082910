package models

import "time"

// UserRole defines the capability tier of a principal.
type UserRole string

const (
	// RoleUser is a regular member with no review capability.
	RoleUser UserRole = "user"
	// RoleModerator may review verification requests and resolve reports.
	RoleModerator UserRole = "moderator"
	// RoleAdmin has every moderator capability plus account administration.
	RoleAdmin UserRole = "admin"
)

// User is a platform principal. The engine only ever mutates its trust
// flags (verified_*, banned, ban_reason, ban_until); everything else is
// owned by the host application.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	VerifiedIdentity bool `gorm:"not null;default:false" json:"verified_identity"`
	VerifiedVehicle  bool `gorm:"not null;default:false" json:"verified_vehicle"`
	VerifiedBusiness bool `gorm:"not null;default:false" json:"verified_business"`

	Banned    bool       `gorm:"not null;default:false;index" json:"banned"`
	BanReason string     `gorm:"type:text" json:"ban_reason,omitempty"`
	BanUntil  *time.Time `json:"ban_until,omitempty"`
	WarnCount int        `gorm:"not null;default:0" json:"warn_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// CanModerate reports whether the user holds the moderator capability.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsBanned reports whether a ban is currently in effect. Temporary bans
// expire lazily: a ban_until in the past means not banned, even if the
// flag has not been cleared yet.
func (u *User) IsBanned(now time.Time) bool {
	if !u.Banned {
		return false
	}
	if u.BanUntil != nil && !now.Before(*u.BanUntil) {
		return false
	}
	return true
}

// TrustFlagPatch is a partial update of a user's trust flags. Nil fields
// are left untouched.
type TrustFlagPatch struct {
	VerifiedKind *VerificationKind
	Banned       *bool
	BanReason    *string
	BanUntil     *time.Time
}
