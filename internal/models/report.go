package models

import "time"

// ReportStatus defines lifecycle states for content reports.
type ReportStatus string

const (
	// ReportStatusPending indicates the report awaits a reviewer.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusReviewed indicates a reviewer resolved the report.
	ReportStatusReviewed ReportStatus = "reviewed"
)

// ModerationAction is the closed set of actions a reviewer can take on a
// report. Dispatch over it is exhaustive; an unknown action is rejected
// before any mutation happens.
type ModerationAction string

const (
	// ActionApprove clears the report without touching the content.
	ActionApprove ModerationAction = "approve"
	// ActionReject hides the content from rendering.
	ActionReject ModerationAction = "reject"
	// ActionDelete permanently removes the content; the report stays for audit.
	ActionDelete ModerationAction = "delete"
	// ActionWarn notifies the content owner without structural changes.
	ActionWarn ModerationAction = "warn"
	// ActionBan sets the content owner's banned trust flag.
	ActionBan ModerationAction = "ban"
)

// ParseModerationAction validates a raw action string.
func ParseModerationAction(raw string) (ModerationAction, bool) {
	switch ModerationAction(raw) {
	case ActionApprove, ActionReject, ActionDelete, ActionWarn, ActionBan:
		return ModerationAction(raw), true
	}
	return "", false
}

// Report is a flag filed against a listing. The same listing may accumulate
// any number of independent reports; each is resolved on its own.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	ListingID  uint         `gorm:"not null;index" json:"listing_id"`
	Listing    *Listing     `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	ReporterID uint         `gorm:"not null;index" json:"reporter_id"`
	Reporter   *User        `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Reason     string       `gorm:"type:varchar(50);not null" json:"reason"`
	Details    string       `gorm:"type:text" json:"details,omitempty"`
	Status     ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// ActionTaken is null while pending and immutable once reviewed.
	ActionTaken   *ModerationAction `gorm:"type:varchar(20)" json:"action_taken,omitempty"`
	ReviewerID    *uint             `json:"reviewer_id,omitempty"`
	Reviewer      *User             `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ReviewerNotes string            `gorm:"type:text" json:"reviewer_notes,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
