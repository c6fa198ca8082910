package models

import "time"

// AnalyticsEventType enumerates engagement events recorded against offers.
type AnalyticsEventType string

const (
	EventImpression AnalyticsEventType = "impression"
	EventClick      AnalyticsEventType = "click"
	EventView       AnalyticsEventType = "view"
	EventClaim      AnalyticsEventType = "claim"
	EventShare      AnalyticsEventType = "share"
)

// ParseAnalyticsEventType validates a raw event type string.
func ParseAnalyticsEventType(raw string) (AnalyticsEventType, bool) {
	switch AnalyticsEventType(raw) {
	case EventImpression, EventClick, EventView, EventClaim, EventShare:
		return AnalyticsEventType(raw), true
	}
	return "", false
}

// AnalyticsEvent is a single engagement record. Impressions for the same
// (entity, session) pair inside the debounce window are dropped before
// reaching this table.
type AnalyticsEvent struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	EntityID  uint               `gorm:"not null;index:idx_event_entity" json:"entity_id"`
	EventType AnalyticsEventType `gorm:"type:varchar(20);not null;index:idx_event_entity" json:"event_type"`
	SessionID string             `gorm:"size:64;not null;index" json:"session_id"`
	Source    string             `gorm:"size:50" json:"source,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// OfferStats is the pre-aggregated per-offer summary read by dashboards.
// It is refreshed on a sampled fraction of writes; the refresh recomputes
// counts from analytics_events, so it is idempotent and safe to skip.
type OfferStats struct {
	EntityID    uint      `gorm:"primaryKey;autoIncrement:false" json:"entity_id"`
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	Views       int64     `gorm:"not null;default:0" json:"views"`
	Claims      int64     `gorm:"not null;default:0" json:"claims"`
	Shares      int64     `gorm:"not null;default:0" json:"shares"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// TableName specifies the table name for GORM.
func (OfferStats) TableName() string {
	return "offer_stats"
}
