package repository

import (
	"context"
	"errors"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository defines persistence operations for engagement events
// and the pre-aggregated per-offer summary.
type AnalyticsRepository interface {
	CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error
	// RefreshStats recomputes the summary row for an entity from the events
	// table. Recomputing from source makes it idempotent: running it twice,
	// or skipping it, never corrupts counts.
	RefreshStats(ctx context.Context, entityID uint, now time.Time) error
	GetStats(ctx context.Context, entityID uint) (*models.OfferStats, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository returns a new AnalyticsRepository implementation.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *analyticsRepository) RefreshStats(ctx context.Context, entityID uint, now time.Time) error {
	type countRow struct {
		EventType models.AnalyticsEventType
		Count     int64
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).
		Select("event_type, COUNT(*) as count").
		Where("entity_id = ?", entityID).
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}

	stats := models.OfferStats{EntityID: entityID, RefreshedAt: now}
	for _, row := range rows {
		switch row.EventType {
		case models.EventImpression:
			stats.Impressions = row.Count
		case models.EventClick:
			stats.Clicks = row.Count
		case models.EventView:
			stats.Views = row.Count
		case models.EventClaim:
			stats.Claims = row.Count
		case models.EventShare:
			stats.Shares = row.Count
		}
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}},
			UpdateAll: true,
		}).
		Create(&stats).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *analyticsRepository) GetStats(ctx context.Context, entityID uint) (*models.OfferStats, error) {
	var stats models.OfferStats
	if err := r.db.WithContext(ctx).First(&stats, "entity_id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("OfferStats", entityID)
		}
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}
