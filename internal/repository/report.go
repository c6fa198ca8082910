package repository

import (
	"context"
	"errors"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	// MarkResolved performs the compare-and-swap from pending to reviewed.
	// It reports false when the report was already resolved.
	MarkResolved(ctx context.Context, id uint, action models.ModerationAction, reviewerID uint, notes string, reviewedAt time.Time) (bool, error)
	// Reopen reverts a reviewed report to pending, clearing the reviewer
	// fields. It is the compensation path when an action's side effect
	// fails after the resolve swap.
	Reopen(ctx context.Context, id uint) error
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

func (r *reportRepository) MarkResolved(ctx context.Context, id uint, action models.ModerationAction, reviewerID uint, notes string, reviewedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":         models.ReportStatusReviewed,
			"action_taken":   action,
			"reviewer_id":    reviewerID,
			"reviewer_notes": notes,
			"reviewed_at":    reviewedAt,
		})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *reportRepository) Reopen(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusReviewed).
		Updates(map[string]interface{}{
			"status":         models.ReportStatusPending,
			"action_taken":   nil,
			"reviewer_id":    nil,
			"reviewer_notes": "",
			"reviewed_at":    nil,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reports, total, nil
}

func (r *reportRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
