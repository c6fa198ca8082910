package repository

import (
	"context"
	"errors"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"gorm.io/gorm"
)

// VerificationRepository defines persistence operations for verification
// requests. Rows are append-only; the only mutation is the one-shot
// pending -> reviewed transition.
type VerificationRepository interface {
	Create(ctx context.Context, req *models.VerificationRequest) error
	GetByID(ctx context.Context, id uint) (*models.VerificationRequest, error)
	// MarkReviewed performs the compare-and-swap from pending to the given
	// status. It reports false when the row was not pending anymore, which
	// is how a lost race between two reviewers shows up.
	MarkReviewed(ctx context.Context, id uint, status models.VerificationStatus, reviewerID uint, reason, notes string, reviewedAt time.Time) (bool, error)
	// Reopen reverts a reviewed request to pending, clearing the reviewer
	// fields. It is the compensation path when the approval side effect
	// fails after the review swap.
	Reopen(ctx context.Context, id uint) error
	CountPending(ctx context.Context) (int64, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.VerificationRequest, error)
	LatestBySubject(ctx context.Context, subjectID uint, kind models.VerificationKind) (*models.VerificationRequest, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository returns a new VerificationRepository implementation.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(ctx context.Context, req *models.VerificationRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *verificationRepository) GetByID(ctx context.Context, id uint) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("VerificationRequest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *verificationRepository) MarkReviewed(ctx context.Context, id uint, status models.VerificationStatus, reviewerID uint, reason, notes string, reviewedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.VerificationRequest{}).
		Where("id = ? AND status = ?", id, models.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"reviewed_by_id":   reviewerID,
			"reviewed_at":      reviewedAt,
			"rejection_reason": reason,
			"admin_notes":      notes,
		})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *verificationRepository) Reopen(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.VerificationRequest{}).
		Where("id = ? AND status <> ?", id, models.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":           models.VerificationStatusPending,
			"reviewed_by_id":   nil,
			"reviewed_at":      nil,
			"rejection_reason": "",
			"admin_notes":      "",
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("VerificationRequest", id)
	}
	return nil
}

func (r *verificationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.VerificationRequest{}).
		Where("status = ?", models.VerificationStatusPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *verificationRepository) ListPending(ctx context.Context, limit, offset int) ([]models.VerificationRequest, error) {
	var reqs []models.VerificationRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.VerificationStatusPending).
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *verificationRepository) LatestBySubject(ctx context.Context, subjectID uint, kind models.VerificationKind) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := r.db.WithContext(ctx).
		Where("subject_id = ? AND kind = ?", subjectID, kind).
		Order("submitted_at DESC").
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("VerificationRequest", subjectID)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}
