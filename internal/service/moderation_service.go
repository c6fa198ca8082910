package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"
)

// ResolveInput carries the parameters of a single report resolution.
type ResolveInput struct {
	ReportID   uint
	Action     string
	ReviewerID uint
	Notes      string
	// BanDuration bounds a ban action; zero means indefinite.
	BanDuration time.Duration
}

// BatchFailure is the outcome of one failed item in a bulk resolution.
type BatchFailure struct {
	ReportID uint   `json:"report_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// BatchResult reports per-item outcomes of a bulk resolution. A failure on
// one report never aborts the rest of the batch.
type BatchResult struct {
	Succeeded []uint         `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// ModerationService owns report intake and resolution, including the side
// effects each action applies to content and owner trust flags.
type ModerationService struct {
	reports  repository.ReportRepository
	listings repository.ListingRepository
	users    repository.UserRepository
	notifier Notifier
	clock    Clock
}

// NewModerationService returns a new ModerationService.
func NewModerationService(reports repository.ReportRepository, listings repository.ListingRepository, users repository.UserRepository, notifier Notifier, clock Clock) *ModerationService {
	return &ModerationService{
		reports:  reports,
		listings: listings,
		users:    users,
		notifier: notifier,
		clock:    clock,
	}
}

// FileReport creates a pending report against a listing. Reports are not
// de-duplicated: several users flagging the same listing produce several
// independent rows, each resolved on its own.
func (s *ModerationService) FileReport(ctx context.Context, listingID, reporterID uint, reason, details string) (*models.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("a report reason is required")
	}
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    details,
		Status:     models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	observability.ReportsFiled.Inc()
	return report, nil
}

// Resolve applies a reviewer action to a pending report. The action is
// validated before anything is mutated; the pending -> reviewed transition
// is a compare-and-swap so a report is resolved at most once; side effects
// run only for the reviewer that won the swap. A failed side effect
// reopens the report, so either the swap and the effect both hold or
// neither does.
func (s *ModerationService) Resolve(ctx context.Context, in ResolveInput) (*models.Report, error) {
	action, ok := models.ParseModerationAction(in.Action)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown moderation action %q", in.Action))
	}

	reviewer, err := s.users.GetByID(ctx, in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.CanModerate() {
		return nil, models.NewForbiddenError("resolving reports requires the moderator capability")
	}

	report, err := s.reports.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, models.NewInvalidStateError(fmt.Sprintf("report %d is already reviewed", in.ReportID))
	}

	now := s.clock.Now()
	swapped, err := s.reports.MarkResolved(ctx, in.ReportID, action, in.ReviewerID, in.Notes, now)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, models.NewInvalidStateError(fmt.Sprintf("report %d was resolved concurrently", in.ReportID))
	}

	if err := s.applyEffect(ctx, report, action, in, now); err != nil {
		// Roll the swap back so the report stays actionable. A reviewed row
		// whose effect never ran could not be retried: the pending guard
		// above would reject it forever.
		if revertErr := s.reports.Reopen(ctx, in.ReportID); revertErr != nil {
			observability.Logger.ErrorContext(ctx, "failed to reopen report after side effect failure",
				slog.Any("report_id", in.ReportID),
				slog.String("error", revertErr.Error()),
			)
		}
		return nil, err
	}

	observability.ReportsResolved.WithLabelValues(string(action)).Inc()

	report.Status = models.ReportStatusReviewed
	report.ActionTaken = &action
	report.ReviewerID = &in.ReviewerID
	report.ReviewerNotes = in.Notes
	report.ReviewedAt = &now
	return report, nil
}

// applyEffect dispatches the structural side effect of an action. The
// switch is exhaustive over the closed ModerationAction set; Resolve has
// already rejected anything else.
func (s *ModerationService) applyEffect(ctx context.Context, report *models.Report, action models.ModerationAction, in ResolveInput, now time.Time) error {
	switch action {
	case models.ActionApprove:
		// Content stays as it is; the report alone is closed.
		return nil

	case models.ActionReject:
		return s.listings.SetStatus(ctx, report.ListingID, models.ListingStatusRejected)

	case models.ActionDelete:
		return s.listings.SetStatus(ctx, report.ListingID, models.ListingStatusRemoved)

	case models.ActionWarn:
		ownerID, err := s.listings.GetOwnerID(ctx, report.ListingID)
		if err != nil {
			return err
		}
		if err := s.users.IncrementWarnCount(ctx, ownerID); err != nil {
			return err
		}
		s.notifier.Notify(ctx, ownerID, fmt.Sprintf("Your listing was reported for %q. Please review our community guidelines.", report.Reason))
		return nil

	case models.ActionBan:
		ownerID, err := s.listings.GetOwnerID(ctx, report.ListingID)
		if err != nil {
			return err
		}
		banned := true
		patch := models.TrustFlagPatch{
			Banned:    &banned,
			BanReason: &in.Notes,
		}
		if in.BanDuration > 0 {
			until := now.Add(in.BanDuration)
			patch.BanUntil = &until
		}
		return s.users.SetTrustFlags(ctx, ownerID, patch)
	}

	return models.NewValidationError(fmt.Sprintf("unknown moderation action %q", action))
}

// BulkResolve applies Resolve to each report independently and collects
// per-item outcomes.
func (s *ModerationService) BulkResolve(ctx context.Context, reportIDs []uint, action string, reviewerID uint) *BatchResult {
	result := &BatchResult{}

	for _, id := range reportIDs {
		in := ResolveInput{ReportID: id, Action: action, ReviewerID: reviewerID}
		if _, err := s.Resolve(ctx, in); err != nil {
			failure := BatchFailure{ReportID: id, Message: err.Error()}
			var appErr *models.AppError
			if errors.As(err, &appErr) {
				failure.Code = appErr.Code
				failure.Message = appErr.Message
			}
			result.Failed = append(result.Failed, failure)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	return result
}

// ListReports returns reports for the moderator dashboard.
func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	if status != "" && status != models.ReportStatusPending && status != models.ReportStatusReviewed {
		return nil, 0, models.NewValidationError(fmt.Sprintf("unknown report status %q", status))
	}
	return s.reports.List(ctx, status, limit, offset)
}

// PendingReportCount backs the moderator dashboard badge.
func (s *ModerationService) PendingReportCount(ctx context.Context) (int64, error) {
	return s.reports.CountPending(ctx)
}
