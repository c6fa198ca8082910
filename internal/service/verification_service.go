package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"
)

// ReviewDecision is a reviewer's verdict on a verification request.
type ReviewDecision string

const (
	// DecisionApproved accepts the claim and sets the subject's trust flag.
	DecisionApproved ReviewDecision = "approved"
	// DecisionRejected denies the claim; a reason is required.
	DecisionRejected ReviewDecision = "rejected"
)

// VerificationService owns the verification request lifecycle: submission,
// one-shot review, and the trust-flag side effect on approval.
type VerificationService struct {
	requests repository.VerificationRepository
	users    repository.UserRepository
	notifier Notifier
	clock    Clock
}

// NewVerificationService returns a new VerificationService.
func NewVerificationService(requests repository.VerificationRepository, users repository.UserRepository, notifier Notifier, clock Clock) *VerificationService {
	return &VerificationService{
		requests: requests,
		users:    users,
		notifier: notifier,
		clock:    clock,
	}
}

// Submit files a new verification request. It always creates a pending row.
// Multiple pending requests per (subject, kind) are allowed; the UI shows
// latest-by-subject.
func (s *VerificationService) Submit(ctx context.Context, subjectID uint, rawKind string, documents []string) (*models.VerificationRequest, error) {
	kind, ok := models.ParseVerificationKind(rawKind)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown verification kind %q", rawKind))
	}
	if len(documents) == 0 {
		return nil, models.NewValidationError("at least one document is required")
	}
	for _, doc := range documents {
		if strings.TrimSpace(doc) == "" {
			return nil, models.NewValidationError("document references must not be blank")
		}
	}

	if _, err := s.users.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	req := &models.VerificationRequest{
		SubjectID:   subjectID,
		Kind:        kind,
		Status:      models.VerificationStatusPending,
		Documents:   strings.Join(documents, "\n"),
		SubmittedAt: s.clock.Now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Review applies a reviewer decision to a pending request. The status
// check and mutation run as a single compare-and-swap, so of two
// concurrent reviewers exactly one succeeds; the loser gets INVALID_STATE
// and no side effect is applied twice. If the trust-flag write fails after
// the swap, the request is reopened so the approval can be retried.
func (s *VerificationService) Review(ctx context.Context, requestID uint, rawDecision string, reviewerID uint, reason, notes string) (*models.VerificationRequest, error) {
	var status models.VerificationStatus
	switch ReviewDecision(rawDecision) {
	case DecisionApproved:
		status = models.VerificationStatusApproved
	case DecisionRejected:
		status = models.VerificationStatusRejected
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown decision %q", rawDecision))
	}
	if status == models.VerificationStatusRejected && strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("a rejection reason is required")
	}

	reviewer, err := s.users.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !reviewer.CanModerate() {
		return nil, models.NewForbiddenError("reviewing verification requests requires the moderator capability")
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.VerificationStatusPending {
		return nil, models.NewInvalidStateError(fmt.Sprintf("request %d is already %s", requestID, req.Status))
	}

	now := s.clock.Now()
	swapped, err := s.requests.MarkReviewed(ctx, requestID, status, reviewerID, reason, notes, now)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// A concurrent reviewer won the compare-and-swap.
		return nil, models.NewInvalidStateError(fmt.Sprintf("request %d was reviewed concurrently", requestID))
	}

	if status == models.VerificationStatusApproved {
		kind := req.Kind
		if err := s.users.SetTrustFlags(ctx, req.SubjectID, models.TrustFlagPatch{VerifiedKind: &kind}); err != nil {
			// Roll the swap back so the request stays reviewable. An
			// approved row whose subject never got the flag would be
			// stuck: the pending guard above blocks any retry.
			if revertErr := s.requests.Reopen(ctx, requestID); revertErr != nil {
				observability.Logger.ErrorContext(ctx, "failed to reopen verification request after flag write failure",
					slog.Any("request_id", requestID),
					slog.String("error", revertErr.Error()),
				)
			}
			return nil, err
		}
	} else {
		s.notifier.Notify(ctx, req.SubjectID, fmt.Sprintf("Your %s verification was rejected: %s", req.Kind, reason))
	}

	observability.VerificationReviews.WithLabelValues(string(status)).Inc()

	req.Status = status
	req.ReviewedByID = &reviewerID
	req.ReviewedAt = &now
	req.RejectionReason = reason
	req.AdminNotes = notes
	return req, nil
}

// PendingCount returns the number of pending requests. It counts directly
// instead of caching so operator dashboards never show stale badges.
func (s *VerificationService) PendingCount(ctx context.Context) (int64, error) {
	return s.requests.CountPending(ctx)
}

// ListPending returns pending requests in submission order for the
// moderator dashboard.
func (s *VerificationService) ListPending(ctx context.Context, limit, offset int) ([]models.VerificationRequest, error) {
	return s.requests.ListPending(ctx, limit, offset)
}

// Latest returns the most recent request a subject filed for a kind,
// which is what profile pages display.
func (s *VerificationService) Latest(ctx context.Context, subjectID uint, rawKind string) (*models.VerificationRequest, error) {
	kind, ok := models.ParseVerificationKind(rawKind)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown verification kind %q", rawKind))
	}
	return s.requests.LatestBySubject(ctx, subjectID, kind)
}
