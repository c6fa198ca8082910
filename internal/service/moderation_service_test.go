package service

import (
	"context"
	"testing"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModerationFixture() (*ModerationService, *fakeReportRepo, *fakeListingRepo, *fakeUserRepo, *recordingNotifier, *fakeClock) {
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	users := newFakeUserRepo(
		&models.User{ID: 1, Username: "seller-imran", Role: models.RoleUser},
		&models.User{ID: 2, Username: "mod-zahra", Role: models.RoleModerator},
		&models.User{ID: 3, Username: "buyer-lena", Role: models.RoleUser},
	)
	listings := newFakeListingRepo(
		&models.Listing{ID: 10, OwnerID: 1, Title: "1994 Supra, clean title", Status: models.ListingStatusActive},
	)
	reports := newFakeReportRepo()
	notifier := &recordingNotifier{}
	svc := NewModerationService(reports, listings, users, notifier, clock)
	return svc, reports, listings, users, notifier, clock
}

func TestFileReportCreatesPending(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()

	report, err := svc.FileReport(context.Background(), 10, 3, "odometer fraud", "mileage photos do not match")
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, uint(10), report.ListingID)
	assert.Equal(t, uint(3), report.ReporterID)
	assert.Nil(t, report.ActionTaken)
}

func TestFileReportValidation(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()
	ctx := context.Background()

	_, err := svc.FileReport(ctx, 10, 3, "  ", "")
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = svc.FileReport(ctx, 999, 3, "spam", "")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestFileReportNotDeduplicated(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()
	ctx := context.Background()

	first, err := svc.FileReport(ctx, 10, 3, "odometer fraud", "")
	require.NoError(t, err)
	second, err := svc.FileReport(ctx, 10, 1, "odometer fraud", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := svc.PendingReportCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestResolveUnknownActionMutatesNothing(t *testing.T) {
	svc, _, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "obliterate", ReviewerID: 2})
	assertAppErrorCode(t, err, models.CodeValidation)

	// The report stays pending and the listing untouched.
	count, countErr := svc.PendingReportCount(ctx)
	require.NoError(t, countErr)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, models.ListingStatusActive, listings.status(10))
}

func TestResolveApproveLeavesContentAlone(t *testing.T) {
	svc, _, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "approve", ReviewerID: 2, Notes: "listing is fine"})
	require.NoError(t, err)

	assert.Equal(t, models.ReportStatusReviewed, resolved.Status)
	require.NotNil(t, resolved.ActionTaken)
	assert.Equal(t, models.ActionApprove, *resolved.ActionTaken)
	assert.Equal(t, models.ListingStatusActive, listings.status(10))
}

func TestResolveRejectAndDeleteChangeListingStatus(t *testing.T) {
	svc, _, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "misleading photos", "")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "reject", ReviewerID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRejected, listings.status(10))

	report, err = svc.FileReport(ctx, 10, 1, "stolen vehicle", "")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "delete", ReviewerID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ListingStatusRemoved, listings.status(10))
}

func TestResolveWarnNotifiesAndCountsAgainstOwner(t *testing.T) {
	svc, _, _, users, notifier, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "rude replies", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "warn", ReviewerID: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, users.get(1).WarnCount)
	assert.Equal(t, 1, notifier.count())
}

func TestResolveBanSetsOwnerTrustFlags(t *testing.T) {
	svc, _, _, users, _, clock := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "scam listing", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{
		ReportID:    report.ID,
		Action:      "ban",
		ReviewerID:  2,
		Notes:       "repeated scam listings",
		BanDuration: 72 * time.Hour,
	})
	require.NoError(t, err)

	owner := users.get(1)
	assert.True(t, owner.Banned)
	assert.Equal(t, "repeated scam listings", owner.BanReason)
	require.NotNil(t, owner.BanUntil)
	assert.Equal(t, clock.Now().Add(72*time.Hour), *owner.BanUntil)
}

func TestResolveBanWithoutDurationIsIndefinite(t *testing.T) {
	svc, _, _, users, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "scam listing", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "ban", ReviewerID: 2})
	require.NoError(t, err)

	owner := users.get(1)
	assert.True(t, owner.Banned)
	assert.Nil(t, owner.BanUntil)
}

func TestResolveTwiceFails(t *testing.T) {
	svc, _, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "delete", ReviewerID: 2})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "approve", ReviewerID: 2})
	assertAppErrorCode(t, err, models.CodeInvalidState)
	assert.Equal(t, models.ListingStatusRemoved, listings.status(10))
}

// Two reports against the same listing resolve independently: deleting the
// listing through one does not close the other, and approving the second
// afterwards does not resurrect the listing.
func TestIndependentReportsOnSameListing(t *testing.T) {
	svc, _, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	first, err := svc.FileReport(ctx, 10, 3, "odometer fraud", "")
	require.NoError(t, err)
	second, err := svc.FileReport(ctx, 10, 1, "odometer fraud", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: first.ID, Action: "delete", ReviewerID: 2})
	require.NoError(t, err)

	count, err := svc.PendingReportCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	resolved, err := svc.Resolve(ctx, ResolveInput{ReportID: second.ID, Action: "approve", ReviewerID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusReviewed, resolved.Status)
	assert.Equal(t, models.ListingStatusRemoved, listings.status(10))
}

// A side effect that fails after the pending -> reviewed swap must not
// strand the report: it is reopened so the same action can be retried.
func TestResolveReopensReportWhenSideEffectFails(t *testing.T) {
	svc, reports, listings, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "stolen vehicle", "")
	require.NoError(t, err)

	listings.failSetStatus = true
	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "delete", ReviewerID: 2})
	assertAppErrorCode(t, err, models.CodeInternal)

	// The swap was rolled back, so the report is pending and untainted.
	stored, getErr := reports.GetByID(ctx, report.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Nil(t, stored.ActionTaken)
	assert.Nil(t, stored.ReviewerID)
	assert.Equal(t, models.ListingStatusActive, listings.status(10))

	// Once storage recovers the retry goes through end to end.
	listings.failSetStatus = false
	resolved, err := svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "delete", ReviewerID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusReviewed, resolved.Status)
	assert.Equal(t, models.ListingStatusRemoved, listings.status(10))
}

func TestResolveRequiresModerator(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "approve", ReviewerID: 3})
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestResolveUnknownReport(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()

	_, err := svc.Resolve(context.Background(), ResolveInput{ReportID: 404, Action: "approve", ReviewerID: 2})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestBulkResolveCollectsPerItemOutcomes(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()
	ctx := context.Background()

	first, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)
	second, err := svc.FileReport(ctx, 10, 1, "spam", "")
	require.NoError(t, err)

	// Pre-resolve the second so the batch hits an already-reviewed report.
	_, err = svc.Resolve(ctx, ResolveInput{ReportID: second.ID, Action: "approve", ReviewerID: 2})
	require.NoError(t, err)

	result := svc.BulkResolve(ctx, []uint{first.ID, second.ID, 404}, "approve", 2)

	assert.Equal(t, []uint{first.ID}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, second.ID, result.Failed[0].ReportID)
	assert.Equal(t, models.CodeInvalidState, result.Failed[0].Code)
	assert.Equal(t, uint(404), result.Failed[1].ReportID)
	assert.Equal(t, models.CodeNotFound, result.Failed[1].Code)
}

func TestListReportsFiltersByStatus(t *testing.T) {
	svc, _, _, _, _, _ := newModerationFixture()
	ctx := context.Background()

	report, err := svc.FileReport(ctx, 10, 3, "spam", "")
	require.NoError(t, err)
	_, err = svc.FileReport(ctx, 10, 1, "spam", "")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, ResolveInput{ReportID: report.ID, Action: "approve", ReviewerID: 2})
	require.NoError(t, err)

	pending, total, err := svc.ListReports(ctx, models.ReportStatusPending, 20, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, int64(1), total)

	_, _, err = svc.ListReports(ctx, "archived", 20, 0)
	assertAppErrorCode(t, err, models.CodeValidation)
}
