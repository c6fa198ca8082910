package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable Clock for deterministic expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier captures notifications instead of delivering them.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	targets  []uint
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, userID)
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu             sync.Mutex
	users          map[uint]*models.User
	trustFlagCalls int
	failTrustFlags bool
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetTrustFlags(_ context.Context, id uint, patch models.TrustFlagPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTrustFlags {
		return models.NewInternalError(errors.New("storage unavailable"))
	}
	user, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	r.trustFlagCalls++
	if patch.VerifiedKind != nil {
		switch *patch.VerifiedKind {
		case models.KindPersonalIdentity:
			user.VerifiedIdentity = true
		case models.KindVehicleOwnership:
			user.VerifiedVehicle = true
		case models.KindBusinessLicense:
			user.VerifiedBusiness = true
		}
	}
	if patch.Banned != nil {
		user.Banned = *patch.Banned
	}
	if patch.BanReason != nil {
		user.BanReason = *patch.BanReason
	}
	if patch.BanUntil != nil {
		user.BanUntil = patch.BanUntil
	}
	return nil
}

func (r *fakeUserRepo) IncrementWarnCount(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	user.WarnCount++
	return nil
}

func (r *fakeUserRepo) get(id uint) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// fakeVerificationRepo is an in-memory VerificationRepository with the
// same compare-and-swap behavior as the GORM implementation.
type fakeVerificationRepo struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.VerificationRequest
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{requests: make(map[uint]*models.VerificationRequest)}
}

func (r *fakeVerificationRepo) Create(_ context.Context, req *models.VerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeVerificationRepo) GetByID(_ context.Context, id uint) (*models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, models.NewNotFoundError("VerificationRequest", id)
	}
	copied := *req
	return &copied, nil
}

func (r *fakeVerificationRepo) MarkReviewed(_ context.Context, id uint, status models.VerificationStatus, reviewerID uint, reason, notes string, reviewedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != models.VerificationStatusPending {
		return false, nil
	}
	req.Status = status
	req.ReviewedByID = &reviewerID
	req.ReviewedAt = &reviewedAt
	req.RejectionReason = reason
	req.AdminNotes = notes
	return true, nil
}

func (r *fakeVerificationRepo) Reopen(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status == models.VerificationStatusPending {
		return models.NewNotFoundError("VerificationRequest", id)
	}
	req.Status = models.VerificationStatusPending
	req.ReviewedByID = nil
	req.ReviewedAt = nil
	req.RejectionReason = ""
	req.AdminNotes = ""
	return nil
}

func (r *fakeVerificationRepo) CountPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, req := range r.requests {
		if req.Status == models.VerificationStatusPending {
			count++
		}
	}
	return count, nil
}

func (r *fakeVerificationRepo) ListPending(_ context.Context, limit, offset int) ([]models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.VerificationRequest
	for _, req := range r.requests {
		if req.Status == models.VerificationStatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeVerificationRepo) LatestBySubject(_ context.Context, subjectID uint, kind models.VerificationKind) (*models.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.VerificationRequest
	for _, req := range r.requests {
		if req.SubjectID != subjectID || req.Kind != kind {
			continue
		}
		if latest == nil || req.SubmittedAt.After(latest.SubmittedAt) {
			latest = req
		}
	}
	if latest == nil {
		return nil, models.NewNotFoundError("VerificationRequest", subjectID)
	}
	copied := *latest
	return &copied, nil
}

// fakeReportRepo is an in-memory ReportRepository.
type fakeReportRepo struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]*models.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[uint]*models.Report)}
}

func (r *fakeReportRepo) Create(_ context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	report.ID = r.nextID
	copied := *report
	r.reports[report.ID] = &copied
	return nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id uint) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, models.NewNotFoundError("Report", id)
	}
	copied := *report
	return &copied, nil
}

func (r *fakeReportRepo) MarkResolved(_ context.Context, id uint, action models.ModerationAction, reviewerID uint, notes string, reviewedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok || report.Status != models.ReportStatusPending {
		return false, nil
	}
	report.Status = models.ReportStatusReviewed
	report.ActionTaken = &action
	report.ReviewerID = &reviewerID
	report.ReviewerNotes = notes
	report.ReviewedAt = &reviewedAt
	return true, nil
}

func (r *fakeReportRepo) Reopen(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok || report.Status != models.ReportStatusReviewed {
		return models.NewNotFoundError("Report", id)
	}
	report.Status = models.ReportStatusPending
	report.ActionTaken = nil
	report.ReviewerID = nil
	report.ReviewerNotes = ""
	report.ReviewedAt = nil
	return nil
}

func (r *fakeReportRepo) List(_ context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Report
	for _, report := range r.reports {
		if status == "" || report.Status == status {
			out = append(out, *report)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReportRepo) CountPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, report := range r.reports {
		if report.Status == models.ReportStatusPending {
			count++
		}
	}
	return count, nil
}

// fakeListingRepo is an in-memory ListingRepository.
type fakeListingRepo struct {
	mu            sync.Mutex
	nextID        uint
	listings      map[uint]*models.Listing
	failSetStatus bool
}

func newFakeListingRepo(listings ...*models.Listing) *fakeListingRepo {
	repo := &fakeListingRepo{listings: make(map[uint]*models.Listing)}
	for _, l := range listings {
		repo.listings[l.ID] = l
		if l.ID > repo.nextID {
			repo.nextID = l.ID
		}
	}
	return repo
}

func (r *fakeListingRepo) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, models.NewNotFoundError("Listing", id)
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeListingRepo) GetOwnerID(_ context.Context, id uint) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return 0, models.NewNotFoundError("Listing", id)
	}
	return listing.OwnerID, nil
}

func (r *fakeListingRepo) SetStatus(_ context.Context, id uint, status models.ListingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetStatus {
		return models.NewInternalError(errors.New("storage unavailable"))
	}
	listing, ok := r.listings[id]
	if !ok {
		return models.NewNotFoundError("Listing", id)
	}
	listing.Status = status
	return nil
}

func (r *fakeListingRepo) Create(_ context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	listing.ID = r.nextID
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) status(id uint) models.ListingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings[id].Status
}

// fakeEntitlementRepo is an in-memory EntitlementRepository. Uniqueness of
// (offer, user) and of redemption codes is enforced under one mutex, the
// in-memory equivalent of the database constraint.
type fakeEntitlementRepo struct {
	mu          sync.Mutex
	nextID      uint
	boosts      map[uint]*models.BoostEntitlement
	offers      map[uint]*models.PromoOffer
	redemptions map[string]*models.OfferRedemption
	claimed     map[string]bool
	failGrants  bool
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{
		boosts:      make(map[uint]*models.BoostEntitlement),
		offers:      make(map[uint]*models.PromoOffer),
		redemptions: make(map[string]*models.OfferRedemption),
		claimed:     make(map[string]bool),
	}
}

func (r *fakeEntitlementRepo) GrantBoost(_ context.Context, boost *models.BoostEntitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGrants {
		return models.NewInternalError(errors.New("storage unavailable"))
	}
	r.nextID++
	boost.ID = r.nextID
	copied := *boost
	r.boosts[boost.ID] = &copied
	return nil
}

func (r *fakeEntitlementRepo) HasActiveBoost(_ context.Context, entityID uint, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, boost := range r.boosts {
		if boost.EntityID == entityID && boost.IsActive && now.Before(boost.ValidUntil) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEntitlementRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, boost := range r.boosts {
		if boost.IsActive && !boost.ValidUntil.After(now) {
			boost.IsActive = false
			changed++
		}
	}
	return changed, nil
}

func (r *fakeEntitlementRepo) GetOffer(_ context.Context, offerID uint) (*models.PromoOffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[offerID]
	if !ok {
		return nil, models.NewNotFoundError("Offer", offerID)
	}
	copied := *offer
	return &copied, nil
}

func (r *fakeEntitlementRepo) CreateOffer(_ context.Context, offer *models.PromoOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	offer.ID = r.nextID
	copied := *offer
	r.offers[offer.ID] = &copied
	return nil
}

func (r *fakeEntitlementRepo) CreateRedemption(_ context.Context, redemption *models.OfferRedemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pair := fmt.Sprintf("%d:%d", redemption.OfferID, redemption.UserID)
	if r.claimed[pair] {
		return repository.ErrDuplicateRedemption
	}
	if _, exists := r.redemptions[redemption.RedemptionCode]; exists {
		return repository.ErrDuplicateRedemption
	}
	r.claimed[pair] = true
	r.nextID++
	redemption.ID = r.nextID
	copied := *redemption
	r.redemptions[redemption.RedemptionCode] = &copied
	return nil
}

func (r *fakeEntitlementRepo) GetRedemptionByCode(_ context.Context, code string) (*models.OfferRedemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[code]
	if !ok {
		return nil, models.NewNotFoundError("Redemption", code)
	}
	copied := *redemption
	return &copied, nil
}

func (r *fakeEntitlementRepo) MarkRedeemed(_ context.Context, code string, redeemedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	redemption, ok := r.redemptions[code]
	if !ok || redemption.RedeemedAt != nil {
		return false, nil
	}
	redemption.RedeemedAt = &redeemedAt
	return true, nil
}

// fakeAnalyticsRepo is an in-memory AnalyticsRepository.
type fakeAnalyticsRepo struct {
	mu           sync.Mutex
	events       []models.AnalyticsEvent
	refreshCalls int
	failWrites   bool
}

func (r *fakeAnalyticsRepo) CreateEvent(_ context.Context, event *models.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return models.NewInternalError(errors.New("storage unavailable"))
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeAnalyticsRepo) RefreshStats(_ context.Context, entityID uint, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshCalls++
	return nil
}

func (r *fakeAnalyticsRepo) GetStats(_ context.Context, entityID uint) (*models.OfferStats, error) {
	return nil, models.NewNotFoundError("OfferStats", entityID)
}

func (r *fakeAnalyticsRepo) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
