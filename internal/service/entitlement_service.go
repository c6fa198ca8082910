package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"

	"github.com/google/uuid"
)

// maxBoostDuration caps a single grant; longer boosts are bought as
// consecutive grants.
const maxBoostDuration = 90 * 24 * time.Hour

// EntitlementService owns boost grants, offer claims and code redemption.
type EntitlementService struct {
	entitlements repository.EntitlementRepository
	clock        Clock
}

// NewEntitlementService returns a new EntitlementService.
func NewEntitlementService(entitlements repository.EntitlementRepository, clock Clock) *EntitlementService {
	return &EntitlementService{entitlements: entitlements, clock: clock}
}

// GrantBoost creates a new active entitlement valid for the given
// duration. Grants stack deliberately: IsBoosted asks whether any active
// row exists, so concurrent grants need no coordination.
func (s *EntitlementService) GrantBoost(ctx context.Context, ownerID, entityID uint, rawEntityType string, duration time.Duration) (*models.BoostEntitlement, error) {
	entityType, ok := models.ParseBoostEntityType(rawEntityType)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("unknown entity type %q", rawEntityType))
	}
	if duration <= 0 {
		return nil, models.NewValidationError("boost duration must be positive")
	}
	if duration > maxBoostDuration {
		return nil, models.NewValidationError("boost duration exceeds the maximum of 90 days")
	}

	now := s.clock.Now()
	boost := &models.BoostEntitlement{
		OwnerID:    ownerID,
		EntityID:   entityID,
		EntityType: entityType,
		GrantedAt:  now,
		ValidUntil: now.Add(duration),
		IsActive:   true,
	}
	if err := s.entitlements.GrantBoost(ctx, boost); err != nil {
		return nil, err
	}

	observability.BoostsGranted.WithLabelValues(string(entityType)).Inc()
	return boost, nil
}

// IsBoosted reports whether any entitlement is in effect for the entity.
// It is a side-effect-free read: expired rows are excluded by the query
// predicate, not deactivated here; that is the scanner's job.
func (s *EntitlementService) IsBoosted(ctx context.Context, entityID uint) (bool, error) {
	return s.entitlements.HasActiveBoost(ctx, entityID, s.clock.Now())
}

// ClaimOffer claims a promo offer for a user, minting a redemption code.
// The (offer, user) uniqueness lives in the storage constraint: of two
// concurrent claims exactly one inserts, the other surfaces ALREADY_CLAIMED.
func (s *EntitlementService) ClaimOffer(ctx context.Context, offerID, userID uint) (*models.OfferRedemption, error) {
	offer, err := s.entitlements.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !offer.ActiveAt(now) {
		return nil, models.NewExpiredError(fmt.Sprintf("offer %d is not currently active", offerID))
	}

	redemption := &models.OfferRedemption{
		OfferID:        offerID,
		UserID:         userID,
		RedemptionCode: uuid.NewString(),
		ExpiresAt:      offer.EndsAt,
	}
	if err := s.entitlements.CreateRedemption(ctx, redemption); err != nil {
		if errors.Is(err, repository.ErrDuplicateRedemption) {
			return nil, models.NewAlreadyClaimedError(offerID)
		}
		return nil, err
	}

	observability.OffersClaimed.Inc()
	return redemption, nil
}

// RedeemCode marks a redemption code as used. Setting redeemed_at is a
// one-way compare-and-swap: a second redemption of the same code always
// returns ALREADY_REDEEMED, never a silent success.
func (s *EntitlementService) RedeemCode(ctx context.Context, code string) (*models.OfferRedemption, error) {
	redemption, err := s.entitlements.GetRedemptionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if redemption.RedeemedAt != nil {
		return nil, models.NewAlreadyRedeemedError(code)
	}

	now := s.clock.Now()
	if now.After(redemption.ExpiresAt) {
		return nil, models.NewExpiredError(fmt.Sprintf("redemption code %s expired", code))
	}

	swapped, err := s.entitlements.MarkRedeemed(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, models.NewAlreadyRedeemedError(code)
	}

	observability.CodesRedeemed.Inc()

	redemption.RedeemedAt = &now
	return redemption, nil
}
