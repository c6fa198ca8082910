package server

import (
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GrantBoost purchases a visibility boost for an entity. The endpoint is
// gated by the boost_purchase feature flag; payment capture happens
// upstream of this call.
func (s *Server) GrantBoost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if !s.featureFlags.Enabled("boost_purchase", userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("boost purchases are not available for this account"))
	}

	var req struct {
		EntityID      uint   `json:"entity_id"`
		EntityType    string `json:"entity_type"`
		DurationHours int    `json:"duration_hours"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	boost, err := s.entitlementService.GrantBoost(c.UserContext(), userID, req.EntityID,
		req.EntityType, time.Duration(req.DurationHours)*time.Hour)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(boost)
}

// IsBoosted reports whether any boost is in effect for an entity.
func (s *Server) IsBoosted(c *fiber.Ctx) error {
	entityID, err := s.parseID(c, "entityId")
	if err != nil {
		return nil
	}

	boosted, checkErr := s.entitlementService.IsBoosted(c.UserContext(), entityID)
	if checkErr != nil {
		return respondAppError(c, checkErr)
	}
	return c.JSON(fiber.Map{"entity_id": entityID, "boosted": boosted})
}

// CreateOffer creates a promo offer (moderator/admin surface).
func (s *Server) CreateOffer(c *fiber.Ctx) error {
	var req struct {
		PartnerID   uint      `json:"partner_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" || !req.EndsAt.After(req.StartsAt) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("title and a valid starts_at/ends_at window are required"))
	}

	offer := &models.PromoOffer{
		PartnerID:   req.PartnerID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := s.entitlementRepo.CreateOffer(c.UserContext(), offer); err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// ClaimOffer claims a promo offer for the current user.
func (s *Server) ClaimOffer(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	offerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	redemption, claimErr := s.entitlementService.ClaimOffer(c.UserContext(), offerID, userID)
	if claimErr != nil {
		return respondAppError(c, claimErr)
	}
	return c.Status(fiber.StatusCreated).JSON(redemption)
}

// RedeemCode marks a redemption code as used.
func (s *Server) RedeemCode(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("redemption code is required"))
	}

	redemption, err := s.entitlementService.RedeemCode(c.UserContext(), code)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(redemption)
}
